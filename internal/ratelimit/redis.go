package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ariefcatur/go-freshbite.git/internal/redisx"
	"github.com/redis/go-redis/v9"
)

// canAttemptScript mirrors Memory.CanAttempt atomically.
// KEYS[1] record hash; ARGV now_ms, window_ms, max_attempts.
var canAttemptScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])
local count = tonumber(redis.call('HGET', KEYS[1], 'count') or '0')
local last = tonumber(redis.call('HGET', KEYS[1], 'last') or '0')
if count == 0 or now - last > window then
  redis.call('HSET', KEYS[1], 'count', 1, 'last', now)
  redis.call('PEXPIRE', KEYS[1], window * 2)
  return 1
end
if count < max then
  redis.call('HSET', KEYS[1], 'count', count + 1, 'last', now)
  redis.call('PEXPIRE', KEYS[1], window * 2)
  return 1
end
return 0
`)

// Redis shares attempt records across API instances.
type Redis struct {
	rdb         *redis.Client
	scope       string
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

func NewRedis(rdb *redis.Client, scope string, maxAttempts int, window time.Duration, opts ...Option) *Redis {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Redis{rdb: rdb, scope: scope, maxAttempts: maxAttempts, window: window, now: applyOptions(opts).now}
}

func (r *Redis) key(id string) string {
	return fmt.Sprintf(redisx.KeyRateLimit, r.scope, id)
}

func (r *Redis) CanAttempt(ctx context.Context, id string) (bool, error) {
	res, err := canAttemptScript.Run(ctx, r.rdb, []string{r.key(id)},
		r.now().UnixMilli(), r.window.Milliseconds(), r.maxAttempts).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit check: %w", err)
	}
	return res == 1, nil
}

func (r *Redis) RemainingTime(ctx context.Context, id string) (time.Duration, error) {
	v, err := r.rdb.HGet(ctx, r.key(id), "last").Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("rate limit remaining: %w", err)
	}
	last, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("rate limit remaining: %w", err)
	}
	elapsed := time.Duration(r.now().UnixMilli()-last) * time.Millisecond
	return remaining(r.window, elapsed), nil
}
