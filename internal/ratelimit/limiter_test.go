package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func limiters(t *testing.T, max int, window time.Duration, clock *fakeClock) map[string]Limiter {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return map[string]Limiter{
		"memory": NewMemory(max, window, WithClock(clock.Now)),
		"redis":  NewRedis(rdb, "login", max, window, WithClock(clock.Now)),
	}
}

func mustAttempt(t *testing.T, l Limiter, id string) bool {
	t.Helper()
	ok, err := l.CanAttempt(context.Background(), id)
	require.NoError(t, err)
	return ok
}

func mustRemaining(t *testing.T, l Limiter, id string) time.Duration {
	t.Helper()
	d, err := l.RemainingTime(context.Background(), id)
	require.NoError(t, err)
	return d
}

func TestFiveAttemptsThenDenied(t *testing.T) {
	clock := newFakeClock()
	for name, l := range limiters(t, 5, 15*time.Minute, clock) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 5; i++ {
				assert.True(t, mustAttempt(t, l, "a@example.com"), "attempt %d", i+1)
				clock.Advance(time.Second)
			}
			assert.False(t, mustAttempt(t, l, "a@example.com"))

			// other identifiers are independent
			assert.True(t, mustAttempt(t, l, "b@example.com"))
		})
	}
}

func TestWindowMeasuredFromLastPermittedAttempt(t *testing.T) {
	const window = 15 * time.Minute
	clock := newFakeClock()
	for name, l := range limiters(t, 5, window, clock) {
		t.Run(name, func(t *testing.T) {
			id := name + "@example.com"
			for i := 0; i < 5; i++ {
				require.True(t, mustAttempt(t, l, id))
				clock.Advance(time.Minute)
			}
			// last permitted attempt was one minute ago
			assert.False(t, mustAttempt(t, l, id))
			assert.Equal(t, window-time.Minute, mustRemaining(t, l, id))

			clock.Advance(window - time.Minute)
			assert.False(t, mustAttempt(t, l, id), "exactly one window later is still inside it")

			clock.Advance(time.Millisecond)
			assert.True(t, mustAttempt(t, l, id))
			// fresh record: four more allowed
			for i := 0; i < 4; i++ {
				assert.True(t, mustAttempt(t, l, id))
			}
			assert.False(t, mustAttempt(t, l, id))
		})
	}
}

func TestWindowSlidesWhileAttemptsArePermitted(t *testing.T) {
	const window = 10 * time.Minute
	clock := newFakeClock()
	for name, l := range limiters(t, 3, window, clock) {
		t.Run(name, func(t *testing.T) {
			id := name + "-slide"
			require.True(t, mustAttempt(t, l, id))
			clock.Advance(9 * time.Minute)
			require.True(t, mustAttempt(t, l, id))
			clock.Advance(9 * time.Minute)
			// 18 minutes after the first attempt but only 9 after the last
			require.True(t, mustAttempt(t, l, id))
			assert.False(t, mustAttempt(t, l, id))
		})
	}
}

func TestRemainingTime(t *testing.T) {
	const window = 15 * time.Minute
	clock := newFakeClock()
	for name, l := range limiters(t, 5, window, clock) {
		t.Run(name, func(t *testing.T) {
			id := name + "-remaining"
			assert.Zero(t, mustRemaining(t, l, id))

			require.True(t, mustAttempt(t, l, id))
			clock.Advance(5 * time.Minute)
			assert.Equal(t, 10*time.Minute, mustRemaining(t, l, id))

			clock.Advance(20 * time.Minute)
			assert.Zero(t, mustRemaining(t, l, id))
		})
	}
}

func TestDefaultsApplied(t *testing.T) {
	m := NewMemory(0, 0)
	assert.Equal(t, DefaultMaxAttempts, m.maxAttempts)
	assert.Equal(t, DefaultWindow, m.window)
}

func TestCooldownMessageRoundsUp(t *testing.T) {
	assert.Equal(t, "Too many login attempts. Please try again in 15 minutes.", CooldownMessage(15*time.Minute))
	assert.Equal(t, "Too many login attempts. Please try again in 1 minutes.", CooldownMessage(10*time.Second))
	assert.Equal(t, "Too many login attempts. Please try again in 3 minutes.", CooldownMessage(2*time.Minute+time.Second))
}
