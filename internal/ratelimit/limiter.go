// Package ratelimit throttles repeated attempts (logins) per identifier.
//
// The window is measured from the most recent attempt: a record resets only
// once a full window has passed since its last allowed attempt. Denied
// attempts do not move the window.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"
)

const (
	DefaultMaxAttempts = 5
	DefaultWindow      = 15 * time.Minute
)

type Limiter interface {
	// CanAttempt records an attempt for id and reports whether it is permitted.
	CanAttempt(ctx context.Context, id string) (bool, error)
	// RemainingTime is how long until id's window lapses, zero if none.
	RemainingTime(ctx context.Context, id string) (time.Duration, error)
}

type options struct {
	now func() time.Time
}

type Option func(*options)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func applyOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// CooldownMessage is the banner shown to a throttled user.
func CooldownMessage(remaining time.Duration) string {
	minutes := int(math.Ceil(remaining.Minutes()))
	return fmt.Sprintf("Too many login attempts. Please try again in %d minutes.", minutes)
}

func remaining(window, elapsed time.Duration) time.Duration {
	if r := window - elapsed; r > 0 {
		return r
	}
	return 0
}
