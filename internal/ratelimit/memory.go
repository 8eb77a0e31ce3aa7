package ratelimit

import (
	"context"
	"sync"
	"time"
)

type record struct {
	count       int
	lastAttempt time.Time
}

// Memory is a per-process limiter.
type Memory struct {
	maxAttempts int
	window      time.Duration
	now         func() time.Time

	mu       sync.Mutex
	attempts map[string]*record
}

func NewMemory(maxAttempts int, window time.Duration, opts ...Option) *Memory {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Memory{
		maxAttempts: maxAttempts,
		window:      window,
		now:         applyOptions(opts).now,
		attempts:    make(map[string]*record),
	}
}

func (m *Memory) CanAttempt(_ context.Context, id string) (bool, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep(now)

	rec, ok := m.attempts[id]
	if !ok || now.Sub(rec.lastAttempt) > m.window {
		m.attempts[id] = &record{count: 1, lastAttempt: now}
		return true, nil
	}
	if rec.count < m.maxAttempts {
		rec.count++
		rec.lastAttempt = now
		return true, nil
	}
	return false, nil
}

func (m *Memory) RemainingTime(_ context.Context, id string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.attempts[id]
	if !ok {
		return 0, nil
	}
	return remaining(m.window, m.now().Sub(rec.lastAttempt)), nil
}

// sweep forgets records whose window lapsed long ago. Caller holds mu.
func (m *Memory) sweep(now time.Time) {
	if len(m.attempts) < 1024 {
		return
	}
	for id, rec := range m.attempts {
		if now.Sub(rec.lastAttempt) > 2*m.window {
			delete(m.attempts, id)
		}
	}
}
