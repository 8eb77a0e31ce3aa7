package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ariefcatur/go-freshbite.git/internal/redisx"
	"github.com/redis/go-redis/v9"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// StatusRecord is an order's current status. ClientID is the client that
// placed the order; only it may read or cancel the order through Service.
type StatusRecord struct {
	Status    Status    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
	ClientID  string    `json:"client_id,omitempty"`
}

// StatusStore tracks where each placed order is in its lifecycle.
type StatusStore interface {
	Get(ctx context.Context, orderID string) (StatusRecord, error)
	Create(ctx context.Context, orderID, clientID string, at time.Time) error
	Transition(ctx context.Context, orderID string, to Status, at time.Time) error
}

type MemoryStatuses struct {
	mu   sync.Mutex
	recs map[string]StatusRecord
}

func NewMemoryStatuses() *MemoryStatuses {
	return &MemoryStatuses{recs: map[string]StatusRecord{}}
}

func (m *MemoryStatuses) Get(_ context.Context, id string) (StatusRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recs[id]
	if !ok {
		return StatusRecord{}, ErrOrderNotFound
	}
	return r, nil
}

func (m *MemoryStatuses) Create(_ context.Context, id, clientID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[id] = StatusRecord{Status: StatusPlaced, UpdatedAt: at.UTC(), ClientID: clientID}
	return nil
}

func (m *MemoryStatuses) Transition(_ context.Context, id string, to Status, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recs[id]
	if !ok {
		return ErrOrderNotFound
	}
	if !CanTransition(r.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, to)
	}
	m.recs[id] = StatusRecord{Status: to, UpdatedAt: at.UTC(), ClientID: r.ClientID}
	return nil
}

// RedisStatuses keeps records under order_status:{id} for TTLStatusCache.
// Transitions use WATCH so concurrent writers cannot skip a state.
type RedisStatuses struct{ RDB *redis.Client }

func statusKey(id string) string { return fmt.Sprintf(redisx.KeyOrderStatus, id) }

func (r *RedisStatuses) Get(ctx context.Context, id string) (StatusRecord, error) {
	raw, err := r.RDB.Get(ctx, statusKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return StatusRecord{}, ErrOrderNotFound
	}
	if err != nil {
		return StatusRecord{}, err
	}
	var rec StatusRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return StatusRecord{}, fmt.Errorf("decode order status: %w", err)
	}
	return rec, nil
}

func (r *RedisStatuses) Create(ctx context.Context, id, clientID string, at time.Time) error {
	b, _ := json.Marshal(StatusRecord{Status: StatusPlaced, UpdatedAt: at.UTC(), ClientID: clientID})
	return r.RDB.Set(ctx, statusKey(id), b, redisx.TTLStatusCache).Err()
}

const maxTransitionRetries = 3

func (r *RedisStatuses) Transition(ctx context.Context, id string, to Status, at time.Time) error {
	var err error
	for i := 0; i < maxTransitionRetries; i++ {
		err = r.transition(ctx, id, to, at)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

func (r *RedisStatuses) transition(ctx context.Context, id string, to Status, at time.Time) error {
	key := statusKey(id)
	return r.RDB.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		var cur StatusRecord
		if err := json.Unmarshal(raw, &cur); err != nil {
			return fmt.Errorf("decode order status: %w", err)
		}
		if !CanTransition(cur.Status, to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur.Status, to)
		}
		b, _ := json.Marshal(StatusRecord{Status: to, UpdatedAt: at.UTC(), ClientID: cur.ClientID})
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, b, redisx.TTLStatusCache)
			return nil
		})
		return err
	}, key)
}
