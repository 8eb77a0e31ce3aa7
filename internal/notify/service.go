// Package notify consumes order events and sends the customer confirmation.
// Sending is simulated by a structured log line.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	kafkax "github.com/ariefcatur/go-freshbite.git/internal/kafka"
	"github.com/ariefcatur/go-freshbite.git/internal/orders"
	"github.com/ariefcatur/go-freshbite.git/internal/pricing"
	"github.com/ariefcatur/go-freshbite.git/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Deduper reports whether an event id is seen for the first time.
type Deduper interface {
	First(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

// RedisDeduper marks event ids under dedup:{service}:{event_id}.
type RedisDeduper struct {
	RDB     *redis.Client
	Service string
}

func (d RedisDeduper) First(ctx context.Context, eventID string) (bool, error) {
	return redisx.MarkOnce(ctx, d.RDB, d.key(eventID), redisx.TTLDedup)
}

func (d RedisDeduper) Forget(ctx context.Context, eventID string) error {
	return d.RDB.Del(ctx, d.key(eventID)).Err()
}

func (d RedisDeduper) key(eventID string) string {
	return fmt.Sprintf(redisx.KeyDedup, d.Service, eventID)
}

type Service struct {
	Dedup    Deduper
	Statuses orders.StatusStore
	Log      *zap.Logger
	Now      func() time.Time
}

// HandleOrderPlaced is installed as the consumer handler.
func (s *Service) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	env, err := kafkax.Decode[orders.Envelope](m.Value)
	if err != nil {
		// a poison message would be redelivered forever; log and commit it
		s.Log.Error("drop undecodable event", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	if env.EventType != orders.EventOrderPlaced {
		return nil
	}

	first, err := s.Dedup.First(ctx, env.EventID)
	if err != nil {
		return fmt.Errorf("dedup %s: %w", env.EventID, err)
	}
	if !first {
		s.Log.Debug("duplicate event", zap.String("event_id", env.EventID))
		return nil
	}

	p, err := kafkax.Decode[orders.OrderPlacedPayload](env.Payload)
	if err != nil {
		s.Log.Error("drop event with bad payload", zap.String("event_id", env.EventID), zap.Error(err))
		return nil
	}

	s.Log.Info("order confirmation sent",
		zap.String("order_id", p.OrderID),
		zap.String("to", p.Email),
		zap.String("customer", p.CustomerName),
		zap.String("total", pricing.FormatCurrency(p.Breakdown.Total)),
		zap.String("delivery", p.Delivery.Display))

	err = s.Statuses.Transition(ctx, p.OrderID, orders.StatusConfirmed, s.now())
	switch {
	case err == nil:
	case errors.Is(err, orders.ErrOrderNotFound), errors.Is(err, orders.ErrInvalidTransition):
		// status expired or the order moved on (e.g. cancelled) before we got here
		s.Log.Warn("order not confirmed", zap.String("order_id", p.OrderID), zap.Error(err))
	default:
		// release the mark so the retry is not skipped as a duplicate
		if ferr := s.Dedup.Forget(ctx, env.EventID); ferr != nil {
			s.Log.Warn("release dedup mark failed", zap.String("event_id", env.EventID), zap.Error(ferr))
		}
		return err
	}
	return nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
