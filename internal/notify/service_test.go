package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ariefcatur/go-freshbite.git/internal/orders"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var now = time.Date(2026, 10, 17, 19, 0, 0, 0, time.UTC)

func message(t *testing.T, eventID, eventType, orderID string) kafkago.Message {
	t.Helper()
	p, err := json.Marshal(orders.OrderPlacedPayload{OrderID: orderID, Email: "jane@example.com", CustomerName: "Jane Doe"})
	require.NoError(t, err)
	b, err := json.Marshal(orders.Envelope{EventID: eventID, EventType: eventType, EventVersion: 1, CorrelationID: orderID, Payload: p})
	require.NoError(t, err)
	return kafkago.Message{Key: []byte(orderID), Value: b}
}

type fixture struct {
	svc      *Service
	statuses *orders.RedisStatuses
	logs     *observer.ObservedLogs
	mr       *miniredis.Miniredis
}

func newFixture(t *testing.T) *fixture {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	core, logs := observer.New(zapcore.InfoLevel)
	statuses := &orders.RedisStatuses{RDB: rdb}
	return &fixture{
		svc: &Service{
			Dedup:    RedisDeduper{RDB: rdb, Service: "notifier"},
			Statuses: statuses,
			Log:      zap.New(core),
			Now:      func() time.Time { return now },
		},
		statuses: statuses,
		logs:     logs,
		mr:       mr,
	}
}

func TestConfirmsPlacedOrderOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.statuses.Create(ctx, "FB-1", "abc", now.Add(-time.Minute)))
	m := message(t, "ev-1", orders.EventOrderPlaced, "FB-1")

	require.NoError(t, f.svc.HandleOrderPlaced(ctx, m))
	require.NoError(t, f.svc.HandleOrderPlaced(ctx, m))

	rec, err := f.statuses.Get(ctx, "FB-1")
	require.NoError(t, err)
	assert.Equal(t, orders.StatusConfirmed, rec.Status)
	sent := f.logs.FilterMessage("order confirmation sent")
	require.Equal(t, 1, sent.Len())
	assert.Equal(t, "jane@example.com", sent.All()[0].ContextMap()["to"])
	assert.True(t, f.mr.Exists("dedup:notifier:ev-1"))
}

func TestIgnoresOtherEventsAndGarbage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	assert.NoError(t, f.svc.HandleOrderPlaced(ctx, message(t, "ev-2", "OrderShipped", "FB-2")))
	assert.NoError(t, f.svc.HandleOrderPlaced(ctx, kafkago.Message{Value: []byte("{")}))
	assert.Equal(t, 0, f.logs.FilterMessage("order confirmation sent").Len())
}

func TestMissingStatusIsLoggedNotRetried(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	err := f.svc.HandleOrderPlaced(ctx, message(t, "ev-3", orders.EventOrderPlaced, "FB-3"))

	assert.NoError(t, err)
	assert.Equal(t, 1, f.logs.FilterMessage("order not confirmed").Len())
}

type flakyStatuses struct{ orders.StatusStore }

func (flakyStatuses) Transition(context.Context, string, orders.Status, time.Time) error {
	return errors.New("redis down")
}

func TestTransientFailureReleasesDedup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc.Statuses = flakyStatuses{f.statuses}

	err := f.svc.HandleOrderPlaced(ctx, message(t, "ev-4", orders.EventOrderPlaced, "FB-4"))

	assert.EqualError(t, err, "redis down")
	assert.False(t, f.mr.Exists("dedup:notifier:ev-4"))
}
