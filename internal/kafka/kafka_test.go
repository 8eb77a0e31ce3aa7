package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	closed bool
}

func (w *memWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *memWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func TestProducerFlushesOnClose(t *testing.T) {
	w := &memWriter{}
	p := newProducer(w, 16, zap.NewNop())
	p.Start(context.Background())

	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, p.Publish(ctx, []byte(k), []byte(`{}`)))
	}
	p.Close()
	p.WaitClosed()

	require.Len(t, w.msgs, 3)
	assert.Equal(t, "a", string(w.msgs[0].Key))
	assert.Equal(t, "content-type", w.msgs[0].Headers[0].Key)
	assert.True(t, w.closed)

	assert.ErrorIs(t, p.Publish(ctx, []byte("d"), nil), ErrProducerClosed)
	p.Close() // second close is a no-op
}

func TestProducerPublishHonoursContext(t *testing.T) {
	p := newProducer(&memWriter{}, 1, zap.NewNop())
	// loop not started: the one-slot inbox fills up
	require.NoError(t, p.Publish(context.Background(), nil, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Publish(ctx, nil, nil), context.DeadlineExceeded)
}

type memReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	closed    bool
}

func (r *memReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *memReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *memReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *memReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func runConsumer(t *testing.T, r *memReader, workers int, h Handler) (stop func()) {
	t.Helper()
	c := newConsumer(r, workers, zap.NewNop())
	c.backoff = time.Millisecond
	c.maxBackoff = 4 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx, h) }()
	return func() {
		cancel()
		require.NoError(t, <-done)
	}
}

func TestConsumerRetriesFailureBeforeCommittingLaterOffsets(t *testing.T) {
	r := &memReader{queue: []kafka.Message{
		{Partition: 0, Offset: 10, Value: []byte("flaky")},
		{Partition: 0, Offset: 11},
		{Partition: 1, Offset: 5},
	}}
	var mu sync.Mutex
	failures := 2
	stop := runConsumer(t, r, 2, func(_ context.Context, m kafka.Message) error {
		mu.Lock()
		defer mu.Unlock()
		if string(m.Value) == "flaky" && failures > 0 {
			failures--
			return errors.New("boom")
		}
		return nil
	})

	require.Eventually(t, func() bool { return len(r.commits()) == 3 }, time.Second, 5*time.Millisecond)
	stop()

	got := r.commits()
	assert.Less(t, indexOf(got, 10), indexOf(got, 11), "partition 0 commits in offset order")
	assert.Contains(t, got, int64(5))
	assert.True(t, r.closed)
}

func TestConsumerNeverCommitsPastAPersistentFailure(t *testing.T) {
	r := &memReader{queue: []kafka.Message{
		{Partition: 0, Offset: 9},
		{Partition: 0, Offset: 10, Value: []byte("bad")},
		{Partition: 0, Offset: 11},
	}}
	stop := runConsumer(t, r, 3, func(_ context.Context, m kafka.Message) error {
		if string(m.Value) == "bad" {
			return errors.New("boom")
		}
		return nil
	})

	require.Eventually(t, func() bool { return len(r.commits()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	stop()

	assert.Equal(t, []int64{9}, r.commits())
}

func indexOf(offsets []int64, o int64) int {
	for i, v := range offsets {
		if v == o {
			return i
		}
	}
	return -1
}

func TestDecode(t *testing.T) {
	type payload struct {
		OrderID string `json:"order_id"`
	}
	p, err := Decode[payload]([]byte(`{"order_id":"FB-1"}`))
	require.NoError(t, err)
	assert.Equal(t, "FB-1", p.OrderID)

	_, err = Decode[payload]([]byte(`nope`))
	assert.Error(t, err)
}
