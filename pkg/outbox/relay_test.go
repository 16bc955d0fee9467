package outbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu       sync.Mutex
	batch    []Event
	lockErr  error
	sent     []int64
	failed   map[int64]string
	extended [][]int64
}

func (s *fakeStore) LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lockErr != nil {
		return nil, s.lockErr
	}
	out := s.batch
	s.batch = nil
	return out, nil
}

func (s *fakeStore) MarkSent(ctx context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, ids...)
	return nil
}

func (s *fakeStore) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed == nil {
		s.failed = map[int64]string{}
	}
	s.failed[id] = errMsg
	return nil
}

func (s *fakeStore) ExtendLease(ctx context.Context, relayID string, ids []int64, lease time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extended = append(s.extended, ids)
	return nil
}

type fakeProducer struct {
	msgs   []kafka.Message
	failOn string
}

func (p *fakeProducer) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		if string(m.Key) == p.failOn {
			return errors.New("broker unavailable")
		}
	}
	p.msgs = append(p.msgs, msgs...)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatcher_MessageHeaders(t *testing.T) {
	d := NewDispatcher(discardLogger(), &fakeProducer{}, "order.events")

	msg := d.Message(Event{
		ID:          7,
		AggregateID: "order-1",
		Type:        "OrderCreated",
		Payload:     []byte(`{"order_id":"order-1"}`),
		Headers:     map[string]string{"source": "storefront-api"},
		Traceparent: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
	})

	assert.Equal(t, "order.events", msg.Topic)
	assert.Equal(t, "order-1", string(msg.Key))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "OrderCreated", headers[EventTypeHeader])
	assert.Equal(t, "storefront-api", headers["source"])
	assert.NotEmpty(t, headers["traceparent"])
}

func TestRelay_Tick_MarksSentAndFailed(t *testing.T) {
	store := &fakeStore{batch: []Event{
		{ID: 1, AggregateID: "order-1", Type: "OrderCreated"},
		{ID: 2, AggregateID: "order-2", Type: "OrderCreated"},
		{ID: 3, AggregateID: "order-3", Type: "OrderStatusChanged"},
	}}
	producer := &fakeProducer{failOn: "order-2"}
	relay := NewRelay(discardLogger(), store, NewDispatcher(discardLogger(), producer, "order.events"), "test-relay")

	n, err := relay.Tick(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, []int64{1, 3}, store.sent)
	assert.Contains(t, store.failed, int64(2))
	assert.Len(t, producer.msgs, 2)
}

func TestRelay_Tick_EmptyBatch(t *testing.T) {
	relay := NewRelay(discardLogger(), &fakeStore{}, NewDispatcher(discardLogger(), &fakeProducer{}, "t"), "r")

	n, err := relay.Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRelay_Tick_ExtendsLeaseOnSlowBatch(t *testing.T) {
	store := &fakeStore{batch: []Event{
		{ID: 1, AggregateID: "a"},
		{ID: 2, AggregateID: "b"},
	}}
	relay := NewRelay(discardLogger(), store, NewDispatcher(discardLogger(), &fakeProducer{}, "t"), "r", WithLease(time.Second))

	clock := time.Unix(0, 0)
	relay.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	_, err := relay.Tick(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, store.extended)
	assert.Equal(t, []int64{1, 2}, store.extended[0])
}

func TestRelay_Tick_LockError(t *testing.T) {
	store := &fakeStore{lockErr: errors.New("db down")}
	relay := NewRelay(discardLogger(), store, NewDispatcher(discardLogger(), &fakeProducer{}, "t"), "r")

	_, err := relay.Tick(context.Background())
	assert.Error(t, err)
}

func TestRelay_Run_StopsOnCancel(t *testing.T) {
	relay := NewRelay(discardLogger(), &fakeStore{}, NewDispatcher(discardLogger(), &fakeProducer{}, "t"), "r", WithInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}
