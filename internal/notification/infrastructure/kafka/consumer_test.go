package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/chipstore/pkg/idempotency"
)

type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []int64
	closed    bool
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	if len(f.msgs) > 0 {
		m := f.msgs[0]
		f.msgs = f.msgs[1:]
		f.mu.Unlock()
		return m, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (f *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

func (f *fakeReader) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type call struct {
	eventType string
	payload   string
}

type fakeHandler struct {
	mu    sync.Mutex
	calls []call
	err   error
}

func (f *fakeHandler) Handle(ctx context.Context, eventType string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{eventType, string(payload)})
	return f.err
}

func message(offset int64, eventType, value string) kafka.Message {
	return kafka.Message{
		Topic:     "order.events",
		Partition: 0,
		Offset:    offset,
		Key:       []byte("order-1"),
		Value:     []byte(value),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "traceparent", Value: []byte("00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")},
		},
	}
}

func runConsumer(t *testing.T, reader *fakeReader, handler *fakeHandler) {
	t.Helper()
	want := len(reader.msgs)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	c := NewConsumer(slog.New(slog.NewTextHandler(io.Discard, nil)), reader, handler, idempotency.NewStore(rdb, time.Minute))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool {
		reader.mu.Lock()
		defer reader.mu.Unlock()
		return len(reader.committed) == want
	}, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestConsumer_DispatchesAndSkipsRedelivery(t *testing.T) {
	reader := &fakeReader{msgs: []kafka.Message{
		message(1, "OrderCreated", `{"order_id":"order-1"}`),
		message(1, "OrderCreated", `{"order_id":"order-1"}`),
		message(2, "OrderStatusChanged", `{"order_id":"order-1","to":"shipped"}`),
	}}
	handler := &fakeHandler{}
	runConsumer(t, reader, handler)

	assert.Equal(t, []call{
		{"OrderCreated", `{"order_id":"order-1"}`},
		{"OrderStatusChanged", `{"order_id":"order-1","to":"shipped"}`},
	}, handler.calls)
	assert.Equal(t, []int64{1, 1, 2}, reader.committed)
	assert.True(t, reader.closed)
}

func TestConsumer_CommitsHandlerFailures(t *testing.T) {
	reader := &fakeReader{msgs: []kafka.Message{message(7, "OrderCreated", `{}`)}}
	handler := &fakeHandler{err: errors.New("smtp down")}
	runConsumer(t, reader, handler)

	assert.Len(t, handler.calls, 1)
	assert.Equal(t, []int64{7}, reader.committed)
}
