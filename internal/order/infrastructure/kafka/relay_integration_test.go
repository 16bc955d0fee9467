//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/chipstore/internal/order/application"
	"github.com/dmehra2102/chipstore/internal/order/domain"
	orderkafka "github.com/dmehra2102/chipstore/internal/order/infrastructure/kafka"
	"github.com/dmehra2102/chipstore/internal/order/infrastructure/postgres"
	"github.com/dmehra2102/chipstore/internal/testenv"
	"github.com/dmehra2102/chipstore/pkg/outbox"
	"github.com/dmehra2102/chipstore/pkg/tracing"
)

const topic = "order.events.test"

func createTopic(t *testing.T, broker string) {
	t.Helper()
	conn, err := kafka.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.CreateTopics(kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}))
}

func TestRelayPublishesOrderEvents(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	pool := testenv.Postgres(t)
	brokers := testenv.Kafka(t)
	createTopic(t, brokers[0])

	writer := orderkafka.NewWriter(log, brokers)
	t.Cleanup(func() { _ = writer.Close() })

	svc := application.NewService(log, postgres.NewRepository(log, pool))
	relay := outbox.NewRelay(log, postgres.NewOutboxStore(log, pool), outbox.NewDispatcher(log, writer, topic), "test-relay")

	o, err := svc.ProcessOrder(ctx, domain.Placement{
		CustomerName: "Ada Obi",
		Phone:        "08031234567",
		Address:      "12 Allen Ave, Ikeja, Lagos",
		Products:     []domain.LineItem{{ID: "3", Name: "Ripe Plantain Chips", Quantity: 1, Price: 2500}},
		TotalAmount:  4188,
	})
	require.NoError(t, err)

	sent, err := relay.Tick(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	sent, err = relay.Tick(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent, "sent rows are not relayed again")

	reader := kafka.NewReader(kafka.ReaderConfig{Brokers: brokers, Topic: topic, Partition: 0})
	t.Cleanup(func() { _ = reader.Close() })

	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	msg, err := reader.ReadMessage(readCtx)
	require.NoError(t, err)

	assert.Equal(t, o.ID, string(msg.Key))
	assert.Equal(t, domain.EventOrderCreated, tracing.HeaderValue(msg.Headers, outbox.EventTypeHeader))
	assert.Equal(t, "storefront-api", tracing.HeaderValue(msg.Headers, "source"))

	var ev domain.OrderCreated
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, "Ada Obi", ev.CustomerName)
	assert.Equal(t, int64(4188), ev.TotalAmount)
}
