package kafka

import (
	"context"
	"errors"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/chipstore/pkg/idempotency"
	"github.com/dmehra2102/chipstore/pkg/outbox"
	"github.com/dmehra2102/chipstore/pkg/tracing"
)

type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Handler interface {
	Handle(ctx context.Context, eventType string, payload []byte) error
}

type Consumer struct {
	log     *slog.Logger
	reader  Reader
	handler Handler
	idem    *idempotency.Store
	tracer  trace.Tracer
}

func NewReader(brokers []string, topic, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
}

func NewConsumer(log *slog.Logger, reader Reader, handler Handler, idem *idempotency.Store) *Consumer {
	return &Consumer{
		log:     log,
		reader:  reader,
		handler: handler,
		idem:    idem,
		tracer:  otel.Tracer("notification-consumer"),
	}
}

// Run consumes until ctx is cancelled. Every fetched message is committed,
// including ones the handler rejects; redelivered offsets are skipped.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		c.process(ctx, msg)
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.log.Error("commit failed", "offset", msg.Offset, "err", err)
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	key := c.idem.Key(msg.Topic, msg.Partition, msg.Offset)
	seen, err := c.idem.Seen(ctx, key)
	if err != nil {
		c.log.Error("idempotency check failed", "key", key, "err", err)
	} else if seen {
		c.log.Info("duplicate message skipped", "key", key)
		return
	}

	eventType := tracing.HeaderValue(msg.Headers, outbox.EventTypeHeader)
	msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
	msgCtx, span := c.tracer.Start(msgCtx, "Consume"+eventType)
	defer span.End()
	span.SetAttributes(attribute.String("order_id", string(msg.Key)), attribute.Int64("offset", msg.Offset))

	if err := c.handler.Handle(msgCtx, eventType, msg.Value); err != nil {
		span.RecordError(err)
		c.log.Error("notification failed", "order_id", string(msg.Key), "event_type", eventType, "err", err)
		return
	}
	c.log.Info("event handled", "order_id", string(msg.Key), "event_type", eventType)
}
