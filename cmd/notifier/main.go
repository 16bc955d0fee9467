package main

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/chipstore/internal/notification/application"
	"github.com/dmehra2102/chipstore/internal/notification/infrastructure/email"
	notifykafka "github.com/dmehra2102/chipstore/internal/notification/infrastructure/kafka"
	"github.com/dmehra2102/chipstore/pkg/config"
	"github.com/dmehra2102/chipstore/pkg/idempotency"
	"github.com/dmehra2102/chipstore/pkg/logging"
	"github.com/dmehra2102/chipstore/pkg/shutdown"
	"github.com/dmehra2102/chipstore/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info").Error("config load failed", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, "notifier", cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	if cfg.NotificationEmail == "" {
		log.Warn("no notification email configured, order emails will be skipped")
	}

	redisDB := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisDB.Close()
	idem := idempotency.NewStore(redisDB, cfg.IdempotencyTTL)

	svc := application.NewService(log, email.NewLogSender(log), cfg.NotificationEmail)

	reader := notifykafka.NewReader([]string{cfg.KafkaAddr}, cfg.OutboxTopic, cfg.ConsumerGroup)
	consumer := notifykafka.NewConsumer(log, reader, svc, idem)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Run(ctx); err != nil {
			log.Error("consumer stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	// Let the in-flight message finish and the reader close.
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Warn("consumer did not stop in time")
	}
	log.Info("notifier shutdown")
}
