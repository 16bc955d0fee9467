package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	cartapp "github.com/dmehra2102/chipstore/internal/cart/application"
	carthttp "github.com/dmehra2102/chipstore/internal/cart/infrastructure/http"
	cartredis "github.com/dmehra2102/chipstore/internal/cart/infrastructure/redis"
	catalog "github.com/dmehra2102/chipstore/internal/catalog/domain"
	cataloghttp "github.com/dmehra2102/chipstore/internal/catalog/infrastructure/http"
	checkoutapp "github.com/dmehra2102/chipstore/internal/checkout/application"
	checkouthttp "github.com/dmehra2102/chipstore/internal/checkout/infrastructure/http"
	"github.com/dmehra2102/chipstore/internal/checkout/infrastructure/orderclient"
	checkoutredis "github.com/dmehra2102/chipstore/internal/checkout/infrastructure/redis"
	identityapp "github.com/dmehra2102/chipstore/internal/identity/application"
	identityhttp "github.com/dmehra2102/chipstore/internal/identity/infrastructure/http"
	identitypg "github.com/dmehra2102/chipstore/internal/identity/infrastructure/postgres"
	identityredis "github.com/dmehra2102/chipstore/internal/identity/infrastructure/redis"
	orderapp "github.com/dmehra2102/chipstore/internal/order/application"
	orderhttp "github.com/dmehra2102/chipstore/internal/order/infrastructure/http"
	orderkafka "github.com/dmehra2102/chipstore/internal/order/infrastructure/kafka"
	orderpg "github.com/dmehra2102/chipstore/internal/order/infrastructure/postgres"
	"github.com/dmehra2102/chipstore/pkg/config"
	"github.com/dmehra2102/chipstore/pkg/idempotency"
	"github.com/dmehra2102/chipstore/pkg/logging"
	"github.com/dmehra2102/chipstore/pkg/outbox"
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

	tp, err := tracing.Init(ctx, "storefront-api", cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	// Postgres Setup
	pool, err := pgxpool.New(ctx, cfg.PGURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	// Kafka producer
	writer := orderkafka.NewWriter(log, []string{cfg.KafkaAddr})
	defer writer.Close()

	// Orders & outbox relay
	orderRepo := orderpg.NewRepository(log, pool)
	store := orderpg.NewOutboxStore(log, pool)
	dispatch := outbox.NewDispatcher(log, writer, cfg.OutboxTopic)
	relay := outbox.NewRelay(log, store, dispatch, "storefront-api-relay")
	orders := orderhttp.NewHandler(log, orderapp.NewService(log, orderRepo), idempotency.NewStore(rdb, cfg.IdempotencyTTL))

	// Storefront
	products := catalog.Default()
	carts := cartapp.NewService(log, cartredis.NewStore(rdb, cfg.CartTTL), products)
	checkout := checkoutapp.NewService(log, carts, checkoutredis.NewSessionStore(rdb, cfg.CartTTL),
		orderclient.New(cfg.OrderEndpoint, cfg.OrderClientTimeout)).
		WithStaleSubmission(2 * cfg.OrderClientTimeout)

	identity := identityapp.NewService(log, identitypg.NewProfileRepository(log, pool), identityredis.NewSessionStore(rdb), cfg.SessionTTL)
	auth := identityhttp.NewHandler(log, identity)

	// HTTP server
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(identityhttp.Authenticate(log, identity))

	r.Mount("/products", cataloghttp.NewHandler(log, products).Routes())
	r.Mount("/orders", orders.Routes())
	r.Mount("/auth", auth.Routes())
	r.Mount("/admin", auth.AdminRoutes())
	r.With(identityhttp.RequireAdmin).Mount("/admin/orders", orders.AdminRoutes())
	r.Group(func(r chi.Router) {
		r.Use(carthttp.SessionMiddleware(cfg.CartTTL))
		r.Mount("/cart", carthttp.NewHandler(log, carts).Routes())
		r.Mount("/checkout", checkouthttp.NewHandler(log, checkout, customerFromSession).Routes())
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      otelhttp.NewHandler(r, "storefront-api"),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.OrderClientTimeout + 5*time.Second,
	}

	// Run relay
	go func() {
		if err := relay.Run(ctx); err != nil {
			log.Error("relay stopped with error", "err", err)
		}
	}()

	// Run HTTP
	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	log.Info("storefront-api shutdown complete")
}

func customerFromSession(r *http.Request) *checkoutapp.Customer {
	sess, ok := identityhttp.SessionFromContext(r.Context())
	if !ok {
		return nil
	}
	return &checkoutapp.Customer{ID: sess.UserID, Name: sess.Name, Email: sess.Email}
}
