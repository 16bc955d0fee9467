package idempotency

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/chipstore/pkg/httpx"
)

const HeaderKey = "Idempotency-Key"

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) Key(topic string, partition int, offset int64) string {
	return fmt.Sprintf("idem:%s:%d:%d", topic, partition, offset)
}

func (s *Store) RequestKey(scope, key string) string {
	return fmt.Sprintf("idem:http:%s:%s", scope, key)
}

// Seen claims key and reports whether it had already been claimed.
func (s *Store) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, "1", s.ttl).Result()
	if err != nil {
		return false, err
	}

	return !ok, nil
}

// Release drops a claim so the same key can be used again.
func (s *Store) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// Middleware rejects a request whose Idempotency-Key was already used within
// the TTL. Requests without the header pass through. The claim is released
// when the handler answers with an error status so the client may retry.
func Middleware(log *slog.Logger, store *Store, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(HeaderKey)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			redisKey := store.RequestKey(scope, key)
			seen, err := store.Seen(r.Context(), redisKey)
			if err != nil {
				log.Error("idempotency check failed", "err", err)
				httpx.WriteError(w, http.StatusServiceUnavailable, "idempotency check failed")
				return
			}
			if seen {
				log.Info("duplicate request rejected", "key", key)
				httpx.WriteError(w, http.StatusConflict, "duplicate request")
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if ww.Status() >= http.StatusBadRequest {
				if err := store.Release(context.WithoutCancel(r.Context()), redisKey); err != nil {
					log.Error("idempotency release failed", "key", key, "err", err)
				}
			}
		})
	}
}
