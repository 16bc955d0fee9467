package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps each cart session's serialized lines under cart:<session>.
// Every save refreshes the TTL so active carts do not expire.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) key(session string) string {
	return "cart:" + session
}

func (s *Store) Load(ctx context.Context, session string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, s.key(session)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

func (s *Store) Save(ctx context.Context, session string, data []byte) error {
	return s.rdb.Set(ctx, s.key(session), data, s.ttl).Err()
}

func (s *Store) Delete(ctx context.Context, session string) error {
	return s.rdb.Del(ctx, s.key(session)).Err()
}
