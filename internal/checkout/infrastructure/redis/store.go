package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/chipstore/internal/checkout/domain"
)

// SessionStore keeps checkout progress under checkout:<cart session> as JSON.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func (s *SessionStore) key(session string) string {
	return "checkout:" + session
}

func (s *SessionStore) Load(ctx context.Context, session string) (*domain.Session, error) {
	data, err := s.rdb.Get(ctx, s.key(session)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cs domain.Session
	if err := json.Unmarshal(data, &cs); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	return &cs, nil
}

func (s *SessionStore) Save(ctx context.Context, session string, cs *domain.Session) error {
	data, err := json.Marshal(cs)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(session), data, s.ttl).Err()
}

func (s *SessionStore) Delete(ctx context.Context, session string) error {
	return s.rdb.Del(ctx, s.key(session)).Err()
}
