package application

import (
	"context"
	"time"

	"github.com/dmehra2102/chipstore/internal/identity/domain"
)

type ProfileRepository interface {
	// Create fails with domain.ErrEmailTaken when the email exists.
	Create(ctx context.Context, p domain.Profile) error
	GetByEmail(ctx context.Context, email string) (domain.Profile, error)
	// UpsertAdmin creates the profile or promotes the existing one, replacing
	// its password hash and name.
	UpsertAdmin(ctx context.Context, p domain.Profile) (domain.Profile, error)
}

type SessionStore interface {
	Put(ctx context.Context, s domain.Session, ttl time.Duration) error
	// Get returns domain.ErrUnauthenticated for unknown or expired tokens.
	Get(ctx context.Context, token string) (domain.Session, error)
	Delete(ctx context.Context, token string) error
}
