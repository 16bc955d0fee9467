package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmehra2102/chipstore/internal/identity/domain"
)

type Service struct {
	log      *slog.Logger
	profiles ProfileRepository
	sessions SessionStore
	ttl      time.Duration
	cost     int
	now      func() time.Time
}

func NewService(log *slog.Logger, profiles ProfileRepository, sessions SessionStore, ttl time.Duration) *Service {
	return &Service{
		log:      log,
		profiles: profiles,
		sessions: sessions,
		ttl:      ttl,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// WithBcryptCost overrides bcrypt.DefaultCost.
func (s *Service) WithBcryptCost(cost int) *Service {
	s.cost = cost
	return s
}

type SignupInput struct {
	FullName        string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (domain.Session, error) {
	if in.Password != in.ConfirmPassword {
		return domain.Session{}, domain.ErrPasswordMismatch
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return domain.Session{}, fmt.Errorf("hash password: %w", err)
	}
	p := domain.Profile{
		ID:           uuid.NewString(),
		Email:        domain.NormalizeEmail(in.Email),
		FullName:     in.FullName,
		Role:         domain.RoleCustomer,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.profiles.Create(ctx, p); err != nil {
		return domain.Session{}, err
	}
	s.log.Info("profile created", "user_id", p.ID)
	return s.open(ctx, p)
}

func (s *Service) Login(ctx context.Context, email, password string) (domain.Session, error) {
	p, err := s.profiles.GetByEmail(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, domain.ErrProfileNotFound) {
		return domain.Session{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return domain.Session{}, domain.ErrInvalidCredentials
	}
	return s.open(ctx, p)
}

// AdminLogin signs in and checks the role once. A non-admin session is
// revoked before ErrForbidden is returned.
func (s *Service) AdminLogin(ctx context.Context, email, password string) (domain.Session, error) {
	sess, err := s.Login(ctx, email, password)
	if err != nil {
		return domain.Session{}, err
	}
	if !sess.IsAdmin() {
		if err := s.sessions.Delete(ctx, sess.Token); err != nil {
			s.log.Error("failed to revoke non-admin session", "user_id", sess.UserID, "err", err)
		}
		s.log.Warn("admin login refused", "user_id", sess.UserID)
		return domain.Session{}, domain.ErrForbidden
	}
	return sess, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

func (s *Service) Authenticate(ctx context.Context, token string) (domain.Session, error) {
	if token == "" {
		return domain.Session{}, domain.ErrUnauthenticated
	}
	return s.sessions.Get(ctx, token)
}

func (s *Service) CreateAdmin(ctx context.Context, email, password, fullName string) (domain.Profile, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return domain.Profile{}, domain.ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("hash password: %w", err)
	}
	p, err := s.profiles.UpsertAdmin(ctx, domain.Profile{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     fullName,
		Role:         domain.RoleAdmin,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return domain.Profile{}, err
	}
	s.log.Info("admin profile ready", "user_id", p.ID, "email", p.Email)
	return p, nil
}

func (s *Service) open(ctx context.Context, p domain.Profile) (domain.Session, error) {
	sess := domain.Session{
		Token:     uuid.NewString(),
		UserID:    p.ID,
		Name:      p.FullName,
		Email:     p.Email,
		Role:      p.Role,
		ExpiresAt: s.now().Add(s.ttl).UTC(),
	}
	if err := s.sessions.Put(ctx, sess, s.ttl); err != nil {
		return domain.Session{}, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}
