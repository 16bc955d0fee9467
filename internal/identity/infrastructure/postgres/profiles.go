package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/chipstore/internal/identity/domain"
)

const uniqueViolation = "23505"

type ProfileRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewProfileRepository(log *slog.Logger, pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{log: log, pool: pool}
}

func (r *ProfileRepository) Create(ctx context.Context, p domain.Profile) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO profiles (id, email, full_name, role, password_hash, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$6)`,
		p.ID, p.Email, p.FullName, p.Role, p.PasswordHash, p.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrEmailTaken
	}
	return err
}

func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (domain.Profile, error) {
	var p domain.Profile
	err := r.pool.QueryRow(ctx, `SELECT id::text, email, full_name, role, password_hash, created_at
		FROM profiles WHERE email = $1`, email).
		Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.PasswordHash, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	return p, err
}

func (r *ProfileRepository) UpsertAdmin(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	var out domain.Profile
	err := r.pool.QueryRow(ctx, `INSERT INTO profiles (id, email, full_name, role, password_hash, created_at, updated_at)
		VALUES ($1,$2,$3,'admin',$4,$5,$5)
		ON CONFLICT (email) DO UPDATE
		SET role = 'admin',
		    password_hash = EXCLUDED.password_hash,
		    full_name = CASE WHEN EXCLUDED.full_name = '' THEN profiles.full_name ELSE EXCLUDED.full_name END,
		    updated_at = EXCLUDED.updated_at
		RETURNING id::text, email, full_name, role, password_hash, created_at`,
		p.ID, p.Email, p.FullName, p.PasswordHash, p.CreatedAt).
		Scan(&out.ID, &out.Email, &out.FullName, &out.Role, &out.PasswordHash, &out.CreatedAt)
	return out, err
}
