package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/chipstore/internal/order/application"
	"github.com/dmehra2102/chipstore/internal/order/domain"
	"github.com/dmehra2102/chipstore/pkg/outbox"
)

const orderColumns = `id::text, customer_name, phone, email, address, products, total_amount,
	delivery_note, user_id::text, status, payment_status, created_at, updated_at`

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) SaveWithOutbox(ctx context.Context, o domain.Order, event outbox.Event) error {
	products, err := json.Marshal(o.Products)
	if err != nil {
		return err
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO orders (id, customer_name, phone, email, address, products, total_amount,
			delivery_note, user_id, status, payment_status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		o.ID, o.CustomerName, o.Phone, o.Email, o.Address, products, o.TotalAmount,
		o.DeliveryNote, o.UserID, o.Status, o.PaymentStatus, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return err
	}

	if err := insertOutbox(ctx, tx, event); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) Get(ctx context.Context, id string) (application.Record, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id::text = $1`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return application.Record{}, domain.ErrNotFound
	}
	return rec, err
}

// List returns orders newest first, optionally restricted to one status.
func (r *Repository) List(ctx context.Context, status domain.Status) ([]application.Record, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []application.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// UpdateStatus locks the row, lets event vet it, then changes the status and
// writes the change event in one transaction. The returned record is what
// was committed.
func (r *Repository) UpdateStatus(ctx context.Context, id string, to domain.Status, at time.Time, event application.StatusEventFunc) (application.Record, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return application.Record{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	current, err := scanRecord(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id::text = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return application.Record{}, domain.ErrNotFound
	}
	if err != nil {
		return application.Record{}, err
	}

	ev, err := event(current)
	if err != nil {
		return application.Record{}, err
	}

	rec, err := scanRecord(tx.QueryRow(ctx, `UPDATE orders SET status = $2, updated_at = $3
		WHERE id::text = $1
		RETURNING `+orderColumns, id, to, at))
	if err != nil {
		return application.Record{}, err
	}

	if err := insertOutbox(ctx, tx, ev); err != nil {
		return application.Record{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return application.Record{}, err
	}
	return rec, nil
}

func insertOutbox(ctx context.Context, tx pgx.Tx, ev outbox.Event) error {
	headers := ev.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	_, err := tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, headers, traceparent, status)
		VALUES ($1,$2,$3,$4,$5,$6,'pending')`,
		ev.AggregateType, ev.AggregateID, ev.Type, ev.Payload, headers, ev.Traceparent)
	return err
}

func scanRecord(row pgx.Row) (application.Record, error) {
	var rec application.Record
	o := &rec.Order
	err := row.Scan(&o.ID, &o.CustomerName, &o.Phone, &o.Email, &o.Address, &rec.Products, &o.TotalAmount,
		&o.DeliveryNote, &o.UserID, &o.Status, &o.PaymentStatus, &o.CreatedAt, &o.UpdatedAt)
	return rec, err
}
