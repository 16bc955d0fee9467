package application

import (
	"context"
	"time"

	"github.com/dmehra2102/chipstore/internal/order/domain"
	"github.com/dmehra2102/chipstore/pkg/outbox"
)

// Record is an order row as stored. Products holds the raw products column,
// parsed by the service so malformed rows can be quarantined.
type Record struct {
	Order    domain.Order
	Products []byte
}

// StatusEventFunc builds the outbox event for a status change from the
// locked current row, before anything is written. An error aborts the
// update.
type StatusEventFunc func(current Record) (outbox.Event, error)

type OrderRepository interface {
	SaveWithOutbox(ctx context.Context, o domain.Order, event outbox.Event) error
	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context, status domain.Status) ([]Record, error)
	UpdateStatus(ctx context.Context, id string, to domain.Status, at time.Time, event StatusEventFunc) (Record, error)
}
