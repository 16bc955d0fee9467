package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmehra2102/chipstore/internal/order/domain"
	"github.com/dmehra2102/chipstore/pkg/outbox"
	"github.com/dmehra2102/chipstore/pkg/tracing"
)

const aggregateType = "order"

var ErrInvalidOrder = errors.New("missing required fields in order data")

type Service struct {
	log   *slog.Logger
	repo  OrderRepository
	now   func() time.Time
	newID func() string
}

func NewService(log *slog.Logger, repo OrderRepository) *Service {
	return &Service{
		log:   log,
		repo:  repo,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// ProcessOrder stores a new pending, unpaid order together with its
// OrderCreated outbox event.
func (s *Service) ProcessOrder(ctx context.Context, p domain.Placement) (domain.Order, error) {
	if p.CustomerName == "" || p.Phone == "" || p.Address == "" || len(p.Products) == 0 || p.TotalAmount <= 0 {
		return domain.Order{}, ErrInvalidOrder
	}

	o := domain.NewOrder(s.newID(), p, s.now())
	payload, err := json.Marshal(domain.NewOrderCreated(o))
	if err != nil {
		return domain.Order{}, err
	}
	event := s.event(ctx, o.ID, domain.EventOrderCreated, payload)
	if err := s.repo.SaveWithOutbox(ctx, o, event); err != nil {
		return domain.Order{}, fmt.Errorf("save order: %w", err)
	}
	s.log.Info("order stored", "order_id", o.ID, "total_amount", o.TotalAmount, "items", len(o.Products))
	return o, nil
}

type ListFilter struct {
	Status string
	Query  string
}

// ListResult carries the orders that parsed cleanly plus the ids of rows
// whose products column could not be read.
type ListResult struct {
	Orders      []domain.Order `json:"orders"`
	Quarantined []string       `json:"quarantined"`
}

func (s *Service) ListOrders(ctx context.Context, f ListFilter) (ListResult, error) {
	var status domain.Status
	if f.Status != "" {
		st, err := domain.ParseStatus(f.Status)
		if err != nil {
			return ListResult{}, err
		}
		status = st
	}

	records, err := s.repo.List(ctx, status)
	if err != nil {
		return ListResult{}, fmt.Errorf("list orders: %w", err)
	}

	res := ListResult{Orders: []domain.Order{}, Quarantined: []string{}}
	for _, rec := range records {
		o, err := s.hydrate(rec)
		if err != nil {
			res.Quarantined = append(res.Quarantined, rec.Order.ID)
			continue
		}
		if o.Matches(f.Query) {
			res.Orders = append(res.Orders, o)
		}
	}
	return res, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	return s.hydrate(rec)
}

// UpdateStatus returns the order as committed; on error nothing was written.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (domain.Order, error) {
	to, err := domain.ParseStatus(status)
	if err != nil {
		return domain.Order{}, err
	}
	at := s.now()

	rec, err := s.repo.UpdateStatus(ctx, id, to, at, func(current Record) (outbox.Event, error) {
		// A row the admin view cannot show is left untouched.
		if _, err := s.hydrate(current); err != nil {
			return outbox.Event{}, err
		}
		from := current.Order.Status
		payload, err := json.Marshal(domain.OrderStatusChanged{OrderID: id, From: from, To: to, ChangedAt: at})
		if err != nil {
			return outbox.Event{}, err
		}
		return s.event(ctx, id, domain.EventOrderStatusChanged, payload), nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	s.log.Info("order status updated", "order_id", id, "status", to)
	return s.hydrate(rec)
}

func (s *Service) hydrate(rec Record) (domain.Order, error) {
	items, err := domain.ParseLineItems(rec.Products)
	if err != nil {
		s.log.Warn("quarantined order with malformed products", "order_id", rec.Order.ID, "err", err)
		return domain.Order{}, err
	}
	o := rec.Order
	o.Products = items
	return o, nil
}

func (s *Service) event(ctx context.Context, orderID, typ string, payload []byte) outbox.Event {
	return outbox.Event{
		AggregateType: aggregateType,
		AggregateID:   orderID,
		Type:          typ,
		Payload:       payload,
		Headers:       map[string]string{"source": "storefront-api"},
		Traceparent:   tracing.Traceparent(ctx),
	}
}
