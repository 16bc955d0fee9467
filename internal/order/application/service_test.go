package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/chipstore/internal/order/domain"
	"github.com/dmehra2102/chipstore/pkg/outbox"
)

type fakeRepo struct {
	records   []Record
	events    []outbox.Event
	saveErr   error
	updateErr error
}

func (f *fakeRepo) SaveWithOutbox(ctx context.Context, o domain.Order, event outbox.Event) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, _ := json.Marshal(o.Products)
	o.Products = nil
	f.records = append([]Record{{Order: o, Products: raw}}, f.records...)
	f.events = append(f.events, event)
	return nil
}

func (f *fakeRepo) Get(ctx context.Context, id string) (Record, error) {
	for _, r := range f.records {
		if r.Order.ID == id {
			return r, nil
		}
	}
	return Record{}, domain.ErrNotFound
}

func (f *fakeRepo) List(ctx context.Context, status domain.Status) ([]Record, error) {
	var out []Record
	for _, r := range f.records {
		if status == "" || r.Order.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id string, to domain.Status, at time.Time, event StatusEventFunc) (Record, error) {
	for i, r := range f.records {
		if r.Order.ID != id {
			continue
		}
		ev, err := event(r)
		if err != nil {
			return Record{}, err
		}
		if f.updateErr != nil {
			return Record{}, f.updateErr
		}
		r.Order.Status = to
		r.Order.UpdatedAt = at
		f.records[i] = r
		f.events = append(f.events, ev)
		return r, nil
	}
	return Record{}, domain.ErrNotFound
}

func newTestService(repo OrderRepository) *Service {
	s := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo)
	n := 0
	s.newID = func() string {
		n++
		return []string{"", "aaa-111", "bbb-222", "ccc-333"}[n]
	}
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func placement(name, phone string) domain.Placement {
	return domain.Placement{
		CustomerName: name,
		Phone:        phone,
		Email:        "ada@example.com",
		Address:      "12 Allen Ave, Ikeja, Lagos",
		Products:     []domain.LineItem{{ID: "1", Name: "Large Unripe Plantain Chips", Quantity: 2, Price: 4000}},
		TotalAmount:  10100,
		DeliveryNote: "Shipping: standard, Payment: card",
	}
}

func TestProcessOrder(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	o, err := svc.ProcessOrder(context.Background(), placement("Ada Obi", "0803"))
	require.NoError(t, err)
	assert.Equal(t, "aaa-111", o.ID)
	assert.Equal(t, domain.StatusPending, o.Status)
	assert.Equal(t, domain.PaymentUnpaid, o.PaymentStatus)

	require.Len(t, repo.events, 1)
	ev := repo.events[0]
	assert.Equal(t, "order", ev.AggregateType)
	assert.Equal(t, "aaa-111", ev.AggregateID)
	assert.Equal(t, domain.EventOrderCreated, ev.Type)

	var payload domain.OrderCreated
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, "Ada Obi", payload.CustomerName)
	assert.Equal(t, int64(10100), payload.TotalAmount)
	assert.Len(t, payload.Products, 1)
}

func TestProcessOrderRejectsIncomplete(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	p := placement("Ada", "")
	_, err := svc.ProcessOrder(context.Background(), p)
	assert.ErrorIs(t, err, ErrInvalidOrder)

	p = placement("Ada", "0803")
	p.Products = nil
	_, err = svc.ProcessOrder(context.Background(), p)
	assert.ErrorIs(t, err, ErrInvalidOrder)
	assert.Empty(t, repo.events)
}

func TestProcessOrderStorageError(t *testing.T) {
	repo := &fakeRepo{saveErr: errors.New("connection refused")}
	_, err := newTestService(repo).ProcessOrder(context.Background(), placement("Ada", "0803"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestListOrdersFiltersAndQuarantines(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.ProcessOrder(ctx, placement("Ada Obi", "0803 111"))
	require.NoError(t, err)
	_, err = svc.ProcessOrder(ctx, placement("Chidi Eze", "0805 222"))
	require.NoError(t, err)
	repo.records = append(repo.records, Record{
		Order:    domain.Order{ID: "broken-1", Status: domain.StatusPending},
		Products: []byte(`{"oops":true}`),
	})

	res, err := svc.ListOrders(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, res.Orders, 2)
	assert.Equal(t, "bbb-222", res.Orders[0].ID)
	assert.Equal(t, []string{"broken-1"}, res.Quarantined)
	assert.Len(t, res.Orders[0].Products, 1)

	res, err = svc.ListOrders(ctx, ListFilter{Query: "ADA"})
	require.NoError(t, err)
	require.Len(t, res.Orders, 1)
	assert.Equal(t, "aaa-111", res.Orders[0].ID)

	res, err = svc.ListOrders(ctx, ListFilter{Query: "0805 2"})
	require.NoError(t, err)
	require.Len(t, res.Orders, 1)
	assert.Equal(t, "Chidi Eze", res.Orders[0].CustomerName)

	res, err = svc.ListOrders(ctx, ListFilter{Status: "shipped"})
	require.NoError(t, err)
	assert.Empty(t, res.Orders)
	assert.Empty(t, res.Quarantined)

	_, err = svc.ListOrders(ctx, ListFilter{Status: "lost"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestGetOrder(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)
	ctx := context.Background()
	_, err := svc.ProcessOrder(ctx, placement("Ada", "0803"))
	require.NoError(t, err)

	o, err := svc.GetOrder(ctx, "aaa-111")
	require.NoError(t, err)
	assert.Equal(t, "Ada", o.CustomerName)

	_, err = svc.GetOrder(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	repo.records[0].Products = []byte(`[{"id":"","name":"x","quantity":1,"price":1}]`)
	_, err = svc.GetOrder(ctx, "aaa-111")
	assert.ErrorIs(t, err, domain.ErrMalformedProducts)
}

func TestUpdateStatus(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)
	ctx := context.Background()
	_, err := svc.ProcessOrder(ctx, placement("Ada", "0803"))
	require.NoError(t, err)

	o, err := svc.UpdateStatus(ctx, "aaa-111", "shipped")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, o.Status)

	require.Len(t, repo.events, 2)
	var changed domain.OrderStatusChanged
	require.NoError(t, json.Unmarshal(repo.events[1].Payload, &changed))
	assert.Equal(t, domain.StatusPending, changed.From)
	assert.Equal(t, domain.StatusShipped, changed.To)
	assert.Equal(t, domain.EventOrderStatusChanged, repo.events[1].Type)
}

func TestUpdateStatusFailureLeavesOrder(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)
	ctx := context.Background()
	_, err := svc.ProcessOrder(ctx, placement("Ada", "0803"))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, "aaa-111", "teleported")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	repo.updateErr = errors.New("write failed")
	_, err = svc.UpdateStatus(ctx, "aaa-111", "delivered")
	require.Error(t, err)

	o, err := svc.GetOrder(ctx, "aaa-111")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, o.Status)

	_, err = svc.UpdateStatus(ctx, "nope", "delivered")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateStatusRejectsMalformedOrder(t *testing.T) {
	repo := &fakeRepo{records: []Record{{
		Order:    domain.Order{ID: "broken-1", Status: domain.StatusPending},
		Products: []byte(`[{"id":"1","name":"Ripe Plantain Chips","quantity":0,"price":2500}]`),
	}}}
	svc := newTestService(repo)

	_, err := svc.UpdateStatus(context.Background(), "broken-1", "shipped")
	require.ErrorIs(t, err, domain.ErrMalformedProducts)

	assert.Equal(t, domain.StatusPending, repo.records[0].Order.Status)
	assert.Empty(t, repo.events, "no status event is queued")
}
