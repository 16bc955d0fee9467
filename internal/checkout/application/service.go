package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	cart "github.com/dmehra2102/chipstore/internal/cart/domain"
	"github.com/dmehra2102/chipstore/internal/checkout/domain"
	"github.com/dmehra2102/chipstore/pkg/syncx"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrNoCheckout       = errors.New("no checkout in progress")
	ErrSubmissionFailed = errors.New("failed to place order")
)

type Service struct {
	log      *slog.Logger
	carts    Carts
	sessions SessionStore
	orders   OrderSubmitter
	locks    *syncx.KeyedMutex
	now      func() time.Time
	newID    func() string

	staleAfter time.Duration
}

// DefaultStaleSubmission bounds how long a session may sit in submitting.
const DefaultStaleSubmission = 2 * time.Minute

func NewService(log *slog.Logger, carts Carts, sessions SessionStore, orders OrderSubmitter) *Service {
	return &Service{
		log:      log,
		carts:    carts,
		sessions: sessions,
		orders:   orders,
		locks:    syncx.NewKeyedMutex(),
		now:      time.Now,
		newID:    uuid.NewString,

		staleAfter: DefaultStaleSubmission,
	}
}

// WithStaleSubmission overrides DefaultStaleSubmission; it should exceed the
// order client timeout.
func (s *Service) WithStaleSubmission(d time.Duration) *Service {
	s.staleAfter = d
	return s
}

type View struct {
	Session *domain.Session `json:"checkout"`
	Items   []cart.Line     `json:"items"`
	Quote   domain.Quote    `json:"quote"`
}

type GuestUpsell struct {
	OrderID      string `json:"orderId"`
	CustomerName string `json:"customerName"`
	Email        string `json:"email"`
	TotalAmount  int64  `json:"totalAmount"`
}

type Result struct {
	OrderID     string       `json:"orderId"`
	Quote       domain.Quote `json:"quote"`
	GuestUpsell *GuestUpsell `json:"guestUpsell,omitempty"`
}

// Start resumes the session's checkout or opens a new one at the shipping
// step, pre-filled from the signed-in customer.
func (s *Service) Start(ctx context.Context, session string, customer *Customer) (View, error) {
	unlock := s.locks.Lock(session)
	defer unlock()

	c, err := s.carts.Get(ctx, session)
	if err != nil {
		return View{}, err
	}
	if c.IsEmpty() {
		return View{}, ErrEmptyCart
	}

	cs, err := s.sessions.Load(ctx, session)
	if err != nil {
		return View{}, err
	}
	if cs == nil || cs.Stage == domain.StageSuccess {
		var name, email string
		if customer != nil {
			name, email = customer.Name, customer.Email
		}
		cs = domain.NewSession(name, email, s.now())
		if err := s.sessions.Save(ctx, session, cs); err != nil {
			return View{}, err
		}
	}
	return newView(cs, c), nil
}

func (s *Service) View(ctx context.Context, session string) (View, error) {
	cs, c, err := s.load(ctx, session)
	if err != nil {
		return View{}, err
	}
	return newView(cs, c), nil
}

func (s *Service) SubmitShipping(ctx context.Context, session string, d domain.ShippingDetails, method domain.ShippingMethod) (View, error) {
	return s.mutate(ctx, session, func(cs *domain.Session) error {
		return cs.SubmitShipping(d, method, s.now())
	})
}

func (s *Service) SelectPayment(ctx context.Context, session string, method domain.PaymentMethod) (View, error) {
	return s.mutate(ctx, session, func(cs *domain.Session) error {
		return cs.SelectPayment(method, s.now())
	})
}

func (s *Service) Back(ctx context.Context, session string) (View, error) {
	return s.mutate(ctx, session, func(cs *domain.Session) error {
		return cs.Back(s.now())
	})
}

// Confirm submits the order. The session lock is released while the order
// endpoint is called; the submitting stage keeps a second confirm out. Once
// the endpoint has answered, the outcome is recorded even if ctx is done.
func (s *Service) Confirm(ctx context.Context, session string, customer *Customer) (Result, error) {
	cs, req, quote, err := s.beginSubmit(ctx, session, customer)
	if err != nil {
		return Result{}, err
	}

	receipt, submitErr := s.orders.Submit(ctx, cs.AttemptID, req)
	bg := context.WithoutCancel(ctx)

	unlock := s.locks.Lock(session)
	defer unlock()

	if submitErr != nil {
		s.log.Error("order submission failed", "session", session, "attempt", cs.AttemptID, "err", submitErr)
		cs.Fail(submitErr.Error(), s.now())
		if err := s.sessions.Save(bg, session, cs); err != nil {
			s.log.Error("failed to restore checkout after submission error", "session", session, "err", err)
		}
		return Result{}, fmt.Errorf("%w: %w", ErrSubmissionFailed, submitErr)
	}

	orderID := receipt.OrderID
	if orderID == "" {
		orderID = fmt.Sprintf("TF%d", s.now().UnixMilli())
	}
	cs.Succeed(orderID, s.now())

	// Only what was ordered leaves the cart; lines added meanwhile stay.
	if err := s.carts.Deduct(bg, session, orderedQuantities(req)); err != nil {
		s.log.Error("failed to clear cart after order", "session", session, "order_id", orderID, "err", err)
	}
	if err := s.sessions.Delete(bg, session); err != nil {
		s.log.Error("failed to discard checkout session", "session", session, "err", err)
	}
	s.log.Info("order placed", "session", session, "order_id", orderID, "total", quote.Total)

	res := Result{OrderID: orderID, Quote: quote}
	if customer == nil {
		res.GuestUpsell = &GuestUpsell{
			OrderID:      orderID,
			CustomerName: cs.Shipping.FullName,
			Email:        cs.Shipping.Email,
			TotalAmount:  quote.Total,
		}
	}
	return res, nil
}

func (s *Service) beginSubmit(ctx context.Context, session string, customer *Customer) (*domain.Session, OrderRequest, domain.Quote, error) {
	unlock := s.locks.Lock(session)
	defer unlock()

	cs, c, err := s.load(ctx, session)
	if err != nil {
		return nil, OrderRequest{}, domain.Quote{}, err
	}
	if c.IsEmpty() {
		return nil, OrderRequest{}, domain.Quote{}, ErrEmptyCart
	}
	if err := cs.BeginSubmit(s.newID(), s.now()); err != nil {
		return nil, OrderRequest{}, domain.Quote{}, err
	}
	if err := s.sessions.Save(ctx, session, cs); err != nil {
		return nil, OrderRequest{}, domain.Quote{}, err
	}

	quote := domain.Price(c.TotalPrice(), cs.ShippingMethod)
	return cs, buildRequest(cs, c, quote, customer), quote, nil
}

func (s *Service) mutate(ctx context.Context, session string, fn func(*domain.Session) error) (View, error) {
	unlock := s.locks.Lock(session)
	defer unlock()

	cs, c, err := s.load(ctx, session)
	if err != nil {
		return View{}, err
	}
	if err := fn(cs); err != nil {
		return View{}, err
	}
	if err := s.sessions.Save(ctx, session, cs); err != nil {
		return View{}, err
	}
	return newView(cs, c), nil
}

func (s *Service) load(ctx context.Context, session string) (*domain.Session, *cart.Cart, error) {
	cs, err := s.sessions.Load(ctx, session)
	if err != nil {
		return nil, nil, err
	}
	if cs == nil {
		return nil, nil, ErrNoCheckout
	}
	if cs.RecoverStale(s.staleAfter, s.now()) {
		s.log.Warn("recovered stale checkout submission", "session", session, "attempt", cs.AttemptID)
	}
	c, err := s.carts.Get(ctx, session)
	if err != nil {
		return nil, nil, err
	}
	return cs, c, nil
}

func newView(cs *domain.Session, c *cart.Cart) View {
	items := c.Lines()
	if items == nil {
		items = []cart.Line{}
	}
	return View{
		Session: cs,
		Items:   items,
		Quote:   domain.Price(c.TotalPrice(), cs.ShippingMethod),
	}
}

func orderedQuantities(req OrderRequest) map[string]int {
	out := make(map[string]int, len(req.Products))
	for _, p := range req.Products {
		out[p.ID] += p.Quantity
	}
	return out
}

func buildRequest(cs *domain.Session, c *cart.Cart, quote domain.Quote, customer *Customer) OrderRequest {
	lines := c.Lines()
	products := make([]OrderLine, 0, len(lines))
	for _, l := range lines {
		products = append(products, OrderLine{ID: l.ID, Name: l.Name, Quantity: l.Quantity, Price: l.Price})
	}
	req := OrderRequest{
		CustomerName: cs.Shipping.FullName,
		Phone:        cs.Shipping.Phone,
		Email:        cs.Shipping.Email,
		Address:      cs.Shipping.FormattedAddress(),
		Products:     products,
		TotalAmount:  quote.Total,
		DeliveryNote: cs.DeliveryNote(),
	}
	if customer != nil && customer.ID != "" {
		id := customer.ID
		req.UserID = &id
	}
	return req
}
