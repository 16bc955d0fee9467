package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmehra2102/chipstore/internal/cart/domain"
	"github.com/dmehra2102/chipstore/pkg/syncx"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product out of stock")
)

type Service struct {
	log      *slog.Logger
	store    CartStore
	products ProductLookup
	locks    *syncx.KeyedMutex
}

func NewService(log *slog.Logger, store CartStore, products ProductLookup) *Service {
	return &Service{log: log, store: store, products: products, locks: syncx.NewKeyedMutex()}
}

// Get rehydrates the session's cart. Unreadable persisted data is logged and
// replaced by an empty cart; only store failures are returned.
func (s *Service) Get(ctx context.Context, session string) (*domain.Cart, error) {
	return s.load(ctx, session)
}

func (s *Service) AddItem(ctx context.Context, session, productID string, quantity int) (*domain.Cart, domain.Line, error) {
	p, ok := s.products.Get(productID)
	if !ok {
		return nil, domain.Line{}, ErrProductNotFound
	}
	if !p.InStock {
		return nil, domain.Line{}, ErrProductUnavailable
	}

	unlock := s.locks.Lock(session)
	defer unlock()

	c, err := s.load(ctx, session)
	if err != nil {
		return nil, domain.Line{}, err
	}
	line, err := c.Add(p, quantity)
	if err != nil {
		return nil, domain.Line{}, err
	}
	if err := s.save(ctx, session, c); err != nil {
		return nil, domain.Line{}, err
	}
	s.log.Info("cart item added", "session", session, "product_id", p.ID, "quantity", line.Quantity)
	return c, line, nil
}

func (s *Service) UpdateQuantity(ctx context.Context, session, productID string, quantity int) (*domain.Cart, error) {
	unlock := s.locks.Lock(session)
	defer unlock()

	c, err := s.load(ctx, session)
	if err != nil {
		return nil, err
	}
	if !c.UpdateQuantity(productID, quantity) {
		return c, nil
	}
	if err := s.save(ctx, session, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) RemoveItem(ctx context.Context, session, productID string) (*domain.Cart, error) {
	unlock := s.locks.Lock(session)
	defer unlock()

	c, err := s.load(ctx, session)
	if err != nil {
		return nil, err
	}
	removed, ok := c.Remove(productID)
	if !ok {
		return c, nil
	}
	if err := s.save(ctx, session, c); err != nil {
		return nil, err
	}
	s.log.Info("cart item removed", "session", session, "product_id", removed.ID)
	return c, nil
}

func (s *Service) Clear(ctx context.Context, session string) error {
	unlock := s.locks.Lock(session)
	defer unlock()

	if err := s.store.Delete(ctx, session); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.log.Info("cart cleared", "session", session)
	return nil
}

// Deduct takes ordered quantities (product id to quantity) out of the cart.
// Lines added after the order was built survive; an emptied cart is deleted.
func (s *Service) Deduct(ctx context.Context, session string, ordered map[string]int) error {
	unlock := s.locks.Lock(session)
	defer unlock()

	c, err := s.load(ctx, session)
	if err != nil {
		return err
	}
	changed := false
	for id, qty := range ordered {
		if c.Deduct(id, qty) {
			changed = true
		}
	}
	if c.IsEmpty() {
		if err := s.store.Delete(ctx, session); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		s.log.Info("cart cleared", "session", session)
		return nil
	}
	if !changed {
		return nil
	}
	if err := s.save(ctx, session, c); err != nil {
		return err
	}
	s.log.Info("ordered items removed from cart", "session", session, "remaining_lines", c.Len())
	return nil
}

func (s *Service) load(ctx context.Context, session string) (*domain.Cart, error) {
	data, err := s.store.Load(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(data) == 0 {
		return domain.New(), nil
	}
	c, err := domain.Decode(data)
	if err != nil {
		s.log.Warn("discarding unreadable cart", "session", session, "err", err)
		return domain.New(), nil
	}
	return c, nil
}

func (s *Service) save(ctx context.Context, session string, c *domain.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.store.Save(ctx, session, data); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
