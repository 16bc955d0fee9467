package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmehra2102/chipstore/internal/notification/domain"
	order "github.com/dmehra2102/chipstore/internal/order/domain"
)

var (
	ErrNoRecipient  = errors.New("no notification email configured")
	ErrUnknownEvent = errors.New("unknown event type")
	ErrInvalidEvent = errors.New("invalid event payload")
)

type Service struct {
	log       *slog.Logger
	sender    Sender
	recipient string
	loc       *time.Location
}

func NewService(log *slog.Logger, sender Sender, recipient string) *Service {
	return &Service{log: log, sender: sender, recipient: recipient, loc: time.Local}
}

// Handle routes one order event by its type.
func (s *Service) Handle(ctx context.Context, eventType string, payload []byte) error {
	switch eventType {
	case order.EventOrderCreated:
		var ev order.OrderCreated
		if err := json.Unmarshal(payload, &ev); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
		}
		return s.OrderCreated(ctx, ev)
	case order.EventOrderStatusChanged:
		var ev order.OrderStatusChanged
		if err := json.Unmarshal(payload, &ev); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
		}
		s.log.Info("order status changed", "order_id", ev.OrderID, "from", ev.From, "to", ev.To)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, eventType)
	}
}

func (s *Service) OrderCreated(ctx context.Context, ev order.OrderCreated) error {
	if s.recipient == "" {
		s.log.Error("no notification email configured", "order_id", ev.OrderID)
		return ErrNoRecipient
	}
	if err := s.sender.Send(ctx, domain.NewOrderMessage(s.recipient, ev, s.loc)); err != nil {
		return fmt.Errorf("send order notification: %w", err)
	}
	s.log.Info("order notification sent", "order_id", ev.OrderID)
	return nil
}
