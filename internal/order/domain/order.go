package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var Statuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

var (
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrMalformedProducts = errors.New("malformed order products")
	ErrNotFound          = errors.New("order not found")
)

func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// PaymentStatus is recorded at creation and never advanced here.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

type LineItem struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=1"`
	Price    int64  `json:"price" validate:"gte=0"`
}

type Order struct {
	ID            string        `json:"id"`
	CustomerName  string        `json:"customer_name"`
	Phone         string        `json:"phone"`
	Email         *string       `json:"email"`
	Address       string        `json:"address"`
	Products      []LineItem    `json:"products"`
	TotalAmount   int64         `json:"total_amount"`
	DeliveryNote  *string       `json:"delivery_note"`
	UserID        *string       `json:"user_id"`
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Placement is a validated order submission.
type Placement struct {
	CustomerName string
	Phone        string
	Email        string
	Address      string
	Products     []LineItem
	TotalAmount  int64
	DeliveryNote string
	UserID       string
}

func NewOrder(id string, p Placement, now time.Time) Order {
	return Order{
		ID:            id,
		CustomerName:  p.CustomerName,
		Phone:         p.Phone,
		Email:         optional(p.Email),
		Address:       p.Address,
		Products:      p.Products,
		TotalAmount:   p.TotalAmount,
		DeliveryNote:  optional(p.DeliveryNote),
		UserID:        optional(p.UserID),
		Status:        StatusPending,
		PaymentStatus: PaymentUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Matches reports whether q appears in the customer name, email or id
// (case-insensitive) or verbatim in the phone number. An empty q matches.
func (o Order) Matches(q string) bool {
	if q == "" {
		return true
	}
	lower := strings.ToLower(q)
	if strings.Contains(strings.ToLower(o.CustomerName), lower) ||
		strings.Contains(strings.ToLower(o.ID), lower) ||
		strings.Contains(o.Phone, q) {
		return true
	}
	return o.Email != nil && strings.Contains(strings.ToLower(*o.Email), lower)
}

// ParseLineItems decodes the stored products column. Anything other than an
// array of complete line items is rejected rather than defaulted.
func ParseLineItems(raw []byte) ([]LineItem, error) {
	var items []LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedProducts, err)
	}
	if items == nil {
		return nil, fmt.Errorf("%w: not an array", ErrMalformedProducts)
	}
	for i, it := range items {
		switch {
		case strings.TrimSpace(it.ID) == "":
			return nil, fmt.Errorf("%w: item %d has no id", ErrMalformedProducts, i)
		case strings.TrimSpace(it.Name) == "":
			return nil, fmt.Errorf("%w: item %d has no name", ErrMalformedProducts, i)
		case it.Quantity < 1:
			return nil, fmt.Errorf("%w: item %d has quantity %d", ErrMalformedProducts, i, it.Quantity)
		case it.Price < 0:
			return nil, fmt.Errorf("%w: item %d has negative price", ErrMalformedProducts, i)
		}
	}
	return items, nil
}
