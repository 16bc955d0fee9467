package application

import (
	"context"

	cart "github.com/dmehra2102/chipstore/internal/cart/domain"
	"github.com/dmehra2102/chipstore/internal/checkout/domain"
)

type Carts interface {
	Get(ctx context.Context, session string) (*cart.Cart, error)
	// Deduct removes ordered quantities by product id, deleting the cart
	// once it is empty.
	Deduct(ctx context.Context, session string, ordered map[string]int) error
}

// SessionStore holds checkout sessions keyed by cart session. Load returns
// nil when no checkout is in progress.
type SessionStore interface {
	Load(ctx context.Context, key string) (*domain.Session, error)
	Save(ctx context.Context, key string, s *domain.Session) error
	Delete(ctx context.Context, key string) error
}

type OrderLine struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// OrderRequest is the body accepted by the order endpoint.
type OrderRequest struct {
	CustomerName string      `json:"customer_name"`
	Phone        string      `json:"phone"`
	Email        string      `json:"email"`
	Address      string      `json:"address"`
	Products     []OrderLine `json:"products"`
	TotalAmount  int64       `json:"total_amount"`
	DeliveryNote string      `json:"delivery_note"`
	UserID       *string     `json:"user_id"`
}

type OrderReceipt struct {
	OrderID string
}

type OrderSubmitter interface {
	Submit(ctx context.Context, idempotencyKey string, req OrderRequest) (OrderReceipt, error)
}

// Customer is the signed-in user placing the order; nil means guest.
type Customer struct {
	ID    string
	Name  string
	Email string
}
