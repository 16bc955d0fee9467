package domain

import "time"

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type OrderCreated struct {
	OrderID      string     `json:"order_id"`
	CustomerName string     `json:"customer_name"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email,omitempty"`
	Address      string     `json:"address"`
	Products     []LineItem `json:"products"`
	TotalAmount  int64      `json:"total_amount"`
	DeliveryNote string     `json:"delivery_note,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func NewOrderCreated(o Order) OrderCreated {
	ev := OrderCreated{
		OrderID:      o.ID,
		CustomerName: o.CustomerName,
		Phone:        o.Phone,
		Address:      o.Address,
		Products:     o.Products,
		TotalAmount:  o.TotalAmount,
		CreatedAt:    o.CreatedAt,
	}
	if o.Email != nil {
		ev.Email = *o.Email
	}
	if o.DeliveryNote != nil {
		ev.DeliveryNote = *o.DeliveryNote
	}
	return ev
}

type OrderStatusChanged struct {
	OrderID   string    `json:"order_id"`
	From      Status    `json:"from"`
	To        Status    `json:"to"`
	ChangedAt time.Time `json:"changed_at"`
}
