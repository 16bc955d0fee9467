package domain

import (
	"fmt"
	"strings"
	"time"

	catalog "github.com/dmehra2102/chipstore/internal/catalog/domain"
	order "github.com/dmehra2102/chipstore/internal/order/domain"
)

const orderTimeLayout = "Mon, 02 Jan 2006 15:04:05 MST"

type Message struct {
	To      string
	Subject string
	Body    string
}

// ProductLine renders "<name> x <qty> (₦<price>)".
func ProductLine(item order.LineItem) string {
	return fmt.Sprintf("%s x %d (%s)", item.Name, item.Quantity, catalog.FormatCurrency(item.Price))
}

func NewOrderMessage(to string, ev order.OrderCreated, loc *time.Location) Message {
	var b strings.Builder
	b.WriteString("New Order Notification\n\n")
	fmt.Fprintf(&b, "Customer: %s\n", ev.CustomerName)
	fmt.Fprintf(&b, "Phone: %s\n", ev.Phone)
	if ev.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", ev.Email)
	}
	fmt.Fprintf(&b, "Address: %s\n\n", ev.Address)

	b.WriteString("Order Details:\n")
	for _, item := range ev.Products {
		b.WriteString(ProductLine(item))
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "\nTotal Amount: %s\n", catalog.FormatCurrency(ev.TotalAmount))
	if ev.DeliveryNote != "" {
		fmt.Fprintf(&b, "Delivery Note: %s\n", ev.DeliveryNote)
	}
	fmt.Fprintf(&b, "\nOrder Time: %s\n", ev.CreatedAt.In(loc).Format(orderTimeLayout))

	return Message{
		To:      to,
		Subject: fmt.Sprintf("New order from %s", ev.CustomerName),
		Body:    b.String(),
	}
}
