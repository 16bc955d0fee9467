package domain

import "github.com/shopspring/decimal"

const (
	StandardShippingCost int64 = 1500
	ExpressShippingCost  int64 = 3000
)

// TaxRate is Nigerian VAT.
var TaxRate = decimal.RequireFromString("0.075")

type Quote struct {
	Subtotal int64 `json:"subtotal"`
	Shipping int64 `json:"shipping"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// Price tax is rounded half away from zero to a whole naira.
func Price(subtotal int64, method ShippingMethod) Quote {
	tax := decimal.NewFromInt(subtotal).Mul(TaxRate).Round(0).IntPart()
	shipping := method.Cost()
	return Quote{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal + shipping + tax,
	}
}
