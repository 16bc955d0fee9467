package domain

import (
	"strconv"
	"strings"
)

type ProductType string

const (
	TypeRipe   ProductType = "ripe"
	TypeUnripe ProductType = "unripe"
)

type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
	SizeJumbo  Size = "jumbo"
)

// Product prices are whole naira.
type Product struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       int64       `json:"price"`
	Weight      string      `json:"weight"`
	Image       string      `json:"image"`
	Type        ProductType `json:"type"`
	Size        Size        `json:"size"`
	InStock     bool        `json:"inStock"`
	Featured    bool        `json:"featured"`
}

// FormatCurrency renders a naira amount with thousands separators and no
// fractional digits, e.g. 12250 -> "₦12,250".
func FormatCurrency(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("₦")
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
