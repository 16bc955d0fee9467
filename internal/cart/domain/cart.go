package domain

import (
	"encoding/json"
	"errors"
	"fmt"

	catalog "github.com/dmehra2102/chipstore/internal/catalog/domain"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrMalformedCart   = errors.New("malformed cart data")
)

// Line is one product's aggregated quantity. The product snapshot is
// flattened into the line when serialized.
type Line struct {
	catalog.Product
	Quantity int `json:"quantity"`
}

func (l Line) Subtotal() int64 {
	return l.Price * int64(l.Quantity)
}

// Cart holds at most one line per product id, in the order products were
// first added. Every line has Quantity >= 1.
type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

func (c *Cart) index(id string) int {
	for i := range c.lines {
		if c.lines[i].ID == id {
			return i
		}
	}
	return -1
}

// Add merges quantity into the product's line, creating it when absent.
func (c *Cart) Add(p catalog.Product, quantity int) (Line, error) {
	if quantity < 1 {
		return Line{}, ErrInvalidQuantity
	}
	if i := c.index(p.ID); i >= 0 {
		c.lines[i].Quantity += quantity
		return c.lines[i], nil
	}
	l := Line{Product: p, Quantity: quantity}
	c.lines = append(c.lines, l)
	return l, nil
}

// UpdateQuantity replaces a line's quantity. Quantities below 1 and unknown
// ids are ignored; the result reports whether anything changed.
func (c *Cart) UpdateQuantity(id string, quantity int) bool {
	if quantity < 1 {
		return false
	}
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.lines[i].Quantity = quantity
	return true
}

func (c *Cart) Remove(id string) (Line, bool) {
	i := c.index(id)
	if i < 0 {
		return Line{}, false
	}
	removed := c.lines[i]
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return removed, true
}

// Deduct lowers a line's quantity by quantity and drops the line once
// nothing is left. Unknown ids and quantities below 1 are ignored.
func (c *Cart) Deduct(id string, quantity int) bool {
	if quantity < 1 {
		return false
	}
	i := c.index(id)
	if i < 0 {
		return false
	}
	if c.lines[i].Quantity <= quantity {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return true
	}
	c.lines[i].Quantity -= quantity
	return true
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) Line(id string) (Line, bool) {
	if i := c.index(id); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

func (c *Cart) Lines() []Line {
	return append([]Line(nil), c.lines...)
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

func (c *Cart) TotalItems() int {
	total := 0
	for _, l := range c.lines {
		total += l.Quantity
	}
	return total
}

func (c *Cart) TotalPrice() int64 {
	var total int64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	if c.lines == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.lines)
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCart, err)
	}
	seen := make(map[string]struct{}, len(lines))
	for i, l := range lines {
		if l.ID == "" {
			return fmt.Errorf("%w: line %d has no product id", ErrMalformedCart, i)
		}
		if l.Quantity < 1 {
			return fmt.Errorf("%w: line %s has quantity %d", ErrMalformedCart, l.ID, l.Quantity)
		}
		if _, dup := seen[l.ID]; dup {
			return fmt.Errorf("%w: duplicate line %s", ErrMalformedCart, l.ID)
		}
		seen[l.ID] = struct{}{}
	}
	c.lines = lines
	return nil
}

// Decode rebuilds a cart from its persisted form.
func Decode(data []byte) (*Cart, error) {
	c := New()
	if err := c.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return c, nil
}
