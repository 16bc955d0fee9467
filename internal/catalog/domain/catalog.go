package domain

import (
	"sort"
	"strings"
)

type SortOption string

const (
	SortName      SortOption = "name"
	SortPriceAsc  SortOption = "price_asc"
	SortPriceDesc SortOption = "price_desc"
)

// Query narrows and orders the catalog. Empty or "all" Type/Size match
// everything.
type Query struct {
	Type         ProductType
	Size         Size
	Sort         SortOption
	FeaturedOnly bool
}

// Catalog is read-only reference data loaded once at start-up.
type Catalog struct {
	products []Product
	byID     map[string]int
}

func NewCatalog(products []Product) *Catalog {
	c := &Catalog{
		products: append([]Product(nil), products...),
		byID:     make(map[string]int, len(products)),
	}
	for i, p := range c.products {
		c.byID[p.ID] = i
	}
	return c
}

func (c *Catalog) All() []Product {
	return append([]Product(nil), c.products...)
}

func (c *Catalog) Get(id string) (Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

func (c *Catalog) Featured() []Product {
	return c.Filter(Query{FeaturedOnly: true})
}

func (c *Catalog) Filter(q Query) []Product {
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if q.Type != "" && q.Type != "all" && p.Type != q.Type {
			continue
		}
		if q.Size != "" && q.Size != "all" && p.Size != q.Size {
			continue
		}
		if q.FeaturedOnly && !p.Featured {
			continue
		}
		out = append(out, p)
	}

	switch q.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortName, "":
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	}
	return out
}
