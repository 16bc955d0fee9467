package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(ps []Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestCatalog_Get(t *testing.T) {
	c := Default()

	p, ok := c.Get("3")
	require.True(t, ok)
	assert.Equal(t, int64(12000), p.Price)
	assert.Equal(t, SizeJumbo, p.Size)

	_, ok = c.Get("99")
	assert.False(t, ok)
}

func TestCatalog_Filter(t *testing.T) {
	c := Default()

	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{"default sorts by name", Query{}, []string{"3", "4", "1", "2", "5"}},
		{"all means no filter", Query{Type: "all", Size: "all"}, []string{"3", "4", "1", "2", "5"}},
		{"type unripe", Query{Type: TypeUnripe}, []string{"1"}},
		{"size large by price desc", Query{Size: SizeLarge, Sort: SortPriceDesc}, []string{"1", "4"}},
		{"ripe by price asc", Query{Type: TypeRipe, Sort: SortPriceAsc}, []string{"5", "2", "4", "3"}},
		{"featured only", Query{FeaturedOnly: true, Sort: SortPriceAsc}, []string{"1", "4", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(c.Filter(tt.q)))
		})
	}
}

func TestCatalog_AllIsACopy(t *testing.T) {
	c := Default()
	all := c.All()
	all[0].Price = 1

	p, _ := c.Get(all[0].ID)
	assert.NotEqual(t, int64(1), p.Price)
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "₦0", FormatCurrency(0))
	assert.Equal(t, "₦750", FormatCurrency(750))
	assert.Equal(t, "₦4,000", FormatCurrency(4000))
	assert.Equal(t, "₦12,250", FormatCurrency(12250))
	assert.Equal(t, "₦1,234,567", FormatCurrency(1234567))
	assert.Equal(t, "-₦1,500", FormatCurrency(-1500))
}
