package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestProductEffectivePrice(t *testing.T) {
	cases := []struct {
		name     string
		price    string
		discount *decimal.Decimal
		want     string
		percent  int
	}{
		{"no discount", "100", nil, "100", 0},
		{"lower discount", "100", decPtr("80"), "80", 20},
		{"discount equal to price", "100", decPtr("100"), "100", 0},
		{"discount above price", "100", decPtr("120"), "100", 0},
		{"zero discount ignored", "100", decPtr("0"), "100", 0},
		{"rounded percent", "300", decPtr("199"), "199", 34},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Product{Price: dec(tc.price), DiscountPrice: tc.discount}
			assert.True(t, p.EffectivePrice().Equal(dec(tc.want)), "got %s", p.EffectivePrice())
			assert.Equal(t, tc.percent, p.DiscountPercent())
		})
	}
}

func TestCartTotals(t *testing.T) {
	cart := Cart{Lines: []CartLine{
		{Product: Product{Price: dec("100")}, Quantity: 2},
		{Product: Product{Price: dec("100"), DiscountPrice: decPtr("80")}, Quantity: 1},
	}}
	assert.True(t, cart.Total().Equal(dec("280")))
	assert.Equal(t, 3, cart.ItemCount())
}

func TestParseOrderStatus(t *testing.T) {
	st, err := ParseOrderStatus("Shipped")
	require.NoError(t, err)
	assert.Equal(t, OrderShipped, st)

	_, err = ParseOrderStatus("shipped")
	assert.True(t, errors.Is(err, ErrInvalidStatus))
}

func TestParseStockPolicy(t *testing.T) {
	assert.Equal(t, StockStrict, ParseStockPolicy("strict"))
	assert.Equal(t, StockUnchecked, ParseStockPolicy(""))
	assert.Equal(t, StockUnchecked, ParseStockPolicy("bogus"))
}
