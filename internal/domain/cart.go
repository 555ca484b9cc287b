package domain

import "github.com/shopspring/decimal"

// CartEntry is one stored cart row: a product reference and a quantity.
type CartEntry struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CartLine is a cart entry resolved against the catalog.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// UnitPrice is the effective price of the line's product.
func (l CartLine) UnitPrice() decimal.Decimal {
	return l.Product.EffectivePrice()
}

// Total is UnitPrice times Quantity.
func (l CartLine) Total() decimal.Decimal {
	return l.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is a user's resolved cart. Entries pointing at deleted products are
// never part of Lines.
type Cart struct {
	UserID string     `json:"userId"`
	Lines  []CartLine `json:"lines"`
}

// Total sums the line totals.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Total())
	}
	return total
}

// ItemCount sums the line quantities.
func (c Cart) ItemCount() int {
	n := 0
	for _, line := range c.Lines {
		n += line.Quantity
	}
	return n
}
