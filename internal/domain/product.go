package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categories lists the catalog categories accepted for products.
var Categories = []string{
	"Books",
	"Study Material",
	"Test Series",
	"Video Courses",
	"Notes",
	"Stationery",
	"Combo Packs",
	"Other",
}

// ValidCategory reports whether c is one of Categories.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}

type Ratings struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type Product struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	ShortDescription string           `json:"shortDescription,omitempty"`
	Price            decimal.Decimal  `json:"price"`
	DiscountPrice    *decimal.Decimal `json:"discountPrice,omitempty"`
	Category         string           `json:"category"`
	Images           []string         `json:"images"`
	Subject          string           `json:"subject,omitempty"`
	ClassLevel       string           `json:"classLevel,omitempty"`
	Author           string           `json:"author,omitempty"`
	Stock            int              `json:"stock"`
	Featured         bool             `json:"featured"`
	IsActive         bool             `json:"isActive"`
	Ratings          Ratings          `json:"ratings"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// hasDiscount is true when a positive discount price undercuts the list price.
func (p Product) hasDiscount() bool {
	return p.DiscountPrice != nil && p.DiscountPrice.IsPositive() && p.DiscountPrice.LessThan(p.Price)
}

// EffectivePrice is the price a shopper pays for one unit.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.hasDiscount() {
		return *p.DiscountPrice
	}
	return p.Price
}

// DiscountPercent returns the rounded percentage saved, or 0 without a discount.
func (p Product) DiscountPercent() int {
	if !p.hasDiscount() || !p.Price.IsPositive() {
		return 0
	}
	saved := p.Price.Sub(*p.DiscountPrice).Div(p.Price).Mul(decimal.NewFromInt(100))
	return int(saved.Round(0).IntPart())
}

// FirstImage returns the first image reference or "".
func (p Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
