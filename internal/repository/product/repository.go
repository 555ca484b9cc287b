package product

import (
	"context"

	"garud-store/internal/domain"
)

// Sort orders a product listing.
type Sort string

const (
	SortNewest    Sort = "newest"
	SortPriceLow  Sort = "price-low"
	SortPriceHigh Sort = "price-high"
	SortName      Sort = "name"
	SortPopular   Sort = "popular"
)

// ParseSort maps a query value to a Sort, defaulting to SortNewest.
func ParseSort(s string) Sort {
	switch Sort(s) {
	case SortPriceLow, SortPriceHigh, SortName, SortPopular:
		return Sort(s)
	default:
		return SortNewest
	}
}

// Filter narrows Find and Count. Zero values mean "no constraint".
type Filter struct {
	Category   string
	Search     string
	ActiveOnly bool
	Featured   bool
	ExcludeID  string
}

type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Find(ctx context.Context, f Filter, sort Sort, offset, limit int) ([]domain.Product, error)
	Count(ctx context.Context, f Filter) (int, error)
	CountAll(ctx context.Context) (int, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	ToggleActive(ctx context.Context, id string) (*domain.Product, error)
	// UpdateStockAtomic adds delta to stock in a single statement.
	UpdateStockAtomic(ctx context.Context, id string, delta int) error
	// Upsert inserts or updates by product name.
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}
