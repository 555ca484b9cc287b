package cart

import (
	"context"

	"garud-store/internal/domain"
)

// Repository stores per-user cart entries keyed by (user, product).
type Repository interface {
	// Lines returns entries resolved against products, oldest first.
	// Entries whose product no longer exists are omitted.
	Lines(ctx context.Context, userID string) ([]domain.CartLine, error)
	// Entries returns the raw stored entries, dangling ones included.
	Entries(ctx context.Context, userID string) ([]domain.CartEntry, error)
	// Add merges quantity into an existing entry or creates one.
	Add(ctx context.Context, userID, productID string, quantity int) error
	// SetQuantity overwrites an entry's quantity; quantity <= 0 removes it.
	// A missing entry is left alone.
	SetQuantity(ctx context.Context, userID, productID string, quantity int) error
	Remove(ctx context.Context, userID, productID string) error
	// SetCart replaces the whole cart.
	SetCart(ctx context.Context, userID string, entries []domain.CartEntry) error
	Clear(ctx context.Context, userID string) error
}
