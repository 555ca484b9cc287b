package order

import (
	"context"

	"garud-store/internal/domain"
	"github.com/shopspring/decimal"
)

// FinalizeResult is the order after a successful Finalize plus the products
// whose stock could not cover the ordered quantity under the strict policy.
type FinalizeResult struct {
	Order           domain.Order
	StockShortfalls []string
}

// Repository is the order ledger.
type Repository interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// UpdateStatus sets the fulfilment status without any transition checks.
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	// UpdatePaymentOutcome applies the outcome only while payment status equals
	// outcome.From. It returns domain.ErrAlreadyFinalized when the guard fails
	// and domain.ErrNotFound when the order does not exist.
	UpdatePaymentOutcome(ctx context.Context, id string, outcome domain.PaymentOutcome) (*domain.Order, error)
	// Finalize applies the outcome, decrements stock for every line item and
	// clears the owner's cart in one transaction.
	Finalize(ctx context.Context, id string, outcome domain.PaymentOutcome, policy domain.StockPolicy) (*FinalizeResult, error)
	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	// ListRecent returns the newest orders; limit <= 0 returns all.
	ListRecent(ctx context.Context, limit int) ([]domain.Order, error)
	Count(ctx context.Context) (int, error)
	// AggregateRevenue sums total_amount over paid orders.
	AggregateRevenue(ctx context.Context) (decimal.Decimal, error)
}
