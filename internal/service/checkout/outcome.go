package checkout

import (
	"errors"

	"garud-store/internal/domain"
)

// Result reasons reported to clients.
const (
	ReasonOK                = "ok"
	ReasonEmptyCart         = "empty_cart"
	ReasonGatewayError      = "gateway_error"
	ReasonSignatureMismatch = "signature_mismatch"
	ReasonAlreadyFinalized  = "already_finalized"
	ReasonAttemptClosed     = "payment_closed"
	ReasonNotFound          = "not_found"
	ReasonInsufficientStock = "insufficient_stock"
	ReasonInternal          = "internal_error"
)

// Result is the structured outcome of a checkout step.
type Result struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason"`
}

// Outcome classifies err. A repeat confirmation of a paid order counts as
// success. Anything unrecognised is internal.
func Outcome(err error) Result {
	switch {
	case err == nil:
		return Result{Success: true, Reason: ReasonOK}
	case errors.Is(err, domain.ErrAlreadyFinalized):
		return Result{Success: true, Reason: ReasonAlreadyFinalized}
	case errors.Is(err, domain.ErrEmptyCart):
		return Result{Reason: ReasonEmptyCart}
	case errors.Is(err, domain.ErrPaymentGateway):
		return Result{Reason: ReasonGatewayError}
	case errors.Is(err, domain.ErrSignatureMismatch):
		return Result{Reason: ReasonSignatureMismatch}
	case errors.Is(err, ErrAttemptClosed):
		return Result{Reason: ReasonAttemptClosed}
	case errors.Is(err, domain.ErrNotFound):
		return Result{Reason: ReasonNotFound}
	case errors.Is(err, domain.ErrInsufficientStock):
		return Result{Reason: ReasonInsufficientStock}
	default:
		return Result{Reason: ReasonInternal}
	}
}
