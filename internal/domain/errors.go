package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrEmptyCart is returned when a checkout has nothing to charge.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrPaymentGateway wraps failures of the upstream payment provider.
	ErrPaymentGateway = errors.New("payment gateway error")
	// ErrSignatureMismatch is returned when a payment callback fails authentication.
	ErrSignatureMismatch = errors.New("payment signature mismatch")
	// ErrAlreadyFinalized is returned when a payment outcome was already recorded for an order.
	ErrAlreadyFinalized = errors.New("order already finalized")
	// ErrPersistence wraps datastore failures surfaced by the checkout flow.
	ErrPersistence = errors.New("persistence error")
	// ErrOutOfStock is returned when adding a product with no stock to a cart.
	ErrOutOfStock = errors.New("product out of stock")
	// ErrInsufficientStock is returned by strict checkouts when stock cannot cover a line.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidStatus is returned for status values outside the order enums.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrValidation wraps rejected user input; the wrapped message is safe to show.
	ErrValidation = errors.New("validation failed")
)
