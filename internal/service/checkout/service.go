// Package checkout turns carts into priced orders, opens a remote payment
// order for them and finalizes the order once the gateway callback checks out.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"garud-store/internal/domain"
	"garud-store/internal/payment/razorpay"
	orderrepo "garud-store/internal/repository/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrAttemptClosed is returned when a valid callback arrives for an order
// whose payment attempt already ended without being paid.
var ErrAttemptClosed = errors.New("payment attempt already closed")

type cartReader interface {
	Lines(ctx context.Context, userID string) ([]domain.CartLine, error)
}

type orderLedger interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	UpdatePaymentOutcome(ctx context.Context, id string, outcome domain.PaymentOutcome) (*domain.Order, error)
	Finalize(ctx context.Context, id string, outcome domain.PaymentOutcome, policy domain.StockPolicy) (*orderrepo.FinalizeResult, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
}

type gateway interface {
	CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.RemoteOrder, error)
	KeyID() string
}

type signatureVerifier interface {
	Verify(orderID, paymentID, signature string) bool
}

type recorder interface {
	OrderCreated(result string)
	PaymentVerified(result string)
}

// Options tune a Service. Zero values fall back to INR and the unchecked
// stock policy.
type Options struct {
	Currency    string
	StockPolicy domain.StockPolicy
	Metrics     recorder
}

type Service struct {
	carts    cartReader
	orders   orderLedger
	gateway  gateway
	verifier signatureVerifier
	currency string
	policy   domain.StockPolicy
	metrics  recorder
	logger   *zap.Logger
}

func New(carts cartReader, orders orderLedger, gw gateway, verifier signatureVerifier, opts Options, logger *zap.Logger) *Service {
	if opts.Currency == "" {
		opts.Currency = "INR"
	}
	if opts.StockPolicy == "" {
		opts.StockPolicy = domain.StockUnchecked
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		carts:    carts,
		orders:   orders,
		gateway:  gw,
		verifier: verifier,
		currency: opts.Currency,
		policy:   opts.StockPolicy,
		metrics:  opts.Metrics,
		logger:   logger.Named("checkout"),
	}
}

// Summary is what the checkout page shows before payment starts.
type Summary struct {
	Lines     []domain.CartLine `json:"cart"`
	Total     decimal.Decimal   `json:"cartTotal"`
	ItemCount int               `json:"itemCount"`
	KeyID     string            `json:"razorpayKeyId"`
}

// PaymentOrder is handed to the client-side payment widget.
type PaymentOrder struct {
	OrderID        string `json:"orderId"`
	GatewayOrderID string `json:"razorpayOrderId"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	KeyID          string `json:"keyId"`
}

// VerifyInput is the gateway callback relayed by the client.
type VerifyInput struct {
	OrderID          string `json:"order_id"`
	GatewayOrderID   string `json:"razorpay_order_id"`
	GatewayPaymentID string `json:"razorpay_payment_id"`
	Signature        string `json:"razorpay_signature"`
}

// FinalizeResult reports a successful finalization.
type FinalizeResult struct {
	OrderID         string   `json:"orderId"`
	StockShortfalls []string `json:"stockShortfalls,omitempty"`
}

// BuildOrderFromCart prices the user's cart into an unsaved Pending order.
// Entries whose product no longer exists are skipped.
func (s *Service) BuildOrderFromCart(ctx context.Context, userID string) (*domain.Order, error) {
	draft, _, err := s.build(ctx, userID)
	return draft, err
}

// CheckoutSummary returns the resolvable cart lines and their total.
func (s *Service) CheckoutSummary(ctx context.Context, userID string) (*Summary, error) {
	lines, err := s.carts.Lines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: load cart: %w", domain.ErrPersistence, err)
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}
	cart := domain.Cart{UserID: userID, Lines: lines}
	return &Summary{Lines: lines, Total: cart.Total(), ItemCount: cart.ItemCount(), KeyID: s.gateway.KeyID()}, nil
}

// CreatePaymentOrder opens a remote payment order for the user's cart and
// records the local Pending order. The local write happens last so a failed
// call leaves nothing behind.
func (s *Service) CreatePaymentOrder(ctx context.Context, userID string, addr domain.ShippingAddress) (*PaymentOrder, error) {
	po, err := s.createPaymentOrder(ctx, userID, addr)
	if s.metrics != nil {
		s.metrics.OrderCreated(Outcome(err).Reason)
	}
	return po, err
}

func (s *Service) createPaymentOrder(ctx context.Context, userID string, addr domain.ShippingAddress) (*PaymentOrder, error) {
	draft, lines, err := s.build(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.policy == domain.StockStrict {
		for _, line := range lines {
			if line.Product.Stock < line.Quantity {
				return nil, fmt.Errorf("%w: %s has %d left", domain.ErrInsufficientStock, line.Product.Name, line.Product.Stock)
			}
		}
	}

	amount := MinorUnits(draft.TotalAmount)
	receipt := newReceipt()
	remote, err := s.gateway.CreateOrder(ctx, razorpay.OrderRequest{
		Amount:   amount,
		Currency: s.currency,
		Receipt:  receipt,
		Notes:    map[string]string{"user_id": userID},
	})
	if err != nil {
		s.logger.Warn("gateway create order failed", zap.String("user_id", userID), zap.String("receipt", receipt), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrPaymentGateway, err)
	}

	draft.ShippingAddress = addr
	draft.PaymentInfo.GatewayOrderID = remote.ID
	saved, err := s.orders.Create(ctx, *draft)
	if err != nil {
		s.logger.Error("persist order failed",
			zap.String("user_id", userID),
			zap.String("gateway_order_id", remote.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: create order: %w", domain.ErrPersistence, err)
	}

	out := &PaymentOrder{
		OrderID:        saved.ID,
		GatewayOrderID: remote.ID,
		Amount:         amount,
		Currency:       s.currency,
		KeyID:          s.gateway.KeyID(),
	}
	if remote.Amount > 0 {
		out.Amount = remote.Amount
	}
	if remote.Currency != "" {
		out.Currency = remote.Currency
	}
	s.logger.Info("payment order created",
		zap.String("order_id", saved.ID),
		zap.String("gateway_order_id", remote.ID),
		zap.Int64("amount", out.Amount),
		zap.Int("items", len(saved.Items)),
	)
	return out, nil
}

// VerifyAndFinalize authenticates the gateway callback and, when it is
// genuine, marks the order paid, decrements stock and clears the cart in one
// transaction. A forged or mismatched callback marks a pending order Failed.
// Repeats against a paid order return domain.ErrAlreadyFinalized.
func (s *Service) VerifyAndFinalize(ctx context.Context, userID string, in VerifyInput) (*FinalizeResult, error) {
	res, err := s.verifyAndFinalize(ctx, userID, in)
	if s.metrics != nil {
		s.metrics.PaymentVerified(Outcome(err).Reason)
	}
	return res, err
}

func (s *Service) verifyAndFinalize(ctx context.Context, userID string, in VerifyInput) (*FinalizeResult, error) {
	order, err := s.ownedOrder(ctx, userID, in.OrderID)
	if err != nil {
		return nil, err
	}

	genuine := in.GatewayPaymentID != "" &&
		order.PaymentInfo.GatewayOrderID == in.GatewayOrderID &&
		s.verifier.Verify(in.GatewayOrderID, in.GatewayPaymentID, in.Signature)
	if !genuine {
		return nil, s.markFailed(ctx, order)
	}

	if order.PaymentStatus.IsTerminal() {
		return nil, closedErr(order.PaymentStatus)
	}

	confirmed := domain.OrderConfirmed
	paymentID, signature := in.GatewayPaymentID, in.Signature
	res, err := s.orders.Finalize(ctx, order.ID, domain.PaymentOutcome{
		From:             domain.PaymentPending,
		To:               domain.PaymentPaid,
		Status:           &confirmed,
		GatewayPaymentID: &paymentID,
		GatewaySignature: &signature,
	}, s.policy)
	switch {
	case errors.Is(err, domain.ErrAlreadyFinalized):
		// a concurrent callback got there first
		current, getErr := s.orders.GetByID(ctx, order.ID)
		if getErr != nil {
			return nil, fmt.Errorf("%w: reload order: %w", domain.ErrPersistence, getErr)
		}
		return nil, closedErr(current.PaymentStatus)
	case errors.Is(err, domain.ErrNotFound):
		return nil, err
	case err != nil:
		s.logger.Error("finalize failed", zap.String("order_id", order.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: finalize: %w", domain.ErrPersistence, err)
	}

	if len(res.StockShortfalls) > 0 {
		s.logger.Warn("paid order exceeded stock", zap.String("order_id", order.ID), zap.Strings("product_ids", res.StockShortfalls))
	}
	return &FinalizeResult{OrderID: res.Order.ID, StockShortfalls: res.StockShortfalls}, nil
}

// GetOrder returns one of the user's orders. Orders of other users are
// reported as not found.
func (s *Service) GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	return s.ownedOrder(ctx, userID, orderID)
}

// ListOrders returns the user's orders, newest first.
func (s *Service) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list orders: %w", domain.ErrPersistence, err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (s *Service) build(ctx context.Context, userID string) (*domain.Order, []domain.CartLine, error) {
	lines, err := s.carts.Lines(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: load cart: %w", domain.ErrPersistence, err)
	}

	draft := &domain.Order{
		UserID:        userID,
		Items:         make([]domain.LineItem, 0, len(lines)),
		TotalAmount:   decimal.Zero,
		PaymentInfo:   domain.PaymentInfo{Method: domain.PaymentMethodGateway},
		Status:        domain.OrderPending,
		PaymentStatus: domain.PaymentPending,
	}
	valid := make([]domain.CartLine, 0, len(lines))
	for _, line := range lines {
		if line.Product.ID == "" || line.Quantity < 1 {
			continue
		}
		item := domain.LineItem{
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			Price:     line.UnitPrice(),
			Quantity:  line.Quantity,
			Image:     line.Product.FirstImage(),
		}
		draft.Items = append(draft.Items, item)
		draft.TotalAmount = draft.TotalAmount.Add(item.Total())
		valid = append(valid, line)
	}
	if len(draft.Items) == 0 {
		return nil, nil, domain.ErrEmptyCart
	}
	return draft, valid, nil
}

func (s *Service) ownedOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load order: %w", domain.ErrPersistence, err)
	}
	if order.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// markFailed records the failed attempt on a still-pending order and always
// returns domain.ErrSignatureMismatch unless the datastore fails.
func (s *Service) markFailed(ctx context.Context, order *domain.Order) error {
	s.logger.Warn("payment signature mismatch", zap.String("order_id", order.ID), zap.String("user_id", order.UserID))
	if order.PaymentStatus.IsTerminal() {
		return domain.ErrSignatureMismatch
	}
	_, err := s.orders.UpdatePaymentOutcome(ctx, order.ID, domain.PaymentOutcome{
		From: domain.PaymentPending,
		To:   domain.PaymentFailed,
	})
	if err != nil && !errors.Is(err, domain.ErrAlreadyFinalized) {
		return fmt.Errorf("%w: mark failed: %w", domain.ErrPersistence, err)
	}
	return domain.ErrSignatureMismatch
}

func closedErr(status domain.PaymentStatus) error {
	if status == domain.PaymentPaid {
		return domain.ErrAlreadyFinalized
	}
	return fmt.Errorf("%w: payment status %s", ErrAttemptClosed, status)
}

// MinorUnits converts an amount to the gateway's integer minor units.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func newReceipt() string {
	id := uuid.New()
	return fmt.Sprintf("rcpt_%x", id[:])
}
