package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"garud-store/internal/domain"
	"garud-store/internal/payment/razorpay"
	orderrepo "garud-store/internal/repository/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_secret"

type fakeCart struct {
	lines []domain.CartLine
	err   error
}

func (f *fakeCart) Lines(context.Context, string) ([]domain.CartLine, error) {
	return f.lines, f.err
}

// fakeLedger keeps orders in memory and mimics the conditional updates of
// the postgres ledger.
type fakeLedger struct {
	mu        sync.Mutex
	orders    map[string]*domain.Order
	seq       int
	createErr error
	finalized int
	stock     map[string]int
	cart      *fakeCart
}

func newFakeLedger(cart *fakeCart) *fakeLedger {
	return &fakeLedger{orders: map[string]*domain.Order{}, stock: map[string]int{}, cart: cart}
}

func (f *fakeLedger) Create(_ context.Context, o domain.Order) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.seq++
	o.ID = fmt.Sprintf("order-%d", f.seq)
	f.orders[o.ID] = &o
	out := o
	return &out, nil
}

func (f *fakeLedger) GetByID(_ context.Context, id string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *o
	return &out, nil
}

func (f *fakeLedger) apply(id string, outcome domain.PaymentOutcome) (*domain.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if o.PaymentStatus != outcome.From {
		return nil, domain.ErrAlreadyFinalized
	}
	o.PaymentStatus = outcome.To
	if outcome.Status != nil {
		o.Status = *outcome.Status
	}
	if outcome.GatewayPaymentID != nil {
		o.PaymentInfo.GatewayPaymentID = outcome.GatewayPaymentID
	}
	if outcome.GatewaySignature != nil {
		o.PaymentInfo.GatewaySignature = outcome.GatewaySignature
	}
	out := *o
	return &out, nil
}

func (f *fakeLedger) UpdatePaymentOutcome(_ context.Context, id string, outcome domain.PaymentOutcome) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.apply(id, outcome)
}

func (f *fakeLedger) Finalize(_ context.Context, id string, outcome domain.PaymentOutcome, _ domain.StockPolicy) (*orderrepo.FinalizeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, err := f.apply(id, outcome)
	if err != nil {
		return nil, err
	}
	for _, item := range o.Items {
		f.stock[item.ProductID] -= item.Quantity
	}
	if f.cart != nil {
		f.cart.lines = nil
	}
	f.finalized++
	return &orderrepo.FinalizeResult{Order: *o}, nil
}

func (f *fakeLedger) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for i := f.seq; i > 0; i-- {
		if o, ok := f.orders[fmt.Sprintf("order-%d", i)]; ok && o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

type fakeGateway struct {
	calls   int
	lastReq razorpay.OrderRequest
	err     error
}

func (g *fakeGateway) CreateOrder(_ context.Context, req razorpay.OrderRequest) (*razorpay.RemoteOrder, error) {
	g.calls++
	g.lastReq = req
	if g.err != nil {
		return nil, g.err
	}
	return &razorpay.RemoteOrder{ID: fmt.Sprintf("order_rzp%d", g.calls), Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt, Status: "created"}, nil
}

func (g *fakeGateway) KeyID() string { return "rzp_test_key" }

type fakeRecorder struct {
	created  []string
	verified []string
}

func (r *fakeRecorder) OrderCreated(result string)    { r.created = append(r.created, result) }
func (r *fakeRecorder) PaymentVerified(result string) { r.verified = append(r.verified, result) }

type harness struct {
	svc     *Service
	cart    *fakeCart
	ledger  *fakeLedger
	gateway *fakeGateway
	metrics *fakeRecorder
	signer  *razorpay.Verifier
}

func newHarness(policy domain.StockPolicy, lines ...domain.CartLine) *harness {
	h := &harness{
		cart:    &fakeCart{lines: lines},
		gateway: &fakeGateway{},
		metrics: &fakeRecorder{},
		signer:  razorpay.NewVerifier(testSecret),
	}
	h.ledger = newFakeLedger(h.cart)
	h.svc = New(h.cart, h.ledger, h.gateway, h.signer, Options{StockPolicy: policy, Metrics: h.metrics}, nil)
	return h
}

func book(id, price string, stock int) domain.Product {
	return domain.Product{ID: id, Name: "Book " + id, Price: decimal.RequireFromString(price), Stock: stock, IsActive: true, Images: []string{"/img/" + id + ".png"}}
}

func (h *harness) genuine(po *PaymentOrder, paymentID string) VerifyInput {
	return VerifyInput{
		OrderID:          po.OrderID,
		GatewayOrderID:   po.GatewayOrderID,
		GatewayPaymentID: paymentID,
		Signature:        h.signer.Sign(po.GatewayOrderID, paymentID),
	}
}

func TestCheckoutHappyPath(t *testing.T) {
	discount := decimal.RequireFromString("450")
	p1 := book("p1", "500", 10)
	p1.DiscountPrice = &discount
	p2 := book("p2", "199.99", 3)
	h := newHarness(domain.StockUnchecked,
		domain.CartLine{Product: p1, Quantity: 2},
		domain.CartLine{Product: p2, Quantity: 1},
	)
	ctx := context.Background()
	addr := domain.ShippingAddress{Fullname: "Asha", Phone: "9999999999", Street: "1 Main", City: "Pune", State: "MH", Pincode: "411001"}

	po, err := h.svc.CreatePaymentOrder(ctx, "u1", addr)
	require.NoError(t, err)
	assert.Equal(t, int64(109999), po.Amount)
	assert.Equal(t, "INR", po.Currency)
	assert.Equal(t, "rzp_test_key", po.KeyID)
	assert.Equal(t, "order_rzp1", po.GatewayOrderID)
	assert.True(t, strings.HasPrefix(h.gateway.lastReq.Receipt, "rcpt_"))
	assert.LessOrEqual(t, len(h.gateway.lastReq.Receipt), 40)

	stored, err := h.ledger.GetByID(ctx, po.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, stored.PaymentStatus)
	assert.Equal(t, domain.OrderPending, stored.Status)
	assert.Equal(t, "order_rzp1", stored.PaymentInfo.GatewayOrderID)
	assert.Equal(t, addr, stored.ShippingAddress)
	require.Len(t, stored.Items, 2)
	assert.True(t, stored.Items[0].Price.Equal(discount))
	assert.Equal(t, "/img/p1.png", stored.Items[0].Image)
	assert.True(t, stored.TotalAmount.Equal(stored.ItemsTotal()))

	res, err := h.svc.VerifyAndFinalize(ctx, "u1", h.genuine(po, "pay_1"))
	require.NoError(t, err)
	assert.Equal(t, po.OrderID, res.OrderID)

	stored, err = h.ledger.GetByID(ctx, po.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, stored.PaymentStatus)
	assert.Equal(t, domain.OrderConfirmed, stored.Status)
	require.NotNil(t, stored.PaymentInfo.GatewayPaymentID)
	assert.Equal(t, "pay_1", *stored.PaymentInfo.GatewayPaymentID)
	assert.Equal(t, -2, h.ledger.stock["p1"])
	assert.Empty(t, h.cart.lines)
	assert.Equal(t, []string{ReasonOK}, h.metrics.created)
	assert.Equal(t, []string{ReasonOK}, h.metrics.verified)
}

func TestCheckoutSkipsDeletedProducts(t *testing.T) {
	h := newHarness(domain.StockUnchecked,
		domain.CartLine{Product: domain.Product{}, Quantity: 3},
		domain.CartLine{Product: book("p1", "100", 5), Quantity: 1},
	)
	draft, err := h.svc.BuildOrderFromCart(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, draft.Items, 1)
	assert.Equal(t, "p1", draft.Items[0].ProductID)
	assert.Equal(t, domain.PaymentMethodGateway, draft.PaymentInfo.Method)
}

func TestCreatePaymentOrderEmptyCart(t *testing.T) {
	h := newHarness(domain.StockUnchecked)
	_, err := h.svc.CreatePaymentOrder(context.Background(), "u1", domain.ShippingAddress{})
	require.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Zero(t, h.gateway.calls)
	assert.Empty(t, h.ledger.orders)
	assert.Equal(t, []string{ReasonEmptyCart}, h.metrics.created)

	_, err = h.svc.CheckoutSummary(context.Background(), "u1")
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestCreatePaymentOrderGatewayFailure(t *testing.T) {
	h := newHarness(domain.StockUnchecked, domain.CartLine{Product: book("p1", "100", 5), Quantity: 1})
	h.gateway.err = errors.New("503 upstream")

	_, err := h.svc.CreatePaymentOrder(context.Background(), "u1", domain.ShippingAddress{})
	require.ErrorIs(t, err, domain.ErrPaymentGateway)
	assert.Empty(t, h.ledger.orders)
	assert.Len(t, h.cart.lines, 1)
	assert.Equal(t, ReasonGatewayError, Outcome(err).Reason)
}

func TestCreatePaymentOrderPersistenceFailure(t *testing.T) {
	h := newHarness(domain.StockUnchecked, domain.CartLine{Product: book("p1", "100", 5), Quantity: 1})
	h.ledger.createErr = errors.New("connection reset")

	_, err := h.svc.CreatePaymentOrder(context.Background(), "u1", domain.ShippingAddress{})
	require.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, 1, h.gateway.calls)
	assert.Equal(t, ReasonInternal, Outcome(err).Reason)
}

func TestCreatePaymentOrderStrictStock(t *testing.T) {
	h := newHarness(domain.StockStrict, domain.CartLine{Product: book("p1", "100", 1), Quantity: 2})
	_, err := h.svc.CreatePaymentOrder(context.Background(), "u1", domain.ShippingAddress{})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Zero(t, h.gateway.calls)

	unchecked := newHarness(domain.StockUnchecked, domain.CartLine{Product: book("p1", "100", 1), Quantity: 2})
	_, err = unchecked.svc.CreatePaymentOrder(context.Background(), "u1", domain.ShippingAddress{})
	assert.NoError(t, err)
}

func TestVerifyForgedSignature(t *testing.T) {
	h := newHarness(domain.StockUnchecked, domain.CartLine{Product: book("p1", "100", 5), Quantity: 1})
	ctx := context.Background()
	po, err := h.svc.CreatePaymentOrder(ctx, "u1", domain.ShippingAddress{})
	require.NoError(t, err)

	in := h.genuine(po, "pay_1")
	in.Signature = strings.Repeat("0", 64)
	_, err = h.svc.VerifyAndFinalize(ctx, "u1", in)
	require.ErrorIs(t, err, domain.ErrSignatureMismatch)

	stored, _ := h.ledger.GetByID(ctx, po.OrderID)
	assert.Equal(t, domain.PaymentFailed, stored.PaymentStatus)
	assert.Equal(t, domain.OrderPending, stored.Status)
	assert.Nil(t, stored.PaymentInfo.GatewayPaymentID)
	assert.Zero(t, h.ledger.finalized)
	assert.Len(t, h.cart.lines, 1)

	// a genuine callback after the failure cannot resurrect the attempt
	_, err = h.svc.VerifyAndFinalize(ctx, "u1", h.genuine(po, "pay_1"))
	require.ErrorIs(t, err, ErrAttemptClosed)
	assert.False(t, Outcome(err).Success)
	assert.Zero(t, h.ledger.finalized)
}

func TestVerifyMismatchedGatewayOrder(t *testing.T) {
	h := newHarness(domain.StockUnchecked, domain.CartLine{Product: book("p1", "100", 5), Quantity: 1})
	ctx := context.Background()
	po, err := h.svc.CreatePaymentOrder(ctx, "u1", domain.ShippingAddress{})
	require.NoError(t, err)

	// correctly signed but for a different remote order
	in := VerifyInput{OrderID: po.OrderID, GatewayOrderID: "order_other", GatewayPaymentID: "pay_1", Signature: h.signer.Sign("order_other", "pay_1")}
	_, err = h.svc.VerifyAndFinalize(ctx, "u1", in)
	require.ErrorIs(t, err, domain.ErrSignatureMismatch)
	stored, _ := h.ledger.GetByID(ctx, po.OrderID)
	assert.Equal(t, domain.PaymentFailed, stored.PaymentStatus)
}

func TestVerifyIsIdempotent(t *testing.T) {
	h := newHarness(domain.StockUnchecked, domain.CartLine{Product: book("p1", "100", 5), Quantity: 2})
	ctx := context.Background()
	po, err := h.svc.CreatePaymentOrder(ctx, "u1", domain.ShippingAddress{})
	require.NoError(t, err)
	in := h.genuine(po, "pay_1")

	_, err = h.svc.VerifyAndFinalize(ctx, "u1", in)
	require.NoError(t, err)
	_, err = h.svc.VerifyAndFinalize(ctx, "u1", in)
	require.ErrorIs(t, err, domain.ErrAlreadyFinalized)
	assert.Equal(t, Result{Success: true, Reason: ReasonAlreadyFinalized}, Outcome(err))

	assert.Equal(t, 1, h.ledger.finalized)
	assert.Equal(t, -2, h.ledger.stock["p1"])

	// a forged repeat does not downgrade the paid order
	in.Signature = "bogus"
	_, err = h.svc.VerifyAndFinalize(ctx, "u1", in)
	require.ErrorIs(t, err, domain.ErrSignatureMismatch)
	stored, _ := h.ledger.GetByID(ctx, po.OrderID)
	assert.Equal(t, domain.PaymentPaid, stored.PaymentStatus)
}

func TestVerifyConcurrentCallbacks(t *testing.T) {
	h := newHarness(domain.StockUnchecked, domain.CartLine{Product: book("p1", "100", 5), Quantity: 1})
	h.svc.metrics = nil
	ctx := context.Background()
	po, err := h.svc.CreatePaymentOrder(ctx, "u1", domain.ShippingAddress{})
	require.NoError(t, err)
	in := h.genuine(po, "pay_1")

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.svc.VerifyAndFinalize(ctx, "u1", in)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadyFinalized)
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, h.ledger.finalized)
	assert.Equal(t, -1, h.ledger.stock["p1"])
}

func TestOrdersAreOwnerScoped(t *testing.T) {
	h := newHarness(domain.StockUnchecked, domain.CartLine{Product: book("p1", "100", 5), Quantity: 1})
	ctx := context.Background()
	po, err := h.svc.CreatePaymentOrder(ctx, "u1", domain.ShippingAddress{})
	require.NoError(t, err)

	_, err = h.svc.GetOrder(ctx, "u2", po.OrderID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = h.svc.VerifyAndFinalize(ctx, "u2", h.genuine(po, "pay_1"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	stored, _ := h.ledger.GetByID(ctx, po.OrderID)
	assert.Equal(t, domain.PaymentPending, stored.PaymentStatus)

	got, err := h.svc.GetOrder(ctx, "u1", po.OrderID)
	require.NoError(t, err)
	assert.Equal(t, po.OrderID, got.ID)

	_, err = h.svc.VerifyAndFinalize(ctx, "u1", VerifyInput{OrderID: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListOrdersNewestFirst(t *testing.T) {
	h := newHarness(domain.StockUnchecked, domain.CartLine{Product: book("p1", "100", 5), Quantity: 1})
	ctx := context.Background()
	first, err := h.svc.CreatePaymentOrder(ctx, "u1", domain.ShippingAddress{})
	require.NoError(t, err)
	second, err := h.svc.CreatePaymentOrder(ctx, "u1", domain.ShippingAddress{})
	require.NoError(t, err)

	orders, err := h.svc.ListOrders(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.OrderID, orders[0].ID)
	assert.Equal(t, first.OrderID, orders[1].ID)

	none, err := h.svc.ListOrders(ctx, "u9")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMinorUnits(t *testing.T) {
	cases := map[string]int64{
		"0":       0,
		"1":       100,
		"199.99":  19999,
		"10.005":  1001,
		"1099.90": 109990,
	}
	for in, want := range cases {
		assert.Equal(t, want, MinorUnits(decimal.RequireFromString(in)), in)
	}
}

func TestOutcome(t *testing.T) {
	cases := []struct {
		err  error
		want Result
	}{
		{nil, Result{Success: true, Reason: ReasonOK}},
		{domain.ErrEmptyCart, Result{Reason: ReasonEmptyCart}},
		{fmt.Errorf("%w: boom", domain.ErrPaymentGateway), Result{Reason: ReasonGatewayError}},
		{domain.ErrSignatureMismatch, Result{Reason: ReasonSignatureMismatch}},
		{domain.ErrAlreadyFinalized, Result{Success: true, Reason: ReasonAlreadyFinalized}},
		{domain.ErrNotFound, Result{Reason: ReasonNotFound}},
		{domain.ErrInsufficientStock, Result{Reason: ReasonInsufficientStock}},
		{errors.New("disk full"), Result{Reason: ReasonInternal}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Outcome(tc.err), fmt.Sprint(tc.err))
	}
}
