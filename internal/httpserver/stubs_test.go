package httpserver

import (
	"context"
	"errors"

	"garud-store/internal/domain"
	"garud-store/internal/service/account"
	"garud-store/internal/service/admin"
	"garud-store/internal/service/catalog"
	"garud-store/internal/service/checkout"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	shopper = &domain.User{ID: "u1", Username: "asha", Email: "asha@example.com", Role: domain.RoleUser}
	staff   = &domain.User{ID: "a1", Username: "admin", Email: "admin@example.com", Role: domain.RoleAdmin}
)

type stubAccounts struct {
	users      map[string]*domain.User
	loginErr   error
	registered *account.RegisterInput
	revoked    string
}

func newStubAccounts() *stubAccounts {
	return &stubAccounts{users: map[string]*domain.User{"user-token": shopper, "admin-token": staff}}
}

func (s *stubAccounts) Register(_ context.Context, in account.RegisterInput) (*domain.User, error) {
	s.registered = &in
	if in.Password == "" {
		return nil, errors.Join(domain.ErrValidation, errors.New("password is required"))
	}
	return &domain.User{ID: "new", Username: in.Username, Email: in.Email, Role: domain.RoleUser}, nil
}

func (s *stubAccounts) Login(_ context.Context, _, _ string) (*domain.User, string, error) {
	if s.loginErr != nil {
		return nil, "", s.loginErr
	}
	return shopper, "user-token", nil
}

func (s *stubAccounts) Logout(_ context.Context, token string) error {
	s.revoked = token
	return nil
}

func (s *stubAccounts) LookupByToken(_ context.Context, token string) (*domain.User, error) {
	if u, ok := s.users[token]; ok {
		return u, nil
	}
	return nil, account.ErrInvalidToken
}

func (s *stubAccounts) UpdateProfile(_ context.Context, _ string, in account.ProfileInput) (*domain.User, error) {
	u := *shopper
	u.Fullname = in.Fullname
	return &u, nil
}

func (s *stubAccounts) AccessTTLSeconds() int { return 3600 }

type stubCatalog struct {
	listIn catalog.ListInput
	err    error
}

func (s *stubCatalog) Home(context.Context) (*catalog.HomePage, error) {
	return &catalog.HomePage{Featured: []domain.Product{}, Latest: []domain.Product{}, Categories: []string{"Books"}}, s.err
}

func (s *stubCatalog) List(_ context.Context, in catalog.ListInput) (*catalog.ListResult, error) {
	s.listIn = in
	return &catalog.ListResult{Products: []domain.Product{}, Page: in.Page}, s.err
}

func (s *stubCatalog) Detail(_ context.Context, id string) (*catalog.ProductDetail, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &catalog.ProductDetail{Product: domain.Product{ID: id}}, nil
}

func (s *stubCatalog) AdminList(context.Context) ([]domain.Product, error) {
	return []domain.Product{}, s.err
}

func (s *stubCatalog) AdminGet(_ context.Context, id string) (*domain.Product, error) {
	return &domain.Product{ID: id}, s.err
}

func (s *stubCatalog) Create(_ context.Context, in catalog.ProductInput) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Product{ID: "p-new", Name: in.Name}, nil
}

func (s *stubCatalog) Update(_ context.Context, id string, in catalog.ProductInput) (*domain.Product, error) {
	return &domain.Product{ID: id, Name: in.Name}, s.err
}

func (s *stubCatalog) Delete(context.Context, string) error { return s.err }

func (s *stubCatalog) ToggleActive(_ context.Context, id string) (*domain.Product, error) {
	return &domain.Product{ID: id, IsActive: true}, s.err
}

type stubCarts struct {
	lastQty int
	err     error
}

func (s *stubCarts) View(_ context.Context, userID string) (*domain.Cart, error) {
	return &domain.Cart{UserID: userID}, s.err
}

func (s *stubCarts) Add(_ context.Context, userID, _ string, quantity int) (*domain.Cart, error) {
	s.lastQty = quantity
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Cart{UserID: userID}, nil
}

func (s *stubCarts) Update(_ context.Context, userID, _ string, quantity int) (*domain.Cart, error) {
	s.lastQty = quantity
	return &domain.Cart{UserID: userID}, s.err
}

func (s *stubCarts) Remove(_ context.Context, userID, _ string) (*domain.Cart, error) {
	return &domain.Cart{UserID: userID}, s.err
}

type stubCheckout struct {
	createErr error
	verifyErr error
	orders    map[string]*domain.Order
	lastAddr  domain.ShippingAddress
	lastInput checkout.VerifyInput
}

func (s *stubCheckout) CheckoutSummary(context.Context, string) (*checkout.Summary, error) {
	return nil, domain.ErrEmptyCart
}

func (s *stubCheckout) CreatePaymentOrder(_ context.Context, _ string, addr domain.ShippingAddress) (*checkout.PaymentOrder, error) {
	s.lastAddr = addr
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &checkout.PaymentOrder{OrderID: "o1", GatewayOrderID: "order_rzp1", Amount: 19999, Currency: "INR", KeyID: "rzp_test"}, nil
}

func (s *stubCheckout) VerifyAndFinalize(_ context.Context, _ string, in checkout.VerifyInput) (*checkout.FinalizeResult, error) {
	s.lastInput = in
	if s.verifyErr != nil {
		return nil, s.verifyErr
	}
	return &checkout.FinalizeResult{OrderID: in.OrderID}, nil
}

func (s *stubCheckout) GetOrder(_ context.Context, userID, orderID string) (*domain.Order, error) {
	o, ok := s.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (s *stubCheckout) ListOrders(context.Context, string) ([]domain.Order, error) {
	return []domain.Order{}, nil
}

type stubAdmin struct {
	lastStatus string
}

func (s *stubAdmin) Dashboard(context.Context) (*admin.Dashboard, error) {
	return &admin.Dashboard{TotalProducts: 4, RecentOrders: []domain.Order{}}, nil
}

func (s *stubAdmin) ListOrders(context.Context) ([]domain.Order, error) {
	return []domain.Order{}, nil
}

func (s *stubAdmin) UpdateStatus(_ context.Context, orderID, status string) (*domain.Order, error) {
	s.lastStatus = status
	st, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	return &domain.Order{ID: orderID, Status: st}, nil
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type fixture struct {
	router   *gin.Engine
	accounts *stubAccounts
	catalog  *stubCatalog
	carts    *stubCarts
	checkout *stubCheckout
	admin    *stubAdmin
}

func newFixture(mod ...func(*Deps)) *fixture {
	gin.SetMode(gin.TestMode)
	f := &fixture{
		accounts: newStubAccounts(),
		catalog:  &stubCatalog{},
		carts:    &stubCarts{},
		checkout: &stubCheckout{orders: map[string]*domain.Order{}},
		admin:    &stubAdmin{},
	}
	deps := Deps{
		DB:       stubPinger{},
		Accounts: f.accounts,
		Catalog:  f.catalog,
		Carts:    f.carts,
		Checkout: f.checkout,
		Admin:    f.admin,
	}
	for _, m := range mod {
		m(&deps)
	}
	f.router = buildRouter(zap.NewNop(), deps)
	return f
}
