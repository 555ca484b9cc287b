package admin

import (
	"context"
	"errors"
	"testing"

	"garud-store/internal/domain"
	"github.com/shopspring/decimal"
)

type stubCounts struct {
	n   int
	err error
}

func (s stubCounts) CountAll(context.Context) (int, error) { return s.n, s.err }
func (s stubCounts) Count(context.Context) (int, error)    { return s.n, s.err }

type stubOrders struct {
	orders    []domain.Order
	revenue   decimal.Decimal
	lastLimit int
	updated   domain.OrderStatus
	updateErr error
}

func (s *stubOrders) ListRecent(_ context.Context, limit int) ([]domain.Order, error) {
	s.lastLimit = limit
	if limit > 0 && limit < len(s.orders) {
		return s.orders[:limit], nil
	}
	return s.orders, nil
}

func (s *stubOrders) Count(context.Context) (int, error) { return len(s.orders), nil }

func (s *stubOrders) AggregateRevenue(context.Context) (decimal.Decimal, error) {
	return s.revenue, nil
}

func (s *stubOrders) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	s.updated = status
	return &domain.Order{ID: id, Status: status}, nil
}

func TestDashboard(t *testing.T) {
	orders := &stubOrders{revenue: decimal.RequireFromString("1499.50")}
	for i := 0; i < 12; i++ {
		orders.orders = append(orders.orders, domain.Order{ID: string(rune('a' + i))})
	}
	svc := New(stubCounts{n: 7}, stubCounts{n: 3}, orders, nil)

	d, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.TotalProducts != 7 || d.TotalUsers != 3 || d.TotalOrders != 12 {
		t.Fatalf("unexpected counts: %+v", d)
	}
	if !d.TotalRevenue.Equal(decimal.RequireFromString("1499.5")) {
		t.Fatalf("revenue = %s", d.TotalRevenue)
	}
	if orders.lastLimit != 10 || len(d.RecentOrders) != 10 {
		t.Fatalf("expected 10 recent orders, got %d (limit %d)", len(d.RecentOrders), orders.lastLimit)
	}
}

func TestDashboardPropagatesErrors(t *testing.T) {
	svc := New(stubCounts{err: errors.New("boom")}, stubCounts{}, &stubOrders{}, nil)
	if _, err := svc.Dashboard(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestListOrdersAll(t *testing.T) {
	orders := &stubOrders{}
	svc := New(stubCounts{}, stubCounts{}, orders, nil)
	got, err := svc.ListOrders(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty slice, got %#v", got)
	}
	if orders.lastLimit != 0 {
		t.Fatalf("expected unbounded listing, limit %d", orders.lastLimit)
	}
}

func TestUpdateStatus(t *testing.T) {
	orders := &stubOrders{}
	svc := New(stubCounts{}, stubCounts{}, orders, nil)

	if _, err := svc.UpdateStatus(context.Background(), "o1", "Teleported"); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	// no ordering is enforced between fulfilment states
	o, err := svc.UpdateStatus(context.Background(), "o1", "Delivered")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if o.Status != domain.OrderDelivered || orders.updated != domain.OrderDelivered {
		t.Fatalf("status = %s", o.Status)
	}
	if _, err := svc.UpdateStatus(context.Background(), "o1", "Pending"); err != nil {
		t.Fatalf("backwards transition rejected: %v", err)
	}

	orders.updateErr = domain.ErrNotFound
	if _, err := svc.UpdateStatus(context.Background(), "missing", "Shipped"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
