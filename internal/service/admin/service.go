package admin

import (
	"context"
	"fmt"

	"garud-store/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const recentOrders = 10

type productCounter interface {
	CountAll(ctx context.Context) (int, error)
}

type userCounter interface {
	Count(ctx context.Context) (int, error)
}

type orderBook interface {
	ListRecent(ctx context.Context, limit int) ([]domain.Order, error)
	Count(ctx context.Context) (int, error)
	AggregateRevenue(ctx context.Context) (decimal.Decimal, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
}

type Service struct {
	products productCounter
	users    userCounter
	orders   orderBook
	logger   *zap.Logger
}

func New(products productCounter, users userCounter, orders orderBook, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{products: products, users: users, orders: orders, logger: logger.Named("admin")}
}

type Dashboard struct {
	TotalProducts int             `json:"totalProducts"`
	TotalOrders   int             `json:"totalOrders"`
	TotalUsers    int             `json:"totalUsers"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	RecentOrders  []domain.Order  `json:"recentOrders"`
}

// Dashboard gathers store-wide counters. Revenue only counts paid orders.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		d   Dashboard
		err error
	)
	if d.TotalProducts, err = s.products.CountAll(ctx); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	if d.TotalOrders, err = s.orders.Count(ctx); err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	if d.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if d.TotalRevenue, err = s.orders.AggregateRevenue(ctx); err != nil {
		return nil, fmt.Errorf("aggregate revenue: %w", err)
	}
	if d.RecentOrders, err = s.orders.ListRecent(ctx, recentOrders); err != nil {
		return nil, fmt.Errorf("recent orders: %w", err)
	}
	if d.RecentOrders == nil {
		d.RecentOrders = []domain.Order{}
	}
	return &d, nil
}

// ListOrders returns every order, newest first.
func (s *Service) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.orders.ListRecent(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// UpdateStatus moves an order to any known fulfilment status. Transitions
// are not ordered; the payment status is left alone.
func (s *Service) UpdateStatus(ctx context.Context, orderID, status string) (*domain.Order, error) {
	st, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	o, err := s.orders.UpdateStatus(ctx, orderID, st)
	if err != nil {
		return nil, err
	}
	s.logger.Info("order status updated", zap.String("order_id", o.ID), zap.String("status", string(st)))
	return o, nil
}
