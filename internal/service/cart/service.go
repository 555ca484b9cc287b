package cart

import (
	"context"
	"errors"
	"fmt"

	"garud-store/internal/domain"
)

type Service struct {
	repo        cartRepo
	productRepo productRepo
}

type cartRepo interface {
	Lines(ctx context.Context, userID string) ([]domain.CartLine, error)
	Add(ctx context.Context, userID, productID string, quantity int) error
	SetQuantity(ctx context.Context, userID, productID string, quantity int) error
	Remove(ctx context.Context, userID, productID string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

func New(repo cartRepo, productRepo productRepo) *Service {
	return &Service{repo: repo, productRepo: productRepo}
}

// View returns the user's resolved cart.
func (s *Service) View(ctx context.Context, userID string) (*domain.Cart, error) {
	lines, err := s.repo.Lines(ctx, userID)
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return &domain.Cart{UserID: userID, Lines: lines}, nil
}

// Add puts quantity units of the product in the cart, merging with any
// existing entry. quantity 0 means 1.
func (s *Service) Add(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	if s.productRepo == nil {
		return nil, errors.New("product repository unavailable")
	}
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, domain.ErrNotFound
	}
	if product.Stock < 1 {
		return nil, domain.ErrOutOfStock
	}
	if err := s.repo.Add(ctx, userID, product.ID, quantity); err != nil {
		return nil, err
	}
	return s.View(ctx, userID)
}

// Update sets the entry's quantity. quantity <= 0 removes the entry; an
// absent entry is left alone.
func (s *Service) Update(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	if err := s.repo.SetQuantity(ctx, userID, productID, quantity); err != nil {
		return nil, err
	}
	return s.View(ctx, userID)
}

func (s *Service) Remove(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	if err := s.repo.Remove(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.View(ctx, userID)
}
