package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"garud-store/internal/cache"
	"garud-store/internal/domain"
	productrepo "garud-store/internal/repository/product"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// PageSize is the number of products per listing page.
	PageSize     = 12
	homeSize     = 8
	relatedSize  = 4
	maxNewImages = 6
	homeCacheKey = "home"
)

type productStore interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Find(ctx context.Context, f productrepo.Filter, sort productrepo.Sort, offset, limit int) ([]domain.Product, error)
	Count(ctx context.Context, f productrepo.Filter) (int, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	ToggleActive(ctx context.Context, id string) (*domain.Product, error)
}

type pageCache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, keys ...string) error
}

// Service serves the storefront catalog and the admin product pages.
type Service struct {
	products productStore
	cache    pageCache
	logger   *zap.Logger
}

// New creates a Service. pageCache may be nil, which disables caching.
func New(products productStore, pc pageCache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{products: products, cache: pc, logger: logger.Named("catalog")}
}

// HomePage is the landing page content.
type HomePage struct {
	Featured   []domain.Product `json:"featured"`
	Latest     []domain.Product `json:"latest"`
	Categories []string         `json:"categories"`
}

// ListInput carries the listing query parameters. Page is 1-based.
type ListInput struct {
	Category string
	Search   string
	Sort     string
	Page     int
}

type ListResult struct {
	Products   []domain.Product `json:"products"`
	Categories []string         `json:"categories"`
	Category   string           `json:"currentCategory"`
	Search     string           `json:"currentSearch"`
	Sort       string           `json:"currentSort"`
	Page       int              `json:"currentPage"`
	TotalPages int              `json:"totalPages"`
	Total      int              `json:"total"`
}

type ProductDetail struct {
	Product domain.Product   `json:"product"`
	Related []domain.Product `json:"relatedProducts"`
}

// ProductInput is the admin product form. AddImages and RemoveImages only
// apply to updates; Images only to creates.
type ProductInput struct {
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	ShortDescription string           `json:"shortDescription"`
	Price            decimal.Decimal  `json:"price"`
	DiscountPrice    *decimal.Decimal `json:"discountPrice"`
	Category         string           `json:"category"`
	Subject          string           `json:"subject"`
	ClassLevel       string           `json:"classLevel"`
	Author           string           `json:"author"`
	Stock            int              `json:"stock"`
	Featured         bool             `json:"featured"`
	Images           []string         `json:"images"`
	AddImages        []string         `json:"addImages"`
	RemoveImages     []string         `json:"removeImages"`
}

// Home returns featured and latest products plus the active categories.
func (s *Service) Home(ctx context.Context) (*HomePage, error) {
	if s.cache != nil {
		var cached HomePage
		err := s.cache.Get(ctx, homeCacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("home cache read failed", zap.Error(err))
		}
	}

	featured, err := s.products.Find(ctx, productrepo.Filter{ActiveOnly: true, Featured: true}, productrepo.SortNewest, 0, homeSize)
	if err != nil {
		return nil, err
	}
	latest, err := s.products.Find(ctx, productrepo.Filter{ActiveOnly: true}, productrepo.SortNewest, 0, homeSize)
	if err != nil {
		return nil, err
	}
	categories, err := s.products.Categories(ctx)
	if err != nil {
		return nil, err
	}
	page := &HomePage{Featured: nonNil(featured), Latest: nonNil(latest), Categories: categories}

	if s.cache != nil {
		if err := s.cache.Set(ctx, homeCacheKey, page); err != nil {
			s.logger.Warn("home cache write failed", zap.Error(err))
		}
	}
	return page, nil
}

// List returns one page of active products.
func (s *Service) List(ctx context.Context, in ListInput) (*ListResult, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	filter := productrepo.Filter{
		Category:   strings.TrimSpace(in.Category),
		Search:     strings.TrimSpace(in.Search),
		ActiveOnly: true,
	}

	total, err := s.products.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	products, err := s.products.Find(ctx, filter, productrepo.ParseSort(in.Sort), (page-1)*PageSize, PageSize)
	if err != nil {
		return nil, err
	}
	categories, err := s.products.Categories(ctx)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Products:   nonNil(products),
		Categories: categories,
		Category:   filter.Category,
		Search:     filter.Search,
		Sort:       in.Sort,
		Page:       page,
		TotalPages: (total + PageSize - 1) / PageSize,
		Total:      total,
	}, nil
}

// Detail returns an active product and up to four related products.
func (s *Service) Detail(ctx context.Context, id string) (*ProductDetail, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, domain.ErrNotFound
	}
	related, err := s.products.Find(ctx, productrepo.Filter{Category: p.Category, ActiveOnly: true, ExcludeID: p.ID}, productrepo.SortNewest, 0, relatedSize)
	if err != nil {
		return nil, err
	}
	return &ProductDetail{Product: *p, Related: nonNil(related)}, nil
}

// AdminList returns every product, newest first.
func (s *Service) AdminList(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.Find(ctx, productrepo.Filter{}, productrepo.SortNewest, 0, 0)
	return nonNil(products), err
}

// AdminGet returns a product regardless of its active flag.
func (s *Service) AdminGet(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if len(in.Images) > maxNewImages {
		return nil, fmt.Errorf("%w: at most %d images per upload", domain.ErrValidation, maxNewImages)
	}
	p := domain.Product{IsActive: true, Images: cleanList(in.Images)}
	if err := apply(&p, in); err != nil {
		return nil, err
	}
	created, err := s.products.Create(ctx, p)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: a product named %q already exists", domain.ErrValidation, p.Name)
		}
		return nil, err
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	if len(in.AddImages) > maxNewImages {
		return nil, fmt.Errorf("%w: at most %d images per upload", domain.ErrValidation, maxNewImages)
	}
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(p, in); err != nil {
		return nil, err
	}
	p.Images = append(without(p.Images, in.RemoveImages), cleanList(in.AddImages)...)

	updated, err := s.products.Update(ctx, *p)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: a product named %q already exists", domain.ErrValidation, p.Name)
		}
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) ToggleActive(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.products.ToggleActive(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, homeCacheKey); err != nil {
		s.logger.Warn("home cache invalidation failed", zap.Error(err))
	}
}

// apply validates in and copies the editable fields onto p.
func apply(p *domain.Product, in ProductInput) error {
	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)
	short := strings.TrimSpace(in.ShortDescription)
	switch {
	case name == "":
		return fmt.Errorf("%w: name required", domain.ErrValidation)
	case description == "":
		return fmt.Errorf("%w: description required", domain.ErrValidation)
	case !domain.ValidCategory(in.Category):
		return fmt.Errorf("%w: unknown category %q", domain.ErrValidation, in.Category)
	case in.Price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	case in.DiscountPrice != nil && in.DiscountPrice.IsNegative():
		return fmt.Errorf("%w: discount price must not be negative", domain.ErrValidation)
	case in.Stock < 0:
		return fmt.Errorf("%w: stock must not be negative", domain.ErrValidation)
	case utf8.RuneCountInString(short) > 200:
		return fmt.Errorf("%w: short description is limited to 200 characters", domain.ErrValidation)
	}

	p.Name = name
	p.Description = description
	p.ShortDescription = short
	p.Price = in.Price.Round(2)
	p.DiscountPrice = nil
	if in.DiscountPrice != nil && in.DiscountPrice.IsPositive() {
		d := in.DiscountPrice.Round(2)
		p.DiscountPrice = &d
	}
	p.Category = in.Category
	p.Subject = strings.TrimSpace(in.Subject)
	p.ClassLevel = strings.TrimSpace(in.ClassLevel)
	p.Author = strings.TrimSpace(in.Author)
	p.Stock = in.Stock
	p.Featured = in.Featured
	return nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func without(images, remove []string) []string {
	drop := make(map[string]struct{}, len(remove))
	for _, r := range remove {
		drop[strings.TrimSpace(r)] = struct{}{}
	}
	out := make([]string, 0, len(images))
	for _, img := range images {
		if _, ok := drop[img]; !ok {
			out = append(out, img)
		}
	}
	return out
}

func nonNil(p []domain.Product) []domain.Product {
	if p == nil {
		return []domain.Product{}
	}
	return p
}
