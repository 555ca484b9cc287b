// Package seed loads a demo catalog for manual testing.
package seed

import (
	"context"
	"fmt"

	"garud-store/internal/domain"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type productSeed struct {
	Name        string
	Short       string
	Description string
	Price       string
	Discount    string
	Category    string
	Subject     string
	ClassLevel  string
	Author      string
	Stock       int
	Featured    bool
}

var demoCatalog = []productSeed{
	{
		Name:        "Garud Physics Module - Class 11",
		Short:       "Chapter-wise theory with solved examples",
		Description: "Complete physics module covering mechanics, thermodynamics and waves with practice sets after every chapter.",
		Price:       "899", Discount: "749",
		Category: "Study Material", Subject: "Physics", ClassLevel: "Class 11", Author: "Garud Faculty",
		Stock: 40, Featured: true,
	},
	{
		Name:        "Garud Chemistry Module - Class 12",
		Short:       "Organic, inorganic and physical chemistry",
		Description: "Concise notes and exercises for the class 12 board syllabus with previous year questions.",
		Price:       "949",
		Category:    "Study Material", Subject: "Chemistry", ClassLevel: "Class 12", Author: "Garud Faculty",
		Stock: 35, Featured: true,
	},
	{
		Name:        "JEE Main Full Test Series",
		Short:       "15 full-length mock tests",
		Description: "Fifteen computer based mock tests with detailed solutions and all-India ranking.",
		Price:       "1999", Discount: "1499",
		Category: "Test Series", Subject: "PCM", ClassLevel: "JEE",
		Stock: 500, Featured: true,
	},
	{
		Name:        "NEET Biology Handwritten Notes",
		Short:       "Scanned topper notes",
		Description: "Handwritten biology notes covering the full NEET syllabus with diagrams.",
		Price:       "299",
		Category:    "Notes", Subject: "Biology", ClassLevel: "NEET", Author: "Garud Toppers",
		Stock: 120,
	},
	{
		Name:        "Mathematics Formula Handbook",
		Short:       "Every formula from class 9 to 12",
		Description: "Pocket handbook of algebra, calculus, geometry and statistics formulae.",
		Price:       "199",
		Category:    "Books", Subject: "Mathematics", ClassLevel: "Class 9-12", Author: "A. K. Verma",
		Stock: 80,
	},
	{
		Name:        "Board Exam Combo - Class 10",
		Short:       "Science and maths modules with sample papers",
		Description: "Combo pack of science and mathematics modules plus ten sample papers.",
		Price:       "1499", Discount: "1199",
		Category: "Combo Packs", ClassLevel: "Class 10",
		Stock: 25, Featured: true,
	},
}

// Apply upserts the demo catalog. Running it again refreshes the same rows.
func Apply(ctx context.Context, repo ProductWriter, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, s := range demoCatalog {
		p, err := s.product()
		if err != nil {
			return 0, fmt.Errorf("demo product %q: %w", s.Name, err)
		}
		if _, err := repo.Upsert(ctx, p); err != nil {
			return 0, fmt.Errorf("upsert product %q: %w", s.Name, err)
		}
	}
	logger.Info("demo catalog seeded", zap.Int("products", len(demoCatalog)))
	return len(demoCatalog), nil
}

func (s productSeed) product() (domain.Product, error) {
	price, err := decimal.NewFromString(s.Price)
	if err != nil {
		return domain.Product{}, err
	}
	p := domain.Product{
		Name:             s.Name,
		Description:      s.Description,
		ShortDescription: s.Short,
		Price:            price,
		Category:         s.Category,
		Subject:          s.Subject,
		ClassLevel:       s.ClassLevel,
		Author:           s.Author,
		Stock:            s.Stock,
		Featured:         s.Featured,
		IsActive:         true,
		Images:           []string{},
	}
	if s.Discount != "" {
		d, err := decimal.NewFromString(s.Discount)
		if err != nil {
			return domain.Product{}, err
		}
		p.DiscountPrice = &d
	}
	return p, nil
}

// Fake upserts n generated products. A zero seed picks a random one.
func Fake(ctx context.Context, repo ProductWriter, n int, seed uint64, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := gofakeit.New(seed)
	for i := 0; i < n; i++ {
		p := fakeProduct(f, i)
		if _, err := repo.Upsert(ctx, p); err != nil {
			return i, fmt.Errorf("upsert fake product %q: %w", p.Name, err)
		}
	}
	logger.Info("fake products seeded", zap.Int("products", n))
	return n, nil
}

func fakeProduct(f *gofakeit.Faker, i int) domain.Product {
	price := decimal.NewFromFloat(f.Price(49, 2999)).Round(0)
	p := domain.Product{
		// index suffix keeps names unique across one run
		Name:             fmt.Sprintf("%s #%d", f.BookTitle(), i+1),
		Description:      f.Paragraph(2, 3, 12, " "),
		ShortDescription: f.Sentence(8),
		Price:            price,
		Category:         f.RandomString(domain.Categories),
		Subject:          f.RandomString([]string{"Physics", "Chemistry", "Mathematics", "Biology", "English"}),
		ClassLevel:       f.RandomString([]string{"Class 9", "Class 10", "Class 11", "Class 12", "JEE", "NEET"}),
		Author:           f.BookAuthor(),
		Stock:            f.Number(0, 200),
		Featured:         f.Number(1, 10) == 1,
		IsActive:         true,
		Images:           []string{},
	}
	if f.Bool() {
		d := price.Mul(decimal.RequireFromString("0.8")).Round(0)
		if d.IsPositive() {
			p.DiscountPrice = &d
		}
	}
	if len([]rune(p.ShortDescription)) > 200 {
		p.ShortDescription = string([]rune(p.ShortDescription)[:200])
	}
	return p
}
