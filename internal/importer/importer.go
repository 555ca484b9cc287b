package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"garud-store/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog CSV files and inserts or updates products by name.
//
// Recognised headers: name, description, shortDescription, price,
// discountPrice, category, subject, classLevel, author, stock, featured,
// isActive and images (";"-separated). A row with an empty name and a
// non-empty images column adds images to the product above it.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
	logger      *zap.Logger
}

func NewCSVImporter(r io.Reader, repo ProductWriter, logger *zap.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
		logger:      logger.Named("importer"),
	}
}

// Run parses CSV rows and upserts one product per named row.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["name"]; !ok {
		return 0, errors.New("missing name column")
	}

	var (
		current  *domain.Product
		line     int
		imported int
	)
	flush := func() error {
		if current == nil {
			return nil
		}
		if err := i.save(ctx, current); err != nil {
			return err
		}
		imported++
		return nil
	}

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		name := pick(record, index, "name")
		images := splitImages(pick(record, index, "images"))
		if name == "" {
			// Continuation rows (images) belong to the current product.
			if current != nil {
				current.Images = append(current.Images, images...)
			}
			continue
		}

		if err := flush(); err != nil {
			return imported, err
		}
		p, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("row %d (%s): %w", line, name, err)
		}
		p.Images = images
		current = p
	}

	if err := flush(); err != nil {
		return imported, err
	}
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, p *domain.Product) error {
	if p.Images == nil {
		p.Images = []string{}
	}
	saved, err := i.productRepo.Upsert(ctx, *p)
	if err != nil {
		return fmt.Errorf("upsert product %q: %w", p.Name, err)
	}
	i.logger.Debug("product imported", zap.String("id", saved.ID), zap.String("name", saved.Name))
	return nil
}

func parseRow(record []string, index map[string]int) (*domain.Product, error) {
	p := &domain.Product{
		Name:             pick(record, index, "name"),
		Description:      pick(record, index, "description"),
		ShortDescription: pick(record, index, "shortDescription"),
		Category:         pick(record, index, "category"),
		Subject:          pick(record, index, "subject"),
		ClassLevel:       pick(record, index, "classLevel"),
		Author:           pick(record, index, "author"),
		IsActive:         true,
	}
	if p.Description == "" {
		return nil, errors.New("description is required")
	}
	if p.Category == "" {
		p.Category = "Other"
	}
	if !domain.ValidCategory(p.Category) {
		return nil, fmt.Errorf("unknown category %q", p.Category)
	}

	price, err := decimal.NewFromString(pick(record, index, "price"))
	if err != nil || price.IsNegative() {
		return nil, fmt.Errorf("invalid price %q", pick(record, index, "price"))
	}
	p.Price = price.Round(2)

	if raw := pick(record, index, "discountPrice"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil || d.IsNegative() {
			return nil, fmt.Errorf("invalid discount price %q", raw)
		}
		if d.IsPositive() {
			d = d.Round(2)
			p.DiscountPrice = &d
		}
	}

	if raw := pick(record, index, "stock"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid stock %q", raw)
		}
		p.Stock = n
	}
	p.Featured = truthy(pick(record, index, "featured"), false)
	p.IsActive = truthy(pick(record, index, "isActive"), true)
	return p, nil
}

func truthy(s string, def bool) bool {
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(strings.ToLower(s))
	if err != nil {
		return s == "yes" || s == "on"
	}
	return v
}

func splitImages(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
