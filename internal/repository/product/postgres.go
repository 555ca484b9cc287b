package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"garud-store/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Columns is the select list understood by Scan.
const Columns = `id::text, name, description, short_description, price, discount_price, category, images,
       subject, class_level, author, stock, featured, is_active, ratings_average, ratings_count, created_at, updated_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("product_repo")}
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	p, err := Scan(r.pool.QueryRow(ctx, `SELECT `+Columns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			r.logger.Error("get failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Find(ctx context.Context, f Filter, sort Sort, offset, limit int) ([]domain.Product, error) {
	where, args := whereClause(f)
	q := `SELECT ` + Columns + ` FROM products` + where + ` ORDER BY ` + orderBy(sort)
	if limit > 0 {
		args = append(args, limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("find failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := Scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("find rows failed", zap.Error(err))
		return nil, err
	}
	r.logger.Debug("find", zap.String("category", f.Category), zap.String("search", f.Search), zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) Count(ctx context.Context, f Filter) (int, error) {
	where, args := whereClause(f)
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products`+where, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *postgresRepo) CountAll(ctx context.Context) (int, error) {
	return r.Count(ctx, Filter{})
}

func (r *postgresRepo) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT category FROM products WHERE is_active ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (
    name, description, short_description, price, discount_price, category, images,
    subject, class_level, author, stock, featured, is_active, ratings_average, ratings_count
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING ` + Columns
	created, err := Scan(r.pool.QueryRow(ctx, q, writeArgs(p)...))
	if err != nil {
		r.logger.Error("create failed", zap.String("name", p.Name), zap.Error(err))
		return nil, err
	}
	r.logger.Info("created", zap.String("id", created.ID), zap.String("name", created.Name))
	return created, nil
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if _, err := uuid.Parse(p.ID); err != nil {
		return nil, domain.ErrNotFound
	}
	const q = `
UPDATE products SET
    name = $1, description = $2, short_description = $3, price = $4, discount_price = $5,
    category = $6, images = $7, subject = $8, class_level = $9, author = $10, stock = $11,
    featured = $12, is_active = $13, ratings_average = $14, ratings_count = $15, updated_at = now()
WHERE id = $16
RETURNING ` + Columns
	updated, err := Scan(r.pool.QueryRow(ctx, q, append(writeArgs(p), p.ID)...))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			r.logger.Error("update failed", zap.String("id", p.ID), zap.Error(err))
		}
		return nil, err
	}
	return updated, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Info("deleted", zap.String("id", id))
	return nil
}

func (r *postgresRepo) ToggleActive(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return Scan(r.pool.QueryRow(ctx, `
UPDATE products SET is_active = NOT is_active, updated_at = now()
WHERE id = $1
RETURNING `+Columns, id))
}

func (r *postgresRepo) UpdateStockAtomic(ctx context.Context, id string, delta int) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `UPDATE products SET stock = stock + $1, updated_at = now() WHERE id = $2`, delta, id)
	if err != nil {
		r.logger.Error("update stock failed", zap.String("id", id), zap.Int("delta", delta), zap.Error(err))
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (
    name, description, short_description, price, discount_price, category, images,
    subject, class_level, author, stock, featured, is_active, ratings_average, ratings_count
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
ON CONFLICT (name) DO UPDATE SET
    description = EXCLUDED.description,
    short_description = EXCLUDED.short_description,
    price = EXCLUDED.price,
    discount_price = EXCLUDED.discount_price,
    category = EXCLUDED.category,
    images = EXCLUDED.images,
    subject = EXCLUDED.subject,
    class_level = EXCLUDED.class_level,
    author = EXCLUDED.author,
    stock = EXCLUDED.stock,
    featured = EXCLUDED.featured,
    is_active = EXCLUDED.is_active,
    updated_at = now()
RETURNING ` + Columns
	res, err := Scan(r.pool.QueryRow(ctx, q, writeArgs(p)...))
	if err != nil {
		r.logger.Error("upsert failed", zap.String("name", p.Name), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("upserted", zap.String("id", res.ID), zap.String("name", res.Name))
	return res, nil
}

func whereClause(f Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.ActiveOnly {
		conds = append(conds, "is_active")
	}
	if f.Featured {
		conds = append(conds, "featured")
	}
	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(name ILIKE $%[1]d OR description ILIKE $%[1]d OR subject ILIKE $%[1]d OR author ILIKE $%[1]d)", n))
	}
	if _, err := uuid.Parse(f.ExcludeID); err == nil {
		args = append(args, f.ExcludeID)
		conds = append(conds, fmt.Sprintf("id <> $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderBy(s Sort) string {
	switch s {
	case SortPriceLow:
		return "price ASC, created_at DESC"
	case SortPriceHigh:
		return "price DESC, created_at DESC"
	case SortName:
		return "name ASC"
	case SortPopular:
		return "ratings_average DESC, ratings_count DESC, created_at DESC"
	default:
		return "created_at DESC, id"
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func writeArgs(p domain.Product) []any {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	discount := decimal.NullDecimal{}
	if p.DiscountPrice != nil {
		discount = decimal.NullDecimal{Decimal: *p.DiscountPrice, Valid: true}
	}
	return []any{
		p.Name, p.Description, p.ShortDescription, p.Price, discount, p.Category, images,
		p.Subject, p.ClassLevel, p.Author, p.Stock, p.Featured, p.IsActive, p.Ratings.Average, p.Ratings.Count,
	}
}

// Scan reads one row selected with Columns. extra receives any columns
// selected after Columns.
func Scan(row pgx.Row, extra ...any) (*domain.Product, error) {
	var (
		p        domain.Product
		discount decimal.NullDecimal
	)
	dest := []any{
		&p.ID,
		&p.Name,
		&p.Description,
		&p.ShortDescription,
		&p.Price,
		&discount,
		&p.Category,
		&p.Images,
		&p.Subject,
		&p.ClassLevel,
		&p.Author,
		&p.Stock,
		&p.Featured,
		&p.IsActive,
		&p.Ratings.Average,
		&p.Ratings.Count,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	if discount.Valid {
		d := discount.Decimal
		p.DiscountPrice = &d
	}
	return &p, nil
}
