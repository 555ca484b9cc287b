package cart

import (
	"context"

	"garud-store/internal/domain"
	"garud-store/internal/repository/product"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("cart_repo")}
}

func (r *postgresRepo) Lines(ctx context.Context, userID string) ([]domain.CartLine, error) {
	if !validIDs(userID) {
		return nil, nil
	}
	q := `
SELECT ` + product.Columns + `, c.quantity
FROM cart_items c
JOIN products ON products.id = c.product_id
WHERE c.user_id = $1
ORDER BY c.added_at ASC, c.product_id
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		r.logger.Error("lines failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var qty int
		p, err := product.Scan(rows, &qty)
		if err != nil {
			return nil, err
		}
		lines = append(lines, domain.CartLine{Product: *p, Quantity: qty})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *postgresRepo) Entries(ctx context.Context, userID string) ([]domain.CartEntry, error) {
	if !validIDs(userID) {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
SELECT product_id::text, quantity
FROM cart_items
WHERE user_id = $1
ORDER BY added_at ASC, product_id
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CartEntry, error) {
		var e domain.CartEntry
		err := row.Scan(&e.ProductID, &e.Quantity)
		return e, err
	})
}

func (r *postgresRepo) Add(ctx context.Context, userID, productID string, quantity int) error {
	if !validIDs(userID, productID) {
		return domain.ErrNotFound
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO cart_items (user_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, product_id) DO UPDATE
SET quantity = cart_items.quantity + EXCLUDED.quantity
`, userID, productID, quantity)
	if err != nil {
		r.logger.Error("add failed", zap.String("user_id", userID), zap.String("product_id", productID), zap.Error(err))
	}
	return err
}

func (r *postgresRepo) SetQuantity(ctx context.Context, userID, productID string, quantity int) error {
	if quantity <= 0 {
		return r.Remove(ctx, userID, productID)
	}
	if !validIDs(userID, productID) {
		return nil
	}
	_, err := r.pool.Exec(ctx, `UPDATE cart_items SET quantity = $3 WHERE user_id = $1 AND product_id = $2`, userID, productID, quantity)
	return err
}

func (r *postgresRepo) Remove(ctx context.Context, userID, productID string) error {
	if !validIDs(userID, productID) {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	return err
}

func (r *postgresRepo) SetCart(ctx context.Context, userID string, entries []domain.CartEntry) error {
	if !validIDs(userID) {
		return domain.ErrNotFound
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return err
	}
	for _, e := range entries {
		if e.Quantity <= 0 || !validIDs(e.ProductID) {
			continue
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO cart_items (user_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, product_id) DO UPDATE
SET quantity = cart_items.quantity + EXCLUDED.quantity
`, userID, e.ProductID, e.Quantity); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) Clear(ctx context.Context, userID string) error {
	if !validIDs(userID) {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}

func validIDs(ids ...string) bool {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return false
		}
	}
	return true
}
