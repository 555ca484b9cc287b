package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"garud-store/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const columns = `id::text, user_id::text, items, total_amount,
       ship_fullname, ship_phone, ship_street, ship_city, ship_state, ship_pincode,
       gateway_order_id, gateway_payment_id, gateway_signature, payment_method,
       status, payment_status, created_at, updated_at`

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("order_repo")}
}

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}
	method := o.PaymentInfo.Method
	if method == "" {
		method = domain.PaymentMethodGateway
	}
	status, paymentStatus := o.Status, o.PaymentStatus
	if status == "" {
		status = domain.OrderPending
	}
	if paymentStatus == "" {
		paymentStatus = domain.PaymentPending
	}

	const q = `
INSERT INTO orders (
    user_id, items, total_amount,
    ship_fullname, ship_phone, ship_street, ship_city, ship_state, ship_pincode,
    gateway_order_id, payment_method, status, payment_status
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING ` + columns
	sa := o.ShippingAddress
	created, err := scanOrder(r.pool.QueryRow(ctx, q,
		o.UserID, items, o.TotalAmount,
		sa.Fullname, sa.Phone, sa.Street, sa.City, sa.State, sa.Pincode,
		o.PaymentInfo.GatewayOrderID, method, string(status), string(paymentStatus),
	))
	if err != nil {
		r.logger.Error("create failed", zap.String("user_id", o.UserID), zap.Error(err))
		return nil, err
	}
	r.logger.Info("created",
		zap.String("id", created.ID),
		zap.String("user_id", created.UserID),
		zap.String("gateway_order_id", created.PaymentInfo.GatewayOrderID),
		zap.String("total", created.TotalAmount.StringFixed(2)),
	)
	return created, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return scanOrder(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM orders WHERE id = $1`, id))
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	o, err := scanOrder(r.pool.QueryRow(ctx, `
UPDATE orders SET status = $2, updated_at = now()
WHERE id = $1
RETURNING `+columns, id, string(status)))
	if err != nil {
		return nil, err
	}
	r.logger.Info("status updated", zap.String("id", id), zap.String("status", string(status)))
	return o, nil
}

func (r *postgresRepo) UpdatePaymentOutcome(ctx context.Context, id string, outcome domain.PaymentOutcome) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	o, err := updatePaymentOutcome(ctx, r.pool, id, outcome)
	if err != nil {
		return nil, err
	}
	r.logger.Info("payment outcome recorded",
		zap.String("id", id),
		zap.String("from", string(outcome.From)),
		zap.String("to", string(outcome.To)),
	)
	return o, nil
}

func (r *postgresRepo) Finalize(ctx context.Context, id string, outcome domain.PaymentOutcome, policy domain.StockPolicy) (*FinalizeResult, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	o, err := updatePaymentOutcome(ctx, tx, id, outcome)
	if err != nil {
		return nil, err
	}

	res := &FinalizeResult{}
	for _, item := range o.Items {
		short, err := decrementStock(ctx, tx, item, policy)
		if err != nil {
			return nil, fmt.Errorf("decrement stock product_id=%s: %w", item.ProductID, err)
		}
		if short {
			res.StockShortfalls = append(res.StockShortfalls, item.ProductID)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, o.UserID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	res.Order = *o
	r.logger.Info("order finalized",
		zap.String("id", id),
		zap.String("payment_status", string(o.PaymentStatus)),
		zap.Int("items", len(o.Items)),
		zap.Strings("stock_shortfalls", res.StockShortfalls),
	)
	return res, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+columns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id`, userID)
}

func (r *postgresRepo) ListRecent(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		return r.list(ctx, `SELECT `+columns+` FROM orders ORDER BY created_at DESC, id`)
	}
	return r.list(ctx, `SELECT `+columns+` FROM orders ORDER BY created_at DESC, id LIMIT $1`, limit)
}

func (r *postgresRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&n)
	return n, err
}

func (r *postgresRepo) AggregateRevenue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE payment_status = $1`, string(domain.PaymentPaid)).Scan(&total)
	return total, err
}

func (r *postgresRepo) list(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("list failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// updatePaymentOutcome is the single statement that moves payment_status.
func updatePaymentOutcome(ctx context.Context, q querier, id string, outcome domain.PaymentOutcome) (*domain.Order, error) {
	var status *string
	if outcome.Status != nil {
		s := string(*outcome.Status)
		status = &s
	}
	o, err := scanOrder(q.QueryRow(ctx, `
UPDATE orders SET
    payment_status = $2,
    status = COALESCE($3, status),
    gateway_payment_id = COALESCE($4, gateway_payment_id),
    gateway_signature = COALESCE($5, gateway_signature),
    updated_at = now()
WHERE id = $1 AND payment_status = $6
RETURNING `+columns,
		id, string(outcome.To), status, outcome.GatewayPaymentID, outcome.GatewaySignature, string(outcome.From),
	))
	if !errors.Is(err, domain.ErrNotFound) {
		return o, err
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrAlreadyFinalized
	}
	return nil, domain.ErrNotFound
}

// decrementStock reports whether the product could not cover item.Quantity.
// Missing products are skipped.
func decrementStock(ctx context.Context, q querier, item domain.LineItem, policy domain.StockPolicy) (bool, error) {
	if _, err := uuid.Parse(item.ProductID); err != nil {
		return false, nil
	}
	if policy != domain.StockStrict {
		_, err := q.Exec(ctx, `UPDATE products SET stock = stock - $1, updated_at = now() WHERE id = $2`, item.Quantity, item.ProductID)
		return false, err
	}

	cmd, err := q.Exec(ctx, `UPDATE products SET stock = stock - $1, updated_at = now() WHERE id = $2 AND stock >= $1`, item.Quantity, item.ProductID)
	if err != nil {
		return false, err
	}
	if cmd.RowsAffected() > 0 {
		return false, nil
	}
	cmd, err = q.Exec(ctx, `UPDATE products SET stock = 0, updated_at = now() WHERE id = $1`, item.ProductID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o             domain.Order
		items         []byte
		status        string
		paymentStatus string
	)
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&items,
		&o.TotalAmount,
		&o.ShippingAddress.Fullname,
		&o.ShippingAddress.Phone,
		&o.ShippingAddress.Street,
		&o.ShippingAddress.City,
		&o.ShippingAddress.State,
		&o.ShippingAddress.Pincode,
		&o.PaymentInfo.GatewayOrderID,
		&o.PaymentInfo.GatewayPaymentID,
		&o.PaymentInfo.GatewaySignature,
		&o.PaymentInfo.Method,
		&status,
		&paymentStatus,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode items order_id=%s: %w", o.ID, err)
	}
	o.Status = domain.OrderStatus(status)
	o.PaymentStatus = domain.PaymentStatus(paymentStatus)
	return &o, nil
}
