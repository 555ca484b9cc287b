package user

import (
	"context"
	"errors"
	"strings"

	"garud-store/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const columns = `id::text, fullname, email, username, phone, role, password_hash, street, city, state, pincode, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("user_repo")}
}

func (r *postgresRepo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	role := u.Role
	if role == "" {
		role = domain.RoleUser
	}
	const q = `
INSERT INTO users (fullname, email, username, phone, role, password_hash, street, city, state, pincode)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + columns
	return r.scanUser(r.pool.QueryRow(ctx, q,
		u.Fullname,
		strings.ToLower(u.Email),
		u.Username,
		u.Phone,
		string(role),
		u.PasswordHash,
		u.Address.Street,
		u.Address.City,
		u.Address.State,
		u.Address.Pincode,
	))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return r.scanUser(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM users WHERE id = $1`, id))
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM users WHERE lower(email) = lower($1) LIMIT 1`, email))
}

func (r *postgresRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM users WHERE username = $1 LIMIT 1`, username))
}

func (r *postgresRepo) UpdateProfile(ctx context.Context, u domain.User) (*domain.User, error) {
	if _, err := uuid.Parse(u.ID); err != nil {
		return nil, domain.ErrNotFound
	}
	const q = `
UPDATE users SET fullname = $1, email = $2, phone = $3, street = $4, city = $5, state = $6, pincode = $7
WHERE id = $8
RETURNING ` + columns
	return r.scanUser(r.pool.QueryRow(ctx, q,
		u.Fullname,
		strings.ToLower(u.Email),
		u.Phone,
		u.Address.Street,
		u.Address.City,
		u.Address.State,
		u.Address.Pincode,
		u.ID,
	))
}

func (r *postgresRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n)
	return n, err
}

func (r *postgresRepo) CountByRole(ctx context.Context, role domain.Role) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users WHERE role = $1`, string(role)).Scan(&n)
	return n, err
}

func (r *postgresRepo) scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := row.Scan(
		&u.ID,
		&u.Fullname,
		&u.Email,
		&u.Username,
		&u.Phone,
		&role,
		&u.PasswordHash,
		&u.Address.Street,
		&u.Address.City,
		&u.Address.State,
		&u.Address.Pincode,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Error("scan failed", zap.Error(err))
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}
