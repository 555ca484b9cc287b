// Package pgtest provides a migrated Postgres pool for integration tests.
package pgtest

import (
	"context"
	"os"
	"testing"
	"time"

	"garud-store/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Pool returns a pool against TEST_DB_DSN, or against a throwaway postgres
// container when the variable is unset. Migrations are applied and all
// tables truncated. Skipped under -short.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in -short mode")
	}
	ctx := context.Background()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		dsn = startContainer(ctx, t)
	}

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err, "connect db")
	t.Cleanup(pool.Close)

	require.NoError(t, migrate.Apply(ctx, pool), "apply migrations")
	Reset(t, pool)
	return pool
}

// Reset empties every application table.
func Reset(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `TRUNCATE orders, cart_items, tokens, products, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err, "truncate tables")
}

// InsertUser creates a bare user row and returns its id.
func InsertUser(t *testing.T, pool *pgxpool.Pool, username string) string {
	t.Helper()
	var id string
	err := pool.QueryRow(context.Background(), `
INSERT INTO users (fullname, email, username, password_hash)
VALUES ($1, $2, $1, 'x')
RETURNING id::text
`, username, username+"@example.com").Scan(&id)
	require.NoError(t, err, "insert user")
	return id
}

// InsertProduct creates an active product and returns its id.
func InsertProduct(t *testing.T, pool *pgxpool.Pool, name, price string, stock int) string {
	t.Helper()
	var id string
	err := pool.QueryRow(context.Background(), `
INSERT INTO products (name, description, price, category, stock)
VALUES ($1, 'test product', $2::numeric, 'Books', $3)
RETURNING id::text
`, name, price, stock).Scan(&id)
	require.NoError(t, err, "insert product")
	return id
}

func startContainer(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("garud_test"),
		postgres.WithUsername("garud"),
		postgres.WithPassword("garud"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "container dsn")
	return dsn
}
