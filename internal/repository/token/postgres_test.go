package token

import (
	"context"
	"testing"
	"time"

	"garud-store/internal/domain"
	"garud-store/internal/testutil/pgtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_TokenLifecycle(t *testing.T) {
	ctx := context.Background()
	pool := pgtest.Pool(t)
	repo := NewPostgres(pool)
	userID := pgtest.InsertUser(t, pool, "tok")

	live := Token{Token: "live", UserID: userID, Kind: KindAccess, ExpiresAt: time.Now().Add(time.Hour)}
	stale := Token{Token: "stale", UserID: userID, Kind: KindAccess, ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, repo.Create(ctx, live))
	require.NoError(t, repo.Create(ctx, stale))
	assert.ErrorIs(t, repo.Create(ctx, live), domain.ErrAlreadyExists)

	got, err := repo.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, userID, got.UserID)

	n, err := repo.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, repo.Delete(ctx, "live"))
	_, err = repo.Get(ctx, "live")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "live"), domain.ErrNotFound)
}
