package user

import (
	"context"
	"testing"

	"garud-store/internal/domain"
	"garud-store/internal/testutil/pgtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgres(pgtest.Pool(t), nil)

	created, err := repo.Create(ctx, domain.User{
		Fullname:     "Asha Rao",
		Email:        "Asha@Example.com",
		Username:     "asha",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", created.Email)
	assert.Equal(t, domain.RoleUser, created.Role)

	byEmail, err := repo.GetByEmail(ctx, "ASHA@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byName, err := repo.GetByUsername(ctx, "asha")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.GetByID(ctx, "bogus")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgres_UniqueConstraints(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgres(pgtest.Pool(t), nil)

	_, err := repo.Create(ctx, domain.User{Fullname: "A", Email: "a@example.com", Username: "a", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, domain.User{Fullname: "B", Email: "A@EXAMPLE.COM", Username: "b", PasswordHash: "h"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = repo.Create(ctx, domain.User{Fullname: "C", Email: "c@example.com", Username: "a", PasswordHash: "h"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestPostgres_UpdateProfileAndCounts(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgres(pgtest.Pool(t), nil)

	u, err := repo.Create(ctx, domain.User{Fullname: "A", Email: "a@example.com", Username: "a", PasswordHash: "h"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.User{Fullname: "Root", Email: "root@example.com", Username: "root", PasswordHash: "h", Role: domain.RoleAdmin})
	require.NoError(t, err)

	u.Fullname = "A Updated"
	u.Address = domain.Address{City: "Pune", Pincode: "411001"}
	updated, err := repo.UpdateProfile(ctx, *u)
	require.NoError(t, err)
	assert.Equal(t, "A Updated", updated.Fullname)
	assert.Equal(t, "Pune", updated.Address.City)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	admins, err := repo.CountByRole(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 1, admins)
}
