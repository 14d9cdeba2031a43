package memory

import (
	"context"
	"testing"

	"galaxy-airline/internal/domain/auth"
	xerrors "galaxy-airline/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository(t *testing.T) {
	r := NewAccountRepository()
	ctx := context.Background()

	acc := &auth.Account{ID: "a1", Email: "Demo@Galaxy.com", Name: "Demo User", Roles: []string{"user"}, Status: "active"}
	require.NoError(t, r.Create(ctx, acc))
	assert.False(t, acc.CreatedAt.IsZero())

	err := r.Create(ctx, &auth.Account{ID: "a2", Email: "demo@galaxy.com"})
	assert.ErrorIs(t, err, xerrors.ErrDuplicateEntry)

	got, err := r.FindByEmail(ctx, "DEMO@galaxy.com")
	require.NoError(t, err)
	assert.Equal(t, "a1", got.ID)

	got.Roles[0] = "admin"
	again, err := r.FindByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"user"}, again.Roles)

	require.NoError(t, r.UpdateLastLogin(ctx, "a1"))
	again, err = r.FindByID(ctx, "a1")
	require.NoError(t, err)
	assert.False(t, again.LastLogin.IsZero())

	_, err = r.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
	assert.ErrorIs(t, r.UpdateLastLogin(ctx, "missing"), xerrors.ErrNotFound)
}
