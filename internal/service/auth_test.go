package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/paperman/internal/identity"
	"github.com/Skotchmaster/paperman/internal/repo"
	"github.com/Skotchmaster/paperman/pkg/tokens"
)

func newAuth(t *testing.T) (*AuthService, *repo.GormRepo) {
	t.Helper()
	r := newRepo(t)
	return &AuthService{
		Repo:          r,
		Identity:      identity.NewLocal(r),
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    time.Hour,
	}, r
}

func TestEnsureAdminAndLogin(t *testing.T) {
	t.Parallel()
	svc, _ := newAuth(t)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "Admin@Paperman.test", "admin-pass")
	require.NoError(t, err)
	assert.True(t, created)
	created, err = svc.EnsureAdmin(ctx, "admin@paperman.test", "admin-pass")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = svc.Login(ctx, "", "")
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Login(ctx, "admin@paperman.test", "wrong-pass")
	require.ErrorIs(t, err, ErrUnauthorized)

	res, err := svc.Login(ctx, "ADMIN@paperman.test", "admin-pass")
	require.NoError(t, err)
	assert.True(t, res.IsAdmin)
	assert.Equal(t, "admin", res.User.Username)

	claims, err := tokens.AccessClaimsFromToken(res.Access.Token, svc.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID.String(), claims.Subject)
	assert.Equal(t, "admin", claims.Role)

	me, err := svc.Me(ctx, claims.Subject)
	require.NoError(t, err)
	assert.Equal(t, "admin@paperman.test", me.Email)
}

func TestRefreshRotatesAndLogoutRevokes(t *testing.T) {
	t.Parallel()
	svc, _ := newAuth(t)
	ctx := context.Background()

	_, err := svc.EnsureAdmin(ctx, "admin@paperman.test", "admin-pass")
	require.NoError(t, err)
	login, err := svc.Login(ctx, "admin@paperman.test", "admin-pass")
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, login.Refresh.Token)
	require.NoError(t, err)
	assert.NotEqual(t, login.Refresh.JTI, next.Refresh.JTI)

	_, err = svc.Refresh(ctx, login.Refresh.Token)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Refresh(ctx, "garbage")
	require.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, svc.Logout(ctx, next.Refresh.Token))
	_, err = svc.Refresh(ctx, next.Refresh.Token)
	require.ErrorIs(t, err, ErrUnauthorized)

	n, err := svc.PurgeTokens(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestEnsureAdminSkipsWithoutEmail(t *testing.T) {
	t.Parallel()
	svc, _ := newAuth(t)

	created, err := svc.EnsureAdmin(context.Background(), "", "")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = svc.EnsureAdmin(context.Background(), "a@b.test", "short")
	require.Error(t, err)
}
