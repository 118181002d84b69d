package service

import (
	"context"
	"testing"

	"github.com/dushixiang/tradenote/internal/config"
	"github.com/dushixiang/tradenote/internal/models"
	"github.com/dushixiang/tradenote/internal/xe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthTestService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(zap.NewNop(), newTestDB(t), config.AuthConf{
		JWTSecret:     "test-secret",
		TokenTTLHours: 1,
	})
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newAuthTestService(t)

	info, err := svc.Register(ctx, RegisterRequest{
		Username: "trader",
		Email:    "Trader@Example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, info.Role)
	assert.Equal(t, "trader@example.com", info.Email)

	resp, err := svc.Login(ctx, LoginRequest{Username: "trader", Password: "secret-password"}, "127.0.0.1")
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, info.ID, claims.UserID)
	assert.Equal(t, "trader", claims.Username)
}

func TestLoginFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newAuthTestService(t)

	_, err := svc.Register(ctx, RegisterRequest{
		Username: "trader",
		Email:    "trader@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Username: "trader", Password: "wrong"}, "127.0.0.1")
	assert.ErrorIs(t, err, xe.ErrIncorrectPassword)

	_, err = svc.Login(ctx, LoginRequest{Username: "nobody", Password: "whatever"}, "127.0.0.1")
	assert.ErrorIs(t, err, xe.ErrIncorrectPassword)

	// 用户名占用
	_, err = svc.Register(ctx, RegisterRequest{
		Username: "trader",
		Email:    "other@example.com",
		Password: "secret-password",
	})
	assert.ErrorIs(t, err, xe.ErrAccountAlreadyUsed)
}

func TestChangePassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newAuthTestService(t)

	info, err := svc.Register(ctx, RegisterRequest{
		Username: "trader",
		Email:    "trader@example.com",
		Password: "old-password",
	})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, info.ID, "bad-old", "new-password-1")
	assert.ErrorIs(t, err, xe.ErrIncorrectOldPassword)

	require.NoError(t, svc.ChangePassword(ctx, info.ID, "old-password", "new-password-1"))

	_, err = svc.Login(ctx, LoginRequest{Username: "trader", Password: "new-password-1"}, "127.0.0.1")
	assert.NoError(t, err)
}

func TestInvalidTokenRejected(t *testing.T) {
	t.Parallel()
	svc := newAuthTestService(t)

	_, err := svc.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}

func TestNeedsSetup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newAuthTestService(t)

	needs, err := svc.NeedsSetup(ctx)
	require.NoError(t, err)
	assert.True(t, needs)

	require.NoError(t, svc.CreateUser(ctx, "admin", "admin@example.com", "admin-password", "Administrator", models.RoleAdmin))

	needs, err = svc.NeedsSetup(ctx)
	require.NoError(t, err)
	assert.False(t, needs)
}
