package service_test

import (
	"context"
	"testing"

	"github.com/otoservis/garage-api/internal/auth"
	"github.com/otoservis/garage-api/internal/config"
	"github.com/otoservis/garage-api/internal/domain"
	"github.com/otoservis/garage-api/internal/repository"
	"github.com/otoservis/garage-api/internal/service"
	"github.com/otoservis/garage-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthService(t *testing.T) *service.AuthService {
	t.Helper()
	db := testutil.SetupTestDB(t)
	cfg := &config.AuthConfig{
		JWTSecret:              "test-secret-key",
		TokenTTLMinutes:        60,
		BootstrapAdminPassword: "admin123",
	}
	return service.NewAuthService(
		repository.NewUserRepository(db),
		auth.NewTokenManager(cfg),
		cfg,
		zap.NewNop(),
	)
}

func TestBootstrapAdminAndLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureBootstrapAdmin(ctx))

	// Second run is a no-op
	require.NoError(t, svc.EnsureBootstrapAdmin(ctx))
	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, domain.RoleAdmin, users[0].Role)

	resp, err := svc.Login(ctx, &domain.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureBootstrapAdmin(ctx))

	_, err := svc.Login(ctx, &domain.LoginRequest{Username: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &domain.LoginRequest{Username: "nobody", Password: "whatever"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestRegisterDefaultsToTechnician(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, &domain.RegisterRequest{
		Username: "usta1",
		FullName: "Kemal Usta",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTechnician, user.Role)
	assert.True(t, user.IsActive)

	_, err = svc.Register(ctx, &domain.RegisterRequest{
		Username: "usta1",
		FullName: "Someone Else",
		Password: "secret2",
	})
	assert.ErrorIs(t, err, service.ErrDuplicateUsername)
}

func TestChangePassword(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, &domain.RegisterRequest{
		Username: "usta2",
		FullName: "Veli Usta",
		Password: "oldpass",
	})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, &domain.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "newpass",
	})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, user.ID, &domain.ChangePasswordRequest{
		CurrentPassword: "oldpass",
		NewPassword:     "newpass",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &domain.LoginRequest{Username: "usta2", Password: "newpass"})
	assert.NoError(t, err)
}
