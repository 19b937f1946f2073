package auth_test

import (
	"testing"
	"time"

	"github.com/otoservis/garage-api/internal/auth"
	"github.com/otoservis/garage-api/internal/config"
	"github.com/otoservis/garage-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *domain.User {
	return &domain.User{
		BaseModel: domain.BaseModel{ID: 42},
		Username:  "mehmet",
		FullName:  "Mehmet Usta",
		Role:      domain.RoleTechnician,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := auth.NewTokenManager(&config.AuthConfig{
		JWTSecret:       "test-secret-key",
		TokenTTLMinutes: 60,
	})

	signed, err := tokens.Issue(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	userCtx, err := tokens.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userCtx.UserID)
	assert.Equal(t, "mehmet", userCtx.Username)
	assert.Equal(t, "Mehmet Usta", userCtx.FullName)
	assert.Equal(t, domain.RoleTechnician, userCtx.Role)
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := auth.NewTokenManager(&config.AuthConfig{
		JWTSecret:       "secret-one",
		TokenTTLMinutes: 60,
	})
	verifier := auth.NewTokenManager(&config.AuthConfig{
		JWTSecret:       "secret-two",
		TokenTTLMinutes: 60,
	})

	signed, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = verifier.Validate(signed)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenExpired(t *testing.T) {
	tokens := auth.NewTokenManager(&config.AuthConfig{
		JWTSecret:       "test-secret-key",
		TokenTTLMinutes: 0,
	})

	signed, err := tokens.Issue(testUser())
	require.NoError(t, err)

	// TTL of zero means the token is already past its expiry
	time.Sleep(10 * time.Millisecond)

	_, err = tokens.Validate(signed)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestTokenGarbage(t *testing.T) {
	tokens := auth.NewTokenManager(&config.AuthConfig{
		JWTSecret:       "test-secret-key",
		TokenTTLMinutes: 60,
	})

	_, err := tokens.Validate("not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
