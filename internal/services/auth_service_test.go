package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaziflow_backend/internal/auth"
	"kaziflow_backend/internal/config"
	"kaziflow_backend/internal/models"
	"kaziflow_backend/internal/services/dto"
	"kaziflow_backend/pkg/apperrors"
)

func init() {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTL = 60
	config.AppConfig = cfg
}

func TestRegister(t *testing.T) {
	profiles := newFakeProfileRepo()
	svc := NewAuthService(profiles)

	resp, err := svc.Register(&dto.RegisterRequest{
		Email:       "Writer@Example.com",
		Password:    "secret123",
		PhoneNumber: "0712345678",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	// Email is normalized, role defaults to writer, account starts inactive.
	assert.Equal(t, "writer@example.com", resp.Profile.Email)
	assert.Equal(t, models.UserRoleWriter, resp.Profile.Role)
	assert.False(t, resp.Profile.IsActive)
	assert.Equal(t, models.TierBasic, resp.Profile.Tier)

	claims, err := auth.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.Profile.ID, claims.UserID)
}

func TestRegister_AdminGrant(t *testing.T) {
	profiles := newFakeProfileRepo()
	require.NoError(t, profiles.SeedAdminGrants([]string{"boss@example.com"}))
	svc := NewAuthService(profiles)

	resp, err := svc.Register(&dto.RegisterRequest{Email: "boss@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleAdmin, resp.Profile.Role)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	profiles := newFakeProfileRepo()
	svc := NewAuthService(profiles)

	_, err := svc.Register(&dto.RegisterRequest{Email: "writer@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Register(&dto.RegisterRequest{Email: "writer@example.com", Password: "different1"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAlreadyExists))
}

func TestLogin(t *testing.T) {
	profiles := newFakeProfileRepo()
	svc := NewAuthService(profiles)

	_, err := svc.Register(&dto.RegisterRequest{Email: "writer@example.com", Password: "secret123"})
	require.NoError(t, err)

	resp, err := svc.Login(&dto.LoginRequest{Email: "writer@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Login(&dto.LoginRequest{Email: "writer@example.com", Password: "wrong-pass"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidCredentials))

	_, err = svc.Login(&dto.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidCredentials))
}

func TestRefreshRotatesToken(t *testing.T) {
	profiles := newFakeProfileRepo()
	svc := NewAuthService(profiles)

	registered, err := svc.Register(&dto.RegisterRequest{Email: "writer@example.com", Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(registered.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)

	// The old token is single-use.
	_, err = svc.Refresh(registered.RefreshToken)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidToken))
}

func TestLogoutRevokesTokens(t *testing.T) {
	profiles := newFakeProfileRepo()
	svc := NewAuthService(profiles)

	registered, err := svc.Register(&dto.RegisterRequest{Email: "writer@example.com", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(registered.Profile.ID))

	_, err = svc.Refresh(registered.RefreshToken)
	require.Error(t, err)
}
