package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/defense-portal-api/internal/models"
	"github.com/noah-isme/defense-portal-api/pkg/config"
	appErrors "github.com/noah-isme/defense-portal-api/pkg/errors"
)

func newAuthFixture(t *testing.T, clock Clock) *AuthService {
	t.Helper()
	adminHash, err := bcrypt.GenerateFromPassword([]byte("admin-secret"), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := config.AuthConfig{
		JWTSecret:         "test-secret",
		TokenExpiration:   time.Hour,
		AdminPasswordHash: string(adminHash),
	}
	return NewAuthService(cfg, nil, nil, clock)
}

func TestLoginIssuesRoleToken(t *testing.T) {
	svc := newAuthFixture(t, fixedClock("2025-03-10T08:00:00Z"))

	resp, err := svc.Login(context.Background(), models.LoginRequest{Role: models.RoleAdmin, Password: "admin-secret"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, resp.Role)
	assert.NotEmpty(t, resp.Token)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "defense-portal-api", claims.Issuer)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newAuthFixture(t, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Role: models.RoleAdmin, Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnconfiguredRole(t *testing.T) {
	// No library hash configured in the fixture.
	svc := newAuthFixture(t, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Role: models.RoleLibrary, Password: "anything"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestLoginUnknownRole(t *testing.T) {
	svc := newAuthFixture(t, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Role: "superuser", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenExpired(t *testing.T) {
	issued := fixedClock("2025-03-10T08:00:00Z")
	svc := newAuthFixture(t, issued)
	resp, err := svc.Login(context.Background(), models.LoginRequest{Role: models.RoleAdmin, Password: "admin-secret"})
	require.NoError(t, err)

	later := newAuthFixture(t, fixedClock("2025-03-10T10:00:00Z"))
	_, err = later.ValidateToken(resp.Token)
	require.Error(t, err)
}
