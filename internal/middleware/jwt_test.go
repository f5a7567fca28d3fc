package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/defense-portal-api/internal/models"
	"github.com/noah-isme/defense-portal-api/internal/service"
	"github.com/noah-isme/defense-portal-api/pkg/config"
)

func newAuthedRouter(t *testing.T) (*gin.Engine, string, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	adminHash, err := bcrypt.GenerateFromPassword([]byte("admin-secret"), bcrypt.MinCost)
	require.NoError(t, err)
	libraryHash, err := bcrypt.GenerateFromPassword([]byte("library-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	auth := service.NewAuthService(config.AuthConfig{
		JWTSecret:           "test-secret",
		TokenExpiration:     time.Hour,
		AdminPasswordHash:   string(adminHash),
		LibraryPasswordHash: string(libraryHash),
	}, nil, nil, nil)

	adminLogin, err := auth.Login(context.Background(), models.LoginRequest{Role: models.RoleAdmin, Password: "admin-secret"})
	require.NoError(t, err)
	libraryLogin, err := auth.Login(context.Background(), models.LoginRequest{Role: models.RoleLibrary, Password: "library-secret"})
	require.NoError(t, err)

	r := gin.New()
	protected := r.Group("/", Staff(auth))
	protected.GET("/staff", func(c *gin.Context) {
		claims := SessionFromContext(c)
		c.JSON(http.StatusOK, gin.H{"role": claims.Role})
	})
	protected.GET("/admin-only", RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, adminLogin.Token, libraryLogin.Token
}

func TestStaffRejectsMissingToken(t *testing.T) {
	r, _, _ := newAuthedRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/staff", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStaffRejectsMalformedHeader(t *testing.T) {
	r, adminToken, _ := newAuthedRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/staff", nil)
	req.Header.Set("Authorization", adminToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStaffAcceptsValidToken(t *testing.T) {
	r, adminToken, _ := newAuthedRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/staff", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin")
}

func TestRequireRoleBlocksOtherRole(t *testing.T) {
	r, adminToken, libraryToken := newAuthedRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+libraryToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
