package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/defense-portal-api/internal/models"
	"github.com/noah-isme/defense-portal-api/internal/service"
	appErrors "github.com/noah-isme/defense-portal-api/pkg/errors"
	"github.com/noah-isme/defense-portal-api/pkg/response"
)

// ContextSessionKey is the gin context key storing staff session claims.
const ContextSessionKey = "staffSession"

// Staff protects routes by requiring a valid staff session token.
func Staff(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, claims)
		c.Next()
	}
}

// RequireRole restricts a staff route to the listed roles. Must run after
// Staff.
func RequireRole(roles ...models.StaffRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := SessionFromContext(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "insufficient role"))
		c.Abort()
	}
}

// SessionFromContext returns the claims attached by Staff, or nil.
func SessionFromContext(c *gin.Context) *models.SessionClaims {
	value, ok := c.Get(ContextSessionKey)
	if !ok {
		return nil
	}
	claims, ok := value.(*models.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}
