package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mlima-cursos/matricula-api/internal/models"
	appErrors "github.com/mlima-cursos/matricula-api/pkg/errors"
	"github.com/mlima-cursos/matricula-api/pkg/response"
)

// Context keys populated by the auth middleware.
const (
	ContextUserIDKey = "auth_user_id"
	ContextRoleKey   = "auth_role"
	ContextEmailKey  = "auth_email"
)

type tokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWTAuth validates the bearer token and stores the claims in the request
// context.
func JWTAuth(auth tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextRoleKey, claims.Role)
		c.Set(ContextEmailKey, claims.Email)
		c.Next()
	}
}

// RequireRole rejects requests whose authenticated role does not match.
func RequireRole(role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextRoleKey)
		if !exists || value.(models.UserRole) != role {
			response.Error(c, appErrors.New("FORBIDDEN", 403, "insufficient permissions"))
			c.Abort()
			return
		}
		c.Next()
	}
}
