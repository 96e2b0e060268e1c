package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-queue-api/pkg/auth"
)

const (
	ContextStaffID   = "staffID"
	ContextStaffRole = "staffRole"
)

type AuthMiddleware struct {
	jwtService *auth.JWTService
}

func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// Authenticate verifies the bearer token and sets staff identity in context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "invalid authorization format"})
			c.Abort()
			return
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "invalid token"})
			c.Abort()
			return
		}

		c.Set(ContextStaffID, claims.StaffID.String())
		c.Set(ContextStaffRole, claims.Role)
		c.Next()
	}
}

// RequireRole gates an endpoint to one staff role.
func (m *AuthMiddleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextStaffRole) != role {
			c.JSON(http.StatusForbidden, gin.H{"status": "error", "message": "permission denied"})
			c.Abort()
			return
		}
		c.Next()
	}
}
