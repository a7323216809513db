package middleware

import (
	"net/http"
	"strings"

	"egov-portal/internal/models"
	"egov-portal/pkg/auth"

	"github.com/gin-gonic/gin"
)

// Ключі контексту gin
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextRole      = "role"
)

func AuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			AbortWithError(c, http.StatusUnauthorized, "auth.required")
			return
		}

		// Перевіряємо формат "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			AbortWithError(c, http.StatusUnauthorized, "auth.invalid_header")
			return
		}

		claims, err := jwtManager.ValidateToken(parts[1])
		if err != nil {
			AbortWithError(c, http.StatusUnauthorized, "auth.invalid_token")
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth заповнює контекст, якщо є валідний токен, інакше пропускає запит
func OptionalAuth(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		parts := strings.Split(c.GetHeader("Authorization"), " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			if claims, err := jwtManager.ValidateToken(parts[1]); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextUserEmail, claims.Email)
	c.Set(ContextRole, claims.Role)
}

// GetUserID повертає id користувача з контексту
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(ContextUserID)
	return userID, userID != ""
}

// GetRole повертає роль користувача з контексту
func GetRole(c *gin.Context) models.UserRole {
	return models.UserRole(c.GetString(ContextRole))
}
