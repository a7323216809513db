// internal/middleware/permissions.go

package middleware

import (
	"net/http"

	"egov-portal/internal/models"

	"github.com/gin-gonic/gin"
)

// roleFromContext дістає роль, встановлену AuthMiddleware, або обриває запит
func roleFromContext(c *gin.Context) (models.UserRole, bool) {
	roleStr := c.GetString(ContextRole)
	if roleStr == "" {
		AbortWithError(c, http.StatusUnauthorized, "auth.required")
		return "", false
	}

	userRole := models.UserRole(roleStr)
	if !userRole.IsValid() {
		AbortWithError(c, http.StatusForbidden, "auth.forbidden")
		return "", false
	}
	return userRole, true
}

// RequirePermission створює middleware для перевірки конкретного дозволу
// 🔒 Використовується для захисту ендпоінтів на рівні Backend
func RequirePermission(permission models.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, ok := roleFromContext(c)
		if !ok {
			return
		}

		if !userRole.HasPermission(permission) {
			abortForbidden(c, gin.H{
				"required":  permission,
				"user_role": userRole,
			})
			return
		}

		c.Next()
	}
}

// RequireRole створює middleware для перевірки мінімальної ролі
func RequireRole(minRole models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, ok := roleFromContext(c)
		if !ok {
			return
		}

		// Роль користувача має бути вищою або рівною необхідній
		if !userRole.IsHigherOrEqual(minRole) {
			abortForbidden(c, gin.H{
				"required_role": minRole,
				"user_role":     userRole,
			})
			return
		}

		c.Next()
	}
}

// RequireAnyRole - endpoint доступний для кількох ролей
func RequireAnyRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, ok := roleFromContext(c)
		if !ok {
			return
		}

		for _, allowed := range roles {
			if userRole == allowed {
				c.Next()
				return
			}
		}

		abortForbidden(c, gin.H{
			"required_roles": roles,
			"user_role":      userRole,
		})
	}
}

func abortForbidden(c *gin.Context, details gin.H) {
	body := gin.H{
		"error": Translate(c, "auth.forbidden"),
		"code":  "auth.forbidden",
	}
	for k, v := range details {
		body[k] = v
	}
	c.AbortWithStatusJSON(http.StatusForbidden, body)
}
