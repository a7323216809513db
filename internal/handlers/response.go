package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"egov-portal/internal/middleware"
	"egov-portal/internal/models"
	"egov-portal/internal/services"
	"egov-portal/internal/store"
	"egov-portal/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Таймаут операцій зі сховищем в межах одного запиту
const requestTimeout = 10 * time.Second

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// respondError зіставляє помилку домену зі статусом і ключем каталогу
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrDocumentNotFound):
		middleware.AbortWithError(c, http.StatusNotFound, "error.document_not_found")
	case errors.Is(err, models.ErrUserNotFound):
		middleware.AbortWithError(c, http.StatusNotFound, "error.user_not_found")
	case errors.Is(err, models.ErrNotificationNotFound):
		middleware.AbortWithError(c, http.StatusNotFound, "error.notification_not_found")
	case errors.Is(err, models.ErrInvalidTransition):
		middleware.AbortWithError(c, http.StatusConflict, "error.invalid_transition")
	case errors.Is(err, models.ErrDocumentFinal):
		middleware.AbortWithError(c, http.StatusConflict, "error.document_final")
	case errors.Is(err, models.ErrEmptyCode):
		middleware.AbortWithError(c, http.StatusBadRequest, "verify.empty_code")
	case errors.Is(err, models.ErrInvalidCredentials):
		middleware.AbortWithError(c, http.StatusUnauthorized, "auth.invalid_credentials")
	case errors.Is(err, auth.ErrInvalidToken):
		middleware.AbortWithError(c, http.StatusUnauthorized, "auth.invalid_token")
	case errors.Is(err, models.ErrForbidden):
		middleware.AbortWithError(c, http.StatusForbidden, "error.forbidden")
	case errors.Is(err, models.ErrDuplicateEntry):
		middleware.AbortWithError(c, http.StatusConflict, "error.duplicate")
	case errors.Is(err, models.ErrValidation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   middleware.Translate(c, "error.invalid_request"),
			"code":    "error.invalid_request",
			"details": err.Error(),
		})
	default:
		logrus.WithFields(logrus.Fields{
			"path":       c.FullPath(),
			"request_id": c.GetString(middleware.ContextRequestID),
		}).WithError(err).Error("❌ Внутрішня помилка")
		middleware.AbortWithError(c, http.StatusInternalServerError, "error.internal")
	}
}

// respondBindError - відповідь на невалідне тіло запиту
func respondBindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":   middleware.Translate(c, "error.invalid_request"),
		"code":    "error.invalid_request",
		"details": err.Error(),
	})
}

// pagination читає page/limit з query і приводить до меж сховища
func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(store.DefaultLimit)))
	return store.NormalizePage(page, limit)
}

// documentFilter читає ?status= (через кому), ?type= і пагінацію.
// Невідоме значення фільтра - 400 зі списком допустимих.
func documentFilter(c *gin.Context, userID string) (models.DocumentFilter, bool) {
	page, limit := pagination(c)
	filter := models.DocumentFilter{
		UserID: userID,
		Page:   page,
		Limit:  limit,
	}

	if value := c.Query("type"); value != "" {
		filter.Type = models.DocumentType(value)
		if !filter.Type.IsValid() {
			abortInvalidFilter(c, "type", value, models.AllDocumentTypes())
			return models.DocumentFilter{}, false
		}
	}

	if value := c.Query("status"); value != "" {
		for _, part := range strings.Split(value, ",") {
			status := models.DocumentStatus(strings.TrimSpace(part))
			if !status.IsValid() {
				abortInvalidFilter(c, "status", string(status), models.AllStatuses())
				return models.DocumentFilter{}, false
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	return filter, true
}

func abortInvalidFilter(c *gin.Context, field, value string, allowed interface{}) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":   middleware.Translate(c, "error.invalid_filter", field),
		"code":    "error.invalid_filter",
		"value":   value,
		"allowed": allowed,
	})
}

func paginated(key string, items interface{}, page, limit, total int) gin.H {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return gin.H{
		key: items,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": pages,
		},
	}
}

// currentUser завантажує користувача з токена; при помилці відповідь уже надіслана
func currentUser(ctx context.Context, c *gin.Context, authService *services.AuthService) (models.User, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		middleware.AbortWithError(c, http.StatusUnauthorized, "auth.required")
		return models.User{}, false
	}

	user, err := authService.CurrentUser(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			middleware.AbortWithError(c, http.StatusUnauthorized, "auth.invalid_token")
			return models.User{}, false
		}
		respondError(c, err)
		return models.User{}, false
	}
	return user, true
}
