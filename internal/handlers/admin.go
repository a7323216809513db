// internal/handlers/admin.go
package handlers

import (
	"net/http"

	"egov-portal/internal/middleware"
	"egov-portal/internal/services"

	"github.com/gin-gonic/gin"
)

// AdminHandler - всі заявки та аналітика
type AdminHandler struct {
	documentService  *services.DocumentService
	analyticsService *services.AnalyticsService
}

func NewAdminHandler(documentService *services.DocumentService, analyticsService *services.AnalyticsService) *AdminHandler {
	return &AdminHandler{
		documentService:  documentService,
		analyticsService: analyticsService,
	}
}

// GetAllDocuments - всі заявки з фільтрами ?status=, ?type=, ?user_id=
func (h *AdminHandler) GetAllDocuments(c *gin.Context) {
	filter, ok := documentFilter(c, c.Query("user_id"))
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	docs, total, err := h.documentService.List(ctx, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginated("documents", docs, filter.Page, filter.Limit, total))
}

func (h *AdminHandler) GetAnalytics(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	data, err := h.analyticsService.Snapshot(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"analytics": data})
}

// RefreshAnalytics перераховує знімок поза розкладом
func (h *AdminHandler) RefreshAnalytics(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	data, err := h.analyticsService.Refresh(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   middleware.Translate(c, "analytics.refreshed"),
		"analytics": data,
	})
}
