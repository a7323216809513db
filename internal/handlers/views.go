// internal/handlers/views.go
package handlers

import (
	"net/http"

	"egov-portal/internal/middleware"
	"egov-portal/internal/models"
	"egov-portal/internal/services"

	"github.com/gin-gonic/gin"
)

// ViewHandler - навігація і маршрутизація екранів за ролями
type ViewHandler struct {
	authService *services.AuthService
}

// CertificateType - тип довідки для форми заявки
type CertificateType struct {
	Type        models.DocumentType `json:"type"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Department  string              `json:"department"`
}

func NewViewHandler(authService *services.AuthService) *ViewHandler {
	return &ViewHandler{
		authService: authService,
	}
}

// GetViews - меню поточної ролі з локалізованими назвами
func (h *ViewHandler) GetViews(c *gin.Context) {
	role := middleware.GetRole(c)

	views := role.Views()
	for i := range views {
		views[i].Name = middleware.Translate(c, views[i].NameKey)
	}

	c.JSON(http.StatusOK, gin.H{
		"role":  role,
		"root":  role.Root(),
		"views": views,
	})
}

// ResolveView вирішує, чи відкрити екран ?path=, чи куди перенаправити.
// Без токена (або з токеном видаленого користувача) запит анонімний.
func (h *ViewHandler) ResolveView(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		middleware.AbortWithError(c, http.StatusBadRequest, "error.invalid_request")
		return
	}

	var user *models.User
	if userID, ok := middleware.GetUserID(c); ok {
		ctx, cancel := requestContext(c)
		defer cancel()

		if u, err := h.authService.CurrentUser(ctx, userID); err == nil {
			user = &u
		}
	}

	decision := models.ResolveView(user, path)
	c.JSON(http.StatusOK, gin.H{
		"path":     path,
		"decision": decision,
	})
}

// GetCertificateTypes - перелік типів довідок мовою запиту
func (h *ViewHandler) GetCertificateTypes(c *gin.Context) {
	types := make([]CertificateType, 0, len(models.AllDocumentTypes()))
	for _, t := range models.AllDocumentTypes() {
		types = append(types, CertificateType{
			Type:        t,
			Name:        middleware.Translate(c, "cert."+string(t)+".name"),
			Description: middleware.Translate(c, "cert."+string(t)+".desc"),
			Department:  t.Department(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"certificate_types": types})
}
