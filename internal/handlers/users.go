// internal/handlers/users.go

package handlers

import (
	"net/http"

	"egov-portal/internal/middleware"
	"egov-portal/internal/models"
	"egov-portal/internal/services"
	"egov-portal/internal/store"

	"github.com/gin-gonic/gin"
)

// UsersHandler - керування посадовими особами та користувачами
// 🔒 Всі методи вимагають ролі admin
type UsersHandler struct {
	users           store.UserStore
	documentService *services.DocumentService
}

// UsersListResponse - відповідь зі списком користувачів
type UsersListResponse struct {
	Data  []models.User `json:"data"`
	Total int           `json:"total"`
}

// NewUsersHandler створює новий обробник користувачів
func NewUsersHandler(users store.UserStore, documentService *services.DocumentService) *UsersHandler {
	return &UsersHandler{
		users:           users,
		documentService: documentService,
	}
}

// GetAllUsers повертає користувачів, за потреби лише однієї ролі (?role=officer)
func (h *UsersHandler) GetAllUsers(c *gin.Context) {
	var role models.UserRole
	if value := c.Query("role"); value != "" {
		parsed, ok := models.FromString(value)
		if !ok {
			middleware.AbortWithError(c, http.StatusBadRequest, "error.invalid_request")
			return
		}
		role = parsed
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := h.users.ListUsers(ctx, role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, UsersListResponse{
		Data:  users,
		Total: len(users),
	})
}

// GetUserByID повертає профіль користувача
func (h *UsersHandler) GetUserByID(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.FindUserByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetUserStats - заявки користувача за статусами
func (h *UsersHandler) GetUserStats(c *gin.Context) {
	userID := c.Param("id")

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.users.FindUserByID(ctx, userID); err != nil {
		respondError(c, err)
		return
	}

	stats, err := h.documentService.Stats(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"stats":   stats,
	})
}
