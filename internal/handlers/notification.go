// internal/handlers/notification.go
package handlers

import (
	"net/http"

	"egov-portal/internal/middleware"
	"egov-portal/internal/models"
	"egov-portal/internal/services"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

// SendNotificationRequest - адресат або user_id, або роль (порожня - всі)
type SendNotificationRequest struct {
	UserID  string                  `json:"user_id,omitempty"`
	Role    models.UserRole         `json:"role,omitempty" binding:"omitempty,oneof=citizen officer admin"`
	Title   string                  `json:"title" binding:"required,max=100"`
	Message string                  `json:"message" binding:"required,max=500"`
	Type    models.NotificationType `json:"type,omitempty" binding:"omitempty,oneof=info success warning error"`
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

func (h *NotificationHandler) GetUserNotifications(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	unreadOnly := c.DefaultQuery("unread_only", "false") == "true"

	ctx, cancel := requestContext(c)
	defer cancel()

	notifications, err := h.notificationService.List(ctx, userID, unreadOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	unreadCount, err := h.notificationService.UnreadCount(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unread_count":  unreadCount,
	})
}

func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	count, err := h.notificationService.UnreadCount(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

func (h *NotificationHandler) MarkNotificationAsRead(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.notificationService.MarkRead(ctx, userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": middleware.Translate(c, "notification.marked_read"),
	})
}

func (h *NotificationHandler) MarkAllNotificationsAsRead(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	updated, err := h.notificationService.MarkAllRead(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       middleware.Translate(c, "notification.all_marked_read"),
		"updated_count": updated,
	})
}

// SendNotification - розсилка від адміністратора
func (h *NotificationHandler) SendNotification(c *gin.Context) {
	var req SendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if req.UserID != "" {
		notification, err := h.notificationService.SendToUser(ctx, services.NotificationInput{
			UserID:  req.UserID,
			Title:   req.Title,
			Message: req.Message,
			Type:    req.Type,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message":      middleware.Translate(c, "notification.sent"),
			"notification": notification,
			"sent_count":   1,
		})
		return
	}

	sent, err := h.notificationService.SendToRole(ctx, req.Role, req.Title, req.Message, req.Type)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    middleware.Translate(c, "notification.sent"),
		"sent_count": sent,
	})
}
