// internal/handlers/review.go
package handlers

import (
	"net/http"

	"egov-portal/internal/middleware"
	"egov-portal/internal/models"
	"egov-portal/internal/services"

	"github.com/gin-gonic/gin"
)

// ReviewHandler - робоче місце посадової особи
type ReviewHandler struct {
	documentService *services.DocumentService
	authService     *services.AuthService
}

type UpdateStatusRequest struct {
	Status models.DocumentStatus `json:"status" binding:"required,oneof=under_review verified rejected"`
}

type AddCommentRequest struct {
	Comment string `json:"comment" binding:"required,max=1000"`
}

func NewReviewHandler(documentService *services.DocumentService, authService *services.AuthService) *ReviewHandler {
	return &ReviewHandler{
		documentService: documentService,
		authService:     authService,
	}
}

// GetPendingReviews - черга: pending і under_review
func (h *ReviewHandler) GetPendingReviews(c *gin.Context) {
	page, limit := pagination(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	docs, total, err := h.documentService.ListPending(ctx, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginated("documents", docs, page, limit, total))
}

// GetVerifiedDocuments - документи, які підтвердив поточний рецензент
func (h *ReviewHandler) GetVerifiedDocuments(c *gin.Context) {
	page, limit := pagination(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	reviewer, ok := currentUser(ctx, c, h.authService)
	if !ok {
		return
	}

	docs, total, err := h.documentService.ListVerifiedBy(ctx, reviewer.Name, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginated("documents", docs, page, limit, total))
}

func (h *ReviewHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	reviewer, ok := currentUser(ctx, c, h.authService)
	if !ok {
		return
	}

	doc, err := h.documentService.UpdateStatus(ctx, reviewer, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  middleware.Translate(c, "application.updated"),
		"document": doc,
	})
}

func (h *ReviewHandler) AddComment(c *gin.Context) {
	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "application.comment_required")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	reviewer, ok := currentUser(ctx, c, h.authService)
	if !ok {
		return
	}

	doc, err := h.documentService.AddComment(ctx, reviewer, c.Param("id"), req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  middleware.Translate(c, "application.comment_added"),
		"document": doc,
	})
}
