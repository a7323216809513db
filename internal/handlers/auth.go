// internal/handlers/auth.go

package handlers

import (
	"net/http"

	"egov-portal/internal/middleware"
	"egov-portal/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login handles demo login: email, password and the selected role must all match
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.authService.Login(ctx, req)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"email": req.Email,
			"role":  req.Role,
		}).Info("Невдала спроба входу")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": middleware.Translate(c, "auth.login_success"),
		"token":   resp.Token,
		"user":    resp.User,
	})
}

// Me returns the current user's profile
func (h *AuthHandler) Me(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, ok := currentUser(ctx, c, h.authService)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}
