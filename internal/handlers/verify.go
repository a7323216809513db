// internal/handlers/verify.go
package handlers

import (
	"net/http"

	"egov-portal/internal/middleware"
	"egov-portal/internal/services"

	"github.com/gin-gonic/gin"
)

// VerifyHandler - публічна перевірка довідок за кодом
type VerifyHandler struct {
	verificationService *services.VerificationService
}

type VerifyRequest struct {
	Code string `json:"code"`
}

func NewVerifyHandler(verificationService *services.VerificationService) *VerifyHandler {
	return &VerifyHandler{
		verificationService: verificationService,
	}
}

func (h *VerifyHandler) VerifyCode(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	h.lookup(c, req.Code)
}

func (h *VerifyHandler) VerifyByPath(c *gin.Context) {
	h.lookup(c, c.Param("code"))
}

// lookup відповідає 200 і для невалідного коду: valid=false з причиною
func (h *VerifyHandler) lookup(c *gin.Context, code string) {
	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.verificationService.Lookup(ctx, code)
	if err != nil {
		respondError(c, err)
		return
	}

	if result.Valid {
		c.JSON(http.StatusOK, gin.H{
			"result":  result,
			"message": middleware.Translate(c, "verify.genuine"),
		})
		return
	}

	result.Error = middleware.Translate(c, "verify."+result.Reason)
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// QRCode віддає PNG з кодом підтвердженого документа
func (h *VerifyHandler) QRCode(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	png, err := h.verificationService.QRCode(ctx, c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", png)
}
