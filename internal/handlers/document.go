// internal/handlers/document.go
package handlers

import (
	"mime/multipart"
	"net/http"

	"egov-portal/internal/middleware"
	"egov-portal/internal/models"
	"egov-portal/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Поля multipart-форми з файлами
var uploadFormFields = []string{"files[]", "files"}

type DocumentHandler struct {
	documentService *services.DocumentService
	uploadValidator *services.UploadValidator
	authService     *services.AuthService
}

func NewDocumentHandler(
	documentService *services.DocumentService,
	uploadValidator *services.UploadValidator,
	authService *services.AuthService,
) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		uploadValidator: uploadValidator,
		authService:     authService,
	}
}

// CreateDocument приймає заявку з файлами. Невалідні файли відхиляються
// по одному, але хоча б один має пройти перевірку.
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, ok := currentUser(ctx, c, h.authService)
	if !ok {
		return
	}

	var headers []*multipart.FileHeader
	for _, field := range uploadFormFields {
		headers = append(headers, form.File[field]...)
	}

	files, closeAll := openUploads(headers)
	defer closeAll()

	lang := middleware.GetLanguage(c)
	accepted, rejected := h.uploadValidator.Validate(files, lang)
	if len(rejected) > 0 {
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,
			"rejected": rejected,
		}).Info("Частину файлів відхилено")
	}

	if len(accepted) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":          middleware.Translate(c, "upload.no_files"),
			"code":           "upload.no_files",
			"rejected_files": rejected,
		})
		return
	}

	doc, err := h.documentService.Create(ctx, services.CreateDocumentInput{
		UserID:      user.ID,
		Type:        models.DocumentType(c.PostForm("type")),
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Priority:    models.Priority(c.PostForm("priority")),
		Files:       accepted,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":        middleware.Translate(c, "application.submitted"),
		"document":       doc,
		"rejected_files": rejected,
	})
}

// openUploads відкриває файли форми для визначення типу за вмістом.
// Файл, який не вдалося відкрити, перевіряється лише за заявленим типом.
func openUploads(headers []*multipart.FileHeader) ([]services.UploadFile, func()) {
	files := make([]services.UploadFile, 0, len(headers))
	var opened []multipart.File

	for _, header := range headers {
		file := services.UploadFile{
			Name:         header.Filename,
			Size:         header.Size,
			DeclaredType: header.Header.Get("Content-Type"),
		}
		if f, err := header.Open(); err == nil {
			file.Content = f
			opened = append(opened, f)
		}
		files = append(files, file)
	}

	return files, func() {
		for _, f := range opened {
			f.Close()
		}
	}
}

// GetMyDocuments - "Мої заявки" громадянина
func (h *DocumentHandler) GetMyDocuments(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	filter, ok := documentFilter(c, userID)
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

// GetMyStats - кількість власних заявок за статусами
func (h *DocumentHandler) GetMyStats(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := h.documentService.Stats(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func (h *DocumentHandler) GetDocument(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, ok := currentUser(ctx, c, h.authService)
	if !ok {
		return
	}

	doc, err := h.documentService.Get(ctx, user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"document": doc})
}

// UpdateDocument - часткове оновлення; статус і рецензію змінює лише посадова особа
func (h *DocumentHandler) UpdateDocument(c *gin.Context) {
	var req models.DocumentUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.IsEmpty() {
		middleware.AbortWithError(c, http.StatusBadRequest, "error.invalid_request")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, ok := currentUser(ctx, c, h.authService)
	if !ok {
		return
	}

	doc, err := h.documentService.Update(ctx, user, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  middleware.Translate(c, "application.updated"),
		"document": doc,
	})
}

func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, ok := currentUser(ctx, c, h.authService)
	if !ok {
		return
	}

	if err := h.documentService.Delete(ctx, user, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": middleware.Translate(c, "application.deleted"),
	})
}
