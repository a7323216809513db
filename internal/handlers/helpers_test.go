package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"egov-portal/internal/i18n"
	"egov-portal/internal/middleware"
	"egov-portal/internal/models"
	"egov-portal/internal/services"
	"egov-portal/internal/store"
	"egov-portal/pkg/auth"
	"egov-portal/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Init()
}

type testEnv struct {
	router     *gin.Engine
	store      *store.MemoryStore
	jwtManager *auth.JWTManager
	hub        *Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := store.NewMemoryStore()
	require.NoError(t, store.SeedDemo(context.Background(), st))

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Shutdown)

	notificationService := services.NewNotificationService(st, st, hub)
	authService := services.NewAuthService(st, jwtManager)
	documentService := services.NewDocumentService(st, notificationService, i18n.English)

	authHandler := NewAuthHandler(authService)
	documentHandler := NewDocumentHandler(documentService, services.NewUploadValidator(5), authService)
	reviewHandler := NewReviewHandler(documentService, authService)
	verifyHandler := NewVerifyHandler(services.NewVerificationService(st))
	notificationHandler := NewNotificationHandler(notificationService)
	usersHandler := NewUsersHandler(st, documentService)
	adminHandler := NewAdminHandler(documentService, services.NewAnalyticsService(st))
	viewHandler := NewViewHandler(authService)
	websocketHandler := NewWebSocketHandler(hub, authService)

	r := gin.New()
	r.Use(middleware.Language(i18n.English))
	r.GET("/ws", websocketHandler.HandleWebSocket)

	r.POST("/auth/login", authHandler.Login)
	r.POST("/verify", verifyHandler.VerifyCode)
	r.GET("/verify/:code", verifyHandler.VerifyByPath)
	r.GET("/verify/:code/qr", verifyHandler.QRCode)
	r.GET("/certificate-types", viewHandler.GetCertificateTypes)
	r.GET("/views/resolve", middleware.OptionalAuth(jwtManager), viewHandler.ResolveView)

	protected := r.Group("", middleware.AuthMiddleware(jwtManager))
	protected.GET("/me", authHandler.Me)
	protected.GET("/views", viewHandler.GetViews)

	protected.POST("/documents", middleware.RequirePermission(models.PermissionSubmitApplication), documentHandler.CreateDocument)
	protected.GET("/documents", documentHandler.GetMyDocuments)
	protected.GET("/documents/stats", documentHandler.GetMyStats)
	protected.GET("/documents/:id", documentHandler.GetDocument)
	protected.PATCH("/documents/:id", documentHandler.UpdateDocument)
	protected.DELETE("/documents/:id", documentHandler.DeleteDocument)

	protected.GET("/notifications", notificationHandler.GetUserNotifications)
	protected.GET("/notifications/unread-count", notificationHandler.GetUnreadCount)
	protected.PUT("/notifications/read-all", notificationHandler.MarkAllNotificationsAsRead)
	protected.PUT("/notifications/:id/read", notificationHandler.MarkNotificationAsRead)

	officer := protected.Group("/officer", middleware.RequirePermission(models.PermissionReviewDocuments))
	officer.GET("/pending", reviewHandler.GetPendingReviews)
	officer.GET("/verified", reviewHandler.GetVerifiedDocuments)
	officer.PUT("/documents/:id/status", reviewHandler.UpdateStatus)
	officer.POST("/documents/:id/comments", reviewHandler.AddComment)

	admin := protected.Group("/admin")
	admin.GET("/users/:id/stats", middleware.RequireAnyRole(models.RoleOfficer, models.RoleAdmin), usersHandler.GetUserStats)
	adminOnly := admin.Group("", middleware.RequireRole(models.RoleAdmin))
	adminOnly.GET("/documents", adminHandler.GetAllDocuments)
	adminOnly.GET("/analytics", adminHandler.GetAnalytics)
	adminOnly.POST("/analytics/refresh", adminHandler.RefreshAnalytics)
	adminOnly.GET("/users", usersHandler.GetAllUsers)
	adminOnly.GET("/users/:id", usersHandler.GetUserByID)
	adminOnly.POST("/notifications", notificationHandler.SendNotification)

	return &testEnv{
		router:     r,
		store:      st,
		jwtManager: jwtManager,
		hub:        hub,
	}
}

// Демо-акаунти з store.DemoUsers
const (
	citizenID = "1"
	officerID = "2"
	adminID   = "3"
)

func (e *testEnv) token(t *testing.T, userID string) string {
	t.Helper()
	user, err := e.store.FindUserByID(context.Background(), userID)
	require.NoError(t, err)

	token, err := e.jwtManager.GenerateToken(user.ID, user.Email, string(user.Role))
	require.NoError(t, err)
	return token
}

func (e *testEnv) request(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type formFile struct {
	name        string
	contentType string
	content     []byte
}

func (e *testEnv) upload(t *testing.T, fields map[string]string, files []formFile, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files[]"; filename="%s"`, f.name))
		header.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

var (
	pdfContent = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
	exeContent = append([]byte("MZ\x90\x00\x03\x00\x00\x00"), make([]byte, 120)...)
)
