package main

import (
	"context"
	"net/http"
	"time"

	"egov-portal/internal/config"
	"egov-portal/internal/handlers"
	"egov-portal/internal/i18n"
	"egov-portal/internal/middleware"
	"egov-portal/internal/models"
	"egov-portal/internal/services"
	"egov-portal/internal/store"
	"egov-portal/pkg/auth"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// application збирає сервіси і хендлери над одним сховищем
type application struct {
	cfg        *config.Config
	store      store.Store
	jwtManager *auth.JWTManager
	ready      func(ctx context.Context) error

	hub           *handlers.Hub
	webhook       *services.WebhookPublisher
	analytics     *services.AnalyticsService
	notifications *services.NotificationService
	rateLimiter   *middleware.RateLimiter

	authHandler         *handlers.AuthHandler
	documentHandler     *handlers.DocumentHandler
	reviewHandler       *handlers.ReviewHandler
	verifyHandler       *handlers.VerifyHandler
	notificationHandler *handlers.NotificationHandler
	usersHandler        *handlers.UsersHandler
	adminHandler        *handlers.AdminHandler
	viewHandler         *handlers.ViewHandler
	websocketHandler    *handlers.WebSocketHandler
}

func newApplication(cfg *config.Config, st store.Store, ready func(ctx context.Context) error) *application {
	lang, ok := i18n.ParseLanguage(cfg.DefaultLanguage)
	if !ok {
		lang = i18n.English
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, time.Duration(cfg.JWTExpiration)*time.Hour)
	hub := handlers.NewHub()

	// Сповіщення доставляються через WebSocket і, якщо задано, через webhook
	notificationService := services.NewNotificationService(st, st, hub)
	var webhook *services.WebhookPublisher
	if cfg.NotifyWebhookURL != "" {
		webhook = services.NewWebhookPublisher(cfg.NotifyWebhookURL)
		notificationService.AddPublisher(webhook)
	}

	authService := services.NewAuthService(st, jwtManager)
	documentService := services.NewDocumentService(st, notificationService, lang)
	verificationService := services.NewVerificationService(st)
	analyticsService := services.NewAnalyticsService(st)
	uploadValidator := services.NewUploadValidator(cfg.MaxUploadMB)

	app := &application{
		cfg:        cfg,
		store:      st,
		jwtManager: jwtManager,
		ready:      ready,

		hub:           hub,
		webhook:       webhook,
		analytics:     analyticsService,
		notifications: notificationService,

		authHandler:         handlers.NewAuthHandler(authService),
		documentHandler:     handlers.NewDocumentHandler(documentService, uploadValidator, authService),
		reviewHandler:       handlers.NewReviewHandler(documentService, authService),
		verifyHandler:       handlers.NewVerifyHandler(verificationService),
		notificationHandler: handlers.NewNotificationHandler(notificationService),
		usersHandler:        handlers.NewUsersHandler(st, documentService),
		adminHandler:        handlers.NewAdminHandler(documentService, analyticsService),
		viewHandler:         handlers.NewViewHandler(authService),
		websocketHandler:    handlers.NewWebSocketHandler(hub, authService),
	}

	if cfg.RateLimitEnabled {
		app.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	}

	return app
}

// close зупиняє фонові горутини
func (app *application) close() {
	app.analytics.Stop()
	app.hub.Shutdown()
	if app.webhook != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := app.webhook.Close(ctx); err != nil {
			logrus.WithError(err).Warn("⚠️  Черга webhook не доставлена повністю")
		}
		cancel()
	}
	if app.rateLimiter != nil {
		app.rateLimiter.Stop()
	}
}

// setupRouter налаштовує всі маршрути
func (app *application) setupRouter() *gin.Engine {
	lang, ok := i18n.ParseLanguage(app.cfg.DefaultLanguage)
	if !ok {
		lang = i18n.English
	}

	router := gin.New()

	// Глобальні middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Language(lang))

	// CORS для фронтенду
	router.Use(cors.New(cors.Config{
		AllowOrigins:     app.cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "X-Language", "Accept-Language"},
		ExposeHeaders:    []string{"Content-Length", "Content-Language", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Ліміт тіла запиту з запасом на кілька файлів
	router.MaxMultipartMemory = 8 << 20

	// WebSocket endpoint
	router.GET("/ws", app.websocketHandler.HandleWebSocket)

	app.setupHealthRoutes(router)

	v1 := router.Group("/api/v1")
	{
		app.setupPublicRoutes(v1)
		app.setupProtectedRoutes(v1)
	}

	router.HandleMethodNotAllowed = true

	// 404 для невідомих маршрутів
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": middleware.Translate(c, "error.endpoint_not_found"),
			"code":  "error.endpoint_not_found",
			"path":  c.Request.URL.Path,
		})
	})

	// 405 для непідтримуваних методів
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error":  middleware.Translate(c, "error.method_not_allowed"),
			"code":   "error.method_not_allowed",
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		})
	})

	return router
}

// setupHealthRoutes - health check і стан сервера
func (app *application) setupHealthRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"uptime":    time.Since(serverStartTime).String(),
			"version":   appVersion,
			"store":     app.cfg.StoreDriver,
			"stats": gin.H{
				"websocket_connections": app.hub.Connections(),
			},
		})
	})

	// Readiness check - сховище відповідає
	router.GET("/ready", func(c *gin.Context) {
		if app.ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := app.ready(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"ready": false,
					"error": err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"ready": true})
	})

	router.GET("/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"alive": true})
	})
}

// setupPublicRoutes - маршрути без авторизації
func (app *application) setupPublicRoutes(v1 *gin.RouterGroup) {
	// Вхід і перевірка довідок обмежуються по IP
	limited := v1.Group("")
	if app.rateLimiter != nil {
		limited.Use(app.rateLimiter.RateLimit())
	}

	limited.POST("/auth/login", app.authHandler.Login)

	limited.POST("/verify", app.verifyHandler.VerifyCode)
	limited.GET("/verify/:code", app.verifyHandler.VerifyByPath)
	limited.GET("/verify/:code/qr", app.verifyHandler.QRCode)

	v1.GET("/certificate-types", app.viewHandler.GetCertificateTypes)
	v1.GET("/views/resolve", middleware.OptionalAuth(app.jwtManager), app.viewHandler.ResolveView)
}

// setupProtectedRoutes - маршрути з JWT, ролі перевіряються на групах
func (app *application) setupProtectedRoutes(v1 *gin.RouterGroup) {
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(app.jwtManager))

	protected.GET("/me", app.authHandler.Me)
	protected.GET("/views", app.viewHandler.GetViews)

	// Заявки на довідки
	documents := protected.Group("/documents")
	{
		documents.POST("", middleware.RequirePermission(models.PermissionSubmitApplication), app.documentHandler.CreateDocument)
		documents.GET("", app.documentHandler.GetMyDocuments)
		documents.GET("/stats", app.documentHandler.GetMyStats)
		documents.GET("/:id", app.documentHandler.GetDocument)
		documents.PATCH("/:id", app.documentHandler.UpdateDocument)
		documents.DELETE("/:id", app.documentHandler.DeleteDocument)
	}

	// Сповіщення
	notifications := protected.Group("/notifications")
	{
		notifications.GET("", app.notificationHandler.GetUserNotifications)
		notifications.GET("/unread-count", app.notificationHandler.GetUnreadCount)
		notifications.PUT("/read-all", app.notificationHandler.MarkAllNotificationsAsRead)
		notifications.PUT("/:id/read", app.notificationHandler.MarkNotificationAsRead)
	}

	// Робоче місце посадової особи
	officer := protected.Group("/officer")
	officer.Use(middleware.RequirePermission(models.PermissionReviewDocuments))
	{
		officer.GET("/pending", app.reviewHandler.GetPendingReviews)
		officer.GET("/verified", app.reviewHandler.GetVerifiedDocuments)
		officer.PUT("/documents/:id/status", app.reviewHandler.UpdateStatus)
		officer.POST("/documents/:id/comments", app.reviewHandler.AddComment)
	}

	admin := protected.Group("/admin")
	{
		// Статистику користувача бачать і посадові особи
		admin.GET("/users/:id/stats", middleware.RequireAnyRole(models.RoleOfficer, models.RoleAdmin), app.usersHandler.GetUserStats)

		adminOnly := admin.Group("")
		adminOnly.Use(middleware.RequireRole(models.RoleAdmin))

		adminOnly.GET("/documents", middleware.RequirePermission(models.PermissionViewAllDocuments), app.adminHandler.GetAllDocuments)
		adminOnly.GET("/analytics", middleware.RequirePermission(models.PermissionViewAnalytics), app.adminHandler.GetAnalytics)
		adminOnly.POST("/analytics/refresh", middleware.RequirePermission(models.PermissionViewAnalytics), app.adminHandler.RefreshAnalytics)
		adminOnly.GET("/users", middleware.RequirePermission(models.PermissionManageUsers), app.usersHandler.GetAllUsers)
		adminOnly.GET("/users/:id", middleware.RequirePermission(models.PermissionManageUsers), app.usersHandler.GetUserByID)
		adminOnly.POST("/notifications", middleware.RequirePermission(models.PermissionSendNotifications), app.notificationHandler.SendNotification)
	}
}
