// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/skytunes/skytunes-backend/internal/config"
	"github.com/skytunes/skytunes-backend/internal/handlers"
	"github.com/skytunes/skytunes-backend/internal/middleware"
	"github.com/skytunes/skytunes-backend/internal/services"
	"github.com/skytunes/skytunes-backend/internal/store"
	"github.com/skytunes/skytunes-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	ledger := store.NewPGStore(db)
	indexerService := services.NewIndexerService(cfg)
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize storage service")
	}

	webhookService := services.NewWebhookService(ledger)
	songService := services.NewSongService(db, ledger, indexerService)
	streamService := services.NewStreamService(db, ledger)
	purchaseService := services.NewPurchaseService(db, ledger)
	authService := services.NewAuthService(cfg)
	adminService := services.NewAdminService(db, ledger)

	// Initialize handlers
	webhookHandler := handlers.NewWebhookHandler(webhookService)
	songHandler := handlers.NewSongHandler(songService, storageService)
	streamHandler := handlers.NewStreamHandler(streamService)
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService)
	authHandler := handlers.NewAuthHandler(authService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Webhook ingestion. Authenticated by shared secret, not rate limited:
	// the indexer bursts during chain congestion and retries on non-2xx.
	webhook := r.Group("/webhook")
	webhook.Use(middleware.WebhookAuth(cfg))
	{
		webhook.POST("", webhookHandler.HandleWebhook)
		webhook.POST("/helius", webhookHandler.HandleWebhook)
	}

	// API v1 routes
	v1 := r.Group("/v1")
	v1.Use(middleware.GeneralRateLimit())
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/login", authHandler.Login)
		}

		// Song routes
		songs := v1.Group("/songs")
		{
			songs.GET("", songHandler.List)
			songs.GET("/:mint", songHandler.Get)
			songs.GET("/:mint/access/:address", purchaseHandler.CheckAccess)
			songs.POST("", songHandler.Register)
			songs.POST("/upload", middleware.UploadRateLimit(), songHandler.Upload)
		}

		// Stream routes
		streams := v1.Group("/streams")
		{
			streams.GET("", streamHandler.List)
			streams.POST("", streamHandler.Record)
		}

		// Purchase routes
		purchases := v1.Group("/purchases")
		{
			purchases.GET("", purchaseHandler.List)
			purchases.POST("", purchaseHandler.Record)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/stats", adminHandler.GetDashboardStats)
		}
	}

	// Local uploads are only served when the dev fallback is in play
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
