package main

import (
	"log"

	"github.com/jasobih/gigboard/internal/broker"
	"github.com/jasobih/gigboard/internal/config"
	"github.com/jasobih/gigboard/internal/database"
	"github.com/jasobih/gigboard/internal/handler"
	"github.com/jasobih/gigboard/internal/middleware"
	"github.com/jasobih/gigboard/internal/repository"
	"github.com/jasobih/gigboard/internal/service"
	"github.com/jasobih/gigboard/internal/storage"
	"github.com/jasobih/gigboard/internal/wal"
	"github.com/jasobih/gigboard/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.Environment != "production"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	database.Connect(cfg)
	database.Migrate()

	// Message journal
	walInstance, err := wal.NewWAL(cfg.WALPath)
	if err != nil {
		log.Fatalf("Failed to initialize WAL: %v", err)
	}
	defer walInstance.Close()

	// Redis: thread fan-out plus rate limiting share one client
	threadBroker, err := broker.NewRedisThreadBroker(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to initialize Redis broker: %v", err)
	}
	defer threadBroker.Close()

	// Image blob store
	blobStore, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize upload directory: %v", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(database.DB)
	gigRepo := repository.NewGigRepository(database.DB)
	messageRepo := repository.NewMessageRepository(database.DB)
	reviewRepo := repository.NewReviewRepository(database.DB)

	// One lock registry serializes all per-gig mutations
	gigLocks := service.NewGigLocks()

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry, cfg.AdminAPIKey, cfg.Environment)
	gigService := service.NewGigService(gigRepo, blobStore, gigLocks, cfg.MaxPageSize)
	moderationService := service.NewModerationService(gigRepo, gigLocks, cfg.ReportThreshold)
	messageService := service.NewMessageService(messageRepo, gigRepo, threadBroker, walInstance, gigLocks)
	reviewService := service.NewReviewService(reviewRepo, gigRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(authService, gigService, messageService, reviewService)
	gigHandler := handler.NewGigHandler(gigService, moderationService)
	messageHandler := handler.NewMessageHandler(messageService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	adminHandler := handler.NewAdminHandler(moderationService)
	wsHandler := handler.NewWebSocketHandler(gigService, threadBroker)

	// Rate limiting
	rateLimiter := middleware.NewRateLimiter(threadBroker.Client(), middleware.RateLimiterConfig{
		MaxRequests: cfg.RateLimitMaxRequests,
		Window:      cfg.RateLimitWindow,
	})

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.HSTSMiddleware(cfg.Environment == "production"))
	router.Use(rateLimiter.Middleware())

	router.Static("/uploads", blobStore.Root())

	api := router.Group("/api")

	// Public routes
	api.POST("/users/register", authHandler.Register)
	api.POST("/token", authHandler.Login)
	api.GET("/users/:id", userHandler.GetUser)
	api.GET("/users/:id/reviews", userHandler.UserReviews)
	api.GET("/gigs", gigHandler.List)
	api.POST("/gigs/:id/report",
		rateLimiter.PerGigMiddleware("reportlimit", 1, cfg.ReportLimitWindow),
		gigHandler.Report)

	// Protected routes (require JWT)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		protected.PUT("/users/me", userHandler.UpdateMe)
		protected.GET("/gigs/me", userHandler.MyGigs)
		protected.GET("/messages/me", userHandler.MyMessages)

		protected.POST("/gigs", gigHandler.Create)
		protected.GET("/gigs/:id", gigHandler.Get)
		protected.POST("/gigs/:id/complete", gigHandler.Complete)
		protected.POST("/gigs/:id/upload-image", gigHandler.UploadImage)

		protected.GET("/gigs/:id/messages", messageHandler.List)
		protected.POST("/gigs/:id/messages", messageHandler.Post)
		protected.GET("/gigs/:id/ws", wsHandler.Watch)

		protected.POST("/gigs/:id/reviews", reviewHandler.Submit)
		protected.GET("/gigs/:id/reviews", reviewHandler.GigAggregate)
	}

	// Admin routes (out-of-band API key)
	admin := api.Group("/admin")
	admin.Use(middleware.AdminKeyMiddleware(cfg.AdminAPIKey))
	{
		admin.GET("/flagged", adminHandler.Flagged)
		admin.POST("/gigs/:id/approve", adminHandler.Approve)
		admin.DELETE("/gigs/:id", adminHandler.Remove)
	}

	log.Printf("Server starting on %s", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
