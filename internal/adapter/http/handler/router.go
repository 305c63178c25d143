package handler

import (
	"ai-art-marketplace/internal/adapter/http/middleware"
	redisStore "ai-art-marketplace/internal/adapter/storage/redis"
	"ai-art-marketplace/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc         ports.AuthService
	SettlementSvc   ports.SettlementService
	ArtworkSvc      ports.ArtworkService
	WalletSvc       ports.WalletService
	GenerationSvc   ports.GenerationService
	NotificationSvc ports.NotificationService
	ReportingSvc    ports.ReportingService
	TokenSvc        ports.TokenService
	RateLimitStore  *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers  []ports.HealthChecker
	Logger          zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep, verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	artworkHandler := NewArtworkHandler(deps.ArtworkSvc)
	reportingHandler := NewReportingHandler(deps.ReportingSvc)
	v1.GET("/artworks", rl("browse"), artworkHandler.List)
	v1.GET("/artworks/:id", rl("browse"), artworkHandler.Get)
	v1.GET("/artworks/:id/bids", rl("browse"), artworkHandler.Bids)
	v1.GET("/stats", rl("browse"), reportingHandler.GetStats)

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	marketplaceHandler := NewMarketplaceHandler(deps.SettlementSvc)
	artworks := v1.Group("/artworks", jwtAuth)
	{
		artworks.PUT("/:id/listing", rl("browse"), artworkHandler.UpdateListing)
		artworks.POST("/:id/purchase", rl("settlement"), marketplaceHandler.Purchase)
		artworks.POST("/:id/bids", rl("settlement"), marketplaceHandler.PlaceBid)
	}

	walletHandler := NewWalletHandler(deps.WalletSvc)
	wallets := v1.Group("/wallets", jwtAuth)
	{
		wallets.GET("/balance", rl("browse"), walletHandler.GetBalance)
		wallets.POST("/topup", rl("wallets_topup"), walletHandler.Topup)
	}

	generationHandler := NewGenerationHandler(deps.GenerationSvc)
	generate := v1.Group("/generate", jwtAuth)
	{
		generate.POST("", rl("generate"), generationHandler.Generate)
		generate.GET("/history", rl("browse"), generationHandler.History)
		generate.GET("/:id", rl("browse"), generationHandler.GetTask)
		generate.POST("/:id/save", rl("browse"), generationHandler.SaveArtwork)
	}

	notificationHandler := NewNotificationHandler(deps.NotificationSvc)
	notifications := v1.Group("/notifications", jwtAuth)
	{
		notifications.GET("", rl("browse"), notificationHandler.List)
		notifications.GET("/unread-count", rl("browse"), notificationHandler.UnreadCount)
		notifications.POST("/:id/read", rl("browse"), notificationHandler.MarkRead)
		notifications.POST("/read-all", rl("browse"), notificationHandler.MarkAllRead)
	}

	transactions := v1.Group("/transactions", jwtAuth)
	{
		transactions.GET("", rl("browse"), reportingHandler.ListTransactions)
		transactions.GET("/:id", rl("browse"), reportingHandler.GetTransaction)
	}

	return r
}
