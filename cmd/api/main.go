package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-art-marketplace/config"
	httpHandler "ai-art-marketplace/internal/adapter/http/handler"
	"ai-art-marketplace/internal/adapter/imagegen"
	pgStorage "ai-art-marketplace/internal/adapter/storage/postgres"
	redisStorage "ai-art-marketplace/internal/adapter/storage/redis"
	"ai-art-marketplace/internal/core/ports"
	"ai-art-marketplace/internal/service"
	"ai-art-marketplace/pkg/logger"

	"github.com/robfig/cron/v3"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting AI Art Marketplace")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	userRepo := pgStorage.NewUserRepo(pool)
	walletRepo := pgStorage.NewWalletRepo(pool)
	artworkRepo := pgStorage.NewArtworkRepo(pool)
	bidRepo := pgStorage.NewBidRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	taskRepo := pgStorage.NewGenerationTaskRepo(pool)
	notificationRepo := pgStorage.NewNotificationRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	artworkLock := redisStorage.NewArtworkLock(rdb, cfg.Settlement.LockAcquireTimeout, cfg.Settlement.LockTTL, log)
	eventQueue := redisStorage.NewNotificationQueue(rdb, log)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Image provider chain: configured backends first, placeholder as the
	// always-available fallback.
	genClient := &http.Client{Timeout: 60 * time.Second}
	var providers []imagegen.Provider
	if cfg.Generation.StabilityAPIKey != "" {
		providers = append(providers, imagegen.NewStabilityProvider(cfg.Generation.StabilityAPIKey, genClient))
	}
	if cfg.Generation.OpenAIAPIKey != "" {
		providers = append(providers, imagegen.NewOpenAIProvider(cfg.Generation.OpenAIAPIKey, genClient))
	}
	if cfg.Generation.HuggingFaceToken != "" {
		providers = append(providers, imagegen.NewHuggingFaceProvider(cfg.Generation.HuggingFaceToken, genClient))
	}
	providers = append(providers, imagegen.NewPlaceholderProvider())
	generator := imagegen.NewChain(log, providers...)

	// Initialize business services
	authSvc := service.NewAuthService(userRepo, walletRepo, hashSvc, tokenSvc, log)
	settlementSvc := service.NewSettlementService(
		artworkRepo,
		walletRepo,
		bidRepo,
		txRepo,
		userRepo,
		transactor,
		artworkLock,
		eventQueue,
		cfg.Settlement.PlatformFeePercent,
		log,
	)
	finalizer := service.NewAuctionFinalizer(
		artworkRepo,
		walletRepo,
		bidRepo,
		txRepo,
		userRepo,
		transactor,
		artworkLock,
		eventQueue,
		cfg.Settlement.PlatformFeePercent,
		log,
	)
	artworkSvc := service.NewArtworkService(artworkRepo, bidRepo, log)
	walletSvc := service.NewWalletService(walletRepo, log)
	generationSvc := service.NewGenerationService(taskRepo, artworkRepo, generator, log)
	notificationSvc := service.NewNotificationService(notificationRepo, log)
	reportingSvc := service.NewReportingService(txRepo)

	// Notification dispatcher: drains the Redis event queue into the
	// notifications table.
	dispatcherCtx, stopDispatcher := context.WithCancel(ctx)
	defer stopDispatcher()
	dispatcher := service.NewDispatcher(eventQueue, notificationRepo, log)
	go dispatcher.Run(dispatcherCtx)

	// Auction finalizer sweep
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Settlement.FinalizerSchedule, func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		count, err := finalizer.FinalizeExpired(sweepCtx)
		if err != nil {
			log.Error().Err(err).Msg("Auction finalization sweep failed")
			return
		}
		if count > 0 {
			log.Info().Int("count", count).Msg("Finalized expired auctions")
		}
	}); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.Settlement.FinalizerSchedule).Msg("Invalid finalizer schedule")
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:         authSvc,
		SettlementSvc:   settlementSvc,
		ArtworkSvc:      artworkSvc,
		WalletSvc:       walletSvc,
		GenerationSvc:   generationSvc,
		NotificationSvc: notificationSvc,
		ReportingSvc:    reportingSvc,
		TokenSvc:        tokenSvc,
		RateLimitStore:  rateLimitStore,
		HealthCheckers:  []ports.HealthChecker{pgHealth, redisHealth},
		Logger:          log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
