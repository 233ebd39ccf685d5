package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/supplyconnect/internal/cache"
	"github.com/GTDGit/supplyconnect/internal/config"
	"github.com/GTDGit/supplyconnect/internal/database"
	"github.com/GTDGit/supplyconnect/internal/handler"
	"github.com/GTDGit/supplyconnect/internal/middleware"
	"github.com/GTDGit/supplyconnect/internal/models"
	"github.com/GTDGit/supplyconnect/internal/repository"
	"github.com/GTDGit/supplyconnect/internal/service"
	"github.com/GTDGit/supplyconnect/internal/sse"
	"github.com/GTDGit/supplyconnect/internal/utils"
	"github.com/GTDGit/supplyconnect/internal/worker"
	"github.com/GTDGit/supplyconnect/pkg/forecast"
)

// main is the application entrypoint for the SupplyConnect API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Str("predictor", cfg.Predictor.Mode).Msg("starting supplyconnect api")
	utils.SetJWTConfig(cfg.JWTSecret, cfg.JWTTTL)

	// 3. Create context for workers and graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 4. Connect database
	db, err := database.Connect(ctx, &cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 4a. Run migrations
	if err := database.Migrate(db.DB, "file://migrations"); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 4b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 5. Initialize repositories
	accountRepo := repository.NewAccountRepository(db)
	productRepo := repository.NewProductRepository(db)
	runRepo := repository.NewPredictionRunRepository(db)
	salesRepo := repository.NewSalesRepository(db)

	// 6. Build the predictor chain
	healthChecks := map[string]handler.Pinger{
		"database": db.PingContext,
		"redis":    redisClient.Ping,
	}
	predictor := buildPredictor(cfg, healthChecks)
	if cfg.Predictor.Mode != config.PredictorModeMock {
		predictor = service.NewCachedPredictor(predictor, cache.NewPredictionCache(redisClient, cfg.Redis.PredictionTTL))
	}

	archiveSvc, err := service.NewArchiveService(ctx, &cfg.S3)
	if err != nil {
		log.Warn().Err(err).Msg("S3 archive initialization failed - uploads will not be archived")
	}
	if archiveSvc != nil {
		predictor = service.NewArchivingPredictor(predictor, archiveSvc)
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("upload archiving enabled")
	}

	// 7. Initialize services
	hub := sse.NewHub()
	filter := service.NewFileFilter(cfg.Upload.Accept)
	workbenchSvc := service.NewWorkbenchService(filter, predictor, runRepo, cfg.Workbench.Slots, cfg.Predictor.Timeout)
	workbenchSvc.SetNotifier(sse.NewHubNotifier(hub))
	productSvc := service.NewProductService(productRepo)
	dealerSvc := service.NewDealerService(accountRepo)
	authSvc := service.NewAuthService(accountRepo)
	dashboardSvc := service.NewDashboardService(salesRepo, runRepo)

	// 8. Initialize handlers
	handlers := &Handlers{
		Health:    handler.NewHealthHandler(healthChecks),
		Auth:      handler.NewAuthHandler(authSvc, middleware.NewFailedLoginLimiter(ctx)),
		Workbench: handler.NewWorkbenchHandler(workbenchSvc, productSvc, runRepo, dashboardSvc, cfg.Upload.MaxBytes),
		Dashboard: handler.NewDashboardHandler(dashboardSvc),
		Product:   handler.NewProductHandler(productSvc),
		Dealer:    handler.NewDealerHandler(dealerSvc),
		SSE:       handler.NewSSEHandler(hub),
	}

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.MaxMultipartMemory = cfg.Upload.MaxBytes
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSAllowedHosts))
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, middleware.NewSessionMiddleware())

	// 10. Start workers
	go worker.NewWorkbenchSweepWorker(workbenchSvc, cfg.Workbench.IdleTTL, cfg.Worker.WorkbenchSweepInterval).Start(ctx)
	go worker.NewHistoryPruneWorker(runRepo, cfg.Worker.HistoryRetention, cfg.Worker.HistoryPruneInterval).Start(ctx)

	// 11. Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 13. Cancel context to stop workers
	cancel()

	// 14. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// buildPredictor returns the configured prediction backend. The remote
// backend also registers its health check.
func buildPredictor(cfg *config.Config, checks map[string]handler.Pinger) service.Predictor {
	switch cfg.Predictor.Mode {
	case config.PredictorModeRemote:
		client := forecast.NewClient(cfg.Predictor.BaseURL, cfg.Predictor.APIKey, cfg.Predictor.Timeout)
		checks["forecast"] = client.Health
		log.Info().Str("base_url", cfg.Predictor.BaseURL).Msg("using remote forecasting service")
		return service.NewRemotePredictor(client)
	case config.PredictorModeLocal:
		log.Info().Int("top_n", cfg.Predictor.TopN).Msg("using local moving-average forecaster")
		return service.NewLocalPredictor(cfg.Predictor.TopN)
	default:
		log.Info().Dur("delay", cfg.Predictor.MockDelay).Msg("using mock predictor")
		return service.NewMockPredictor(cfg.Predictor.MockDelay)
	}
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health    *handler.HealthHandler
	Auth      *handler.AuthHandler
	Workbench *handler.WorkbenchHandler
	Product   *handler.ProductHandler
	Dealer    *handler.DealerHandler
	Dashboard *handler.DashboardHandler
	SSE       *handler.SSEHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, sessionMiddleware *middleware.SessionMiddleware) {
	router.GET("/v1/health", handlers.Health.GetHealth)
	router.GET("/v1/events", handlers.SSE.Stream)

	v1 := router.Group("/v1")
	v1.Use(sessionMiddleware.Handle())
	{
		v1.POST("/auth/:role/signup", handlers.Auth.Signup)
		v1.POST("/auth/:role/login", handlers.Auth.Login)
		v1.GET("/me", sessionMiddleware.RequireAny(), handlers.Auth.Me)
	}

	// Shopkeeper routes
	shop := v1.Group("/shopkeeper")
	shop.Use(sessionMiddleware.Require(models.RoleShopkeeper))
	{
		// Prediction workbench
		shop.GET("/workbench", handlers.Workbench.GetWorkbench)
		shop.GET("/workbench/chart", handlers.Workbench.GetChart)
		shop.POST("/workbench/slots", handlers.Workbench.AddSlot)
		shop.DELETE("/workbench/slots/:slotId", handlers.Workbench.RemoveSlot)
		shop.POST("/workbench/slots/:slotId/file", handlers.Workbench.SelectFile)
		shop.POST("/workbench/slots/:slotId/predict", handlers.Workbench.Predict)
		shop.POST("/workbench/slots/:slotId/apply", handlers.Workbench.ApplyPredictions)
		shop.GET("/predictions/history", handlers.Workbench.GetHistory)

		// Sales dashboard
		shop.GET("/dashboard", handlers.Dashboard.GetDashboard)

		// Product catalog
		shop.GET("/products", handlers.Product.ListProducts)
		shop.GET("/products/alerts", handlers.Product.StockAlerts)
		shop.POST("/products", handlers.Product.CreateProduct)
		shop.PATCH("/products/:id", handlers.Product.UpdateProduct)

		// Dealers
		shop.GET("/dealers/nearby", handlers.Dealer.NearbyDealers)
		shop.POST("/dealers/:dealerId/connect", handlers.Dealer.ConnectDealer)
	}

	// Dealer routes
	dealer := v1.Group("/dealer")
	dealer.Use(sessionMiddleware.Require(models.RoleDealer))
	{
		dealer.GET("/shops", handlers.Dealer.Shops)
	}
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
