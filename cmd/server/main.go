package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	_ "github.com/renatodap/brandkit-generator-sub000/docs" // Swagger docs
	"github.com/renatodap/brandkit-generator-sub000/internal/brandkit"
	"github.com/renatodap/brandkit-generator-sub000/internal/completion"
	"github.com/renatodap/brandkit-generator-sub000/internal/config"
	"github.com/renatodap/brandkit-generator-sub000/internal/database"
	"github.com/renatodap/brandkit-generator-sub000/internal/eventbus"
	"github.com/renatodap/brandkit-generator-sub000/internal/handlers"
	"github.com/renatodap/brandkit-generator-sub000/internal/logo"
	"github.com/renatodap/brandkit-generator-sub000/internal/metrics"
	"github.com/renatodap/brandkit-generator-sub000/internal/middleware"
	"github.com/renatodap/brandkit-generator-sub000/internal/orchestration"
	"github.com/renatodap/brandkit-generator-sub000/internal/sharing"
	"github.com/renatodap/brandkit-generator-sub000/internal/telemetry"
	"github.com/renatodap/brandkit-generator-sub000/internal/usage"
)

const (
	version        = "0.1.0"
	defaultJobTime = 30 * time.Minute
)

// @title Brand Kit API
// @version 0.1.0
// @description Brand kit generation service: quality-gated vector logo synthesis.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx := context.Background()

	zapConfig := zap.NewProductionConfig()
	zapConfig.OutputPaths = []string{"stdout"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}
	logger, err := zapConfig.Build()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg := config.Load()
	logger.Info("Brand kit API starting...",
		zap.String("version", version),
		zap.String("environment", cfg.Environment),
		zap.String("llm_provider", cfg.LLMProvider),
	)

	shutdownTelemetry, err := telemetry.InitTracer(ctx, "brandkit-api", cfg.OTLPEndpoint)
	if err != nil {
		// Collector may be down; tracing is optional.
		logger.Error("failed to initialize telemetry", zap.Error(err))
	} else {
		defer func() {
			if err := shutdownTelemetry(context.Background()); err != nil {
				logger.Error("failed to shutdown telemetry", zap.Error(err))
			}
		}()
	}

	db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	rdb, err := database.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	var events *eventbus.Publisher
	if cfg.NATSURL != "" {
		events, err = eventbus.Connect(cfg.NATSURL, logger)
		if err != nil {
			logger.Error("failed to connect to NATS, events disabled", zap.Error(err))
		} else {
			defer events.Close()
		}
	}

	// Completion service: provider behind breaker, rate limit and metrics.
	provider, err := completion.NewProvider(ctx, cfg.Completion(), logger.Named("completion"))
	if err != nil {
		logger.Fatal("failed to create completion client", zap.Error(err))
	}
	breaker := completion.NewBreaker()
	breaker.OnStateChange = func(from, to completion.BreakerState) {
		metrics.BreakerState.Set(float64(to))
		logger.Warn("completion circuit breaker state changed",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}
	var limiter *rate.Limiter
	if cfg.LLMRatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.LLMRatePerSec), int(cfg.LLMRatePerSec)+1)
	}
	llm := completion.NewGuarded(provider, breaker, limiter, logger.Named("completion"))

	pipeline := logo.NewPipeline(llm, cfg.Pipeline(),
		logo.WithLogger(logger.Named("logo")),
		logo.WithObserver(orchestration.MetricsObserver),
		logo.WithObserver(orchestration.HeartbeatObserver),
	)

	brandKits := brandkit.NewService(db.Pool(), logger)
	resultCache := brandkit.NewCache(rdb.Client(), cfg.ResultCacheTTL)
	usageService := usage.NewService(db.Pool(), logger)
	shares := sharing.NewService(cfg.ShareSecret)

	activities := &orchestration.Activities{
		Generator: pipeline,
		Store:     brandKits,
		Jobs:      resultCache,
		Usage:     usageService,
		Events:    events,
		Logger:    logger.Named("jobs"),
	}

	// Async jobs run on Temporal when configured, in-process otherwise.
	var (
		starter        handlers.JobStarter
		inline         *orchestration.InlineStarter
		temporalClient client.Client
		temporalWorker worker.Worker
	)
	if cfg.TemporalAddress != "" {
		temporalClient, err = orchestration.InitTemporalClient(cfg.TemporalAddress, logger)
		if err != nil {
			logger.Error("failed to connect to temporal, running jobs in-process", zap.Error(err))
		} else if temporalWorker, err = orchestration.StartWorker(temporalClient, activities); err != nil {
			logger.Error("failed to start temporal worker, running jobs in-process", zap.Error(err))
			temporalClient.Close()
			temporalClient = nil
		} else {
			starter = orchestration.NewTemporalStarter(temporalClient)
			logger.Info("connected to temporal", zap.String("task_queue", orchestration.TaskQueue))
		}
	}
	if starter == nil {
		jobTimeout := cfg.GenerationTimeout
		if jobTimeout <= 0 {
			jobTimeout = defaultJobTime
		}
		inline = orchestration.NewInlineStarter(activities, jobTimeout, logger.Named("jobs"))
		starter = inline
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS())

	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var eventsHealth interface{ Connected() bool }
	if events != nil {
		eventsHealth = events
	}
	healthHandler := handlers.NewHealthHandler(db, rdb, eventsHealth, breaker)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/deep", healthHandler.DeepHealth)

	authHandler := handlers.NewAuthHandler(db.Pool(), cfg.JWTSecret, logger)
	logoHandler := handlers.NewLogoHandler(pipeline, resultCache, usageService, activities, starter, cfg.DailyGenerationQuota, logger)
	brandKitHandler := handlers.NewBrandKitHandler(brandKits, shares, cfg.ShareTokenTTL, logger)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimitMiddleware(middleware.StrictRateLimiter))
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Public share links
		v1.GET("/share/:token", middleware.RateLimitMiddleware(middleware.DefaultRateLimiter), brandKitHandler.GetShared)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		protected.Use(middleware.RateLimitMiddleware(middleware.DefaultRateLimiter))
		{
			protected.GET("/auth/me", authHandler.GetCurrentUser)

			logos := protected.Group("/logos")
			{
				generate := logos.Group("")
				generate.Use(middleware.RateLimitMiddleware(middleware.StrictRateLimiter))
				generate.Use(middleware.CircuitBreakerMiddleware(breaker))
				generate.POST("/generate", logoHandler.Generate)
				generate.POST("/jobs", logoHandler.StartJob)

				logos.GET("/jobs/:id", logoHandler.GetJob)
			}

			kits := protected.Group("/brand-kits")
			{
				kits.GET("", brandKitHandler.List)
				kits.GET("/:id", brandKitHandler.Get)
				kits.GET("/:id/logo.svg", brandKitHandler.LogoSVG)
				kits.POST("/:id/share", brandKitHandler.Share)
				kits.DELETE("/:id", brandKitHandler.Delete)
			}
		}
	}

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// Synchronous generation runs every attempt before responding.
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if inline != nil {
		if err := inline.Wait(shutdownCtx); err != nil {
			logger.Warn("in-process jobs still running at shutdown", zap.Error(err))
		}
	}
	if temporalWorker != nil {
		temporalWorker.Stop()
	}
	if temporalClient != nil {
		temporalClient.Close()
	}

	logger.Info("server exited gracefully")
}
