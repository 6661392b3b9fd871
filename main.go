package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/cinema-service/internal/auth"
	"github.com/SAP-F-2025/cinema-service/internal/cache"
	"github.com/SAP-F-2025/cinema-service/internal/config"
	"github.com/SAP-F-2025/cinema-service/internal/events"
	"github.com/SAP-F-2025/cinema-service/internal/handlers"
	"github.com/SAP-F-2025/cinema-service/internal/jobs"
	"github.com/SAP-F-2025/cinema-service/internal/metrics"
	"github.com/SAP-F-2025/cinema-service/internal/repositories"
	"github.com/SAP-F-2025/cinema-service/internal/repositories/memory"
	"github.com/SAP-F-2025/cinema-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/cinema-service/internal/services"
	"github.com/SAP-F-2025/cinema-service/internal/tmdb"
	"github.com/SAP-F-2025/cinema-service/internal/utils"
	"github.com/SAP-F-2025/cinema-service/internal/validator"
	"github.com/SAP-F-2025/cinema-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, caching and sign-in links disabled", "error", err)
			redisClient = nil
		}
	}
	cacheManager := cache.NewCacheManager(redisClient)

	// Initialize repositories
	var (
		repo        repositories.Repository
		repoManager repositories.RepositoryManager
	)
	switch cfg.DatabaseDriver {
	case "memory":
		logger.Warn("Using the in-memory store, data is lost on restart")
		repoManager = memory.NewManager()
	default:
		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		repoManager = postgres.NewRepositoryManager(postgres.RepositoryConfig{
			DB:          db,
			RedisClient: redisClient,
		})
	}
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}
	repo = repoManager.GetRepository()

	// Event bus
	bus, err := events.NewBus(events.BusConfig{
		Backend:       cfg.Events.Backend,
		KafkaBrokers:  cfg.Events.KafkaBrokers,
		ConsumerGroup: cfg.Events.ConsumerGroup,
		BufferSize:    cfg.Events.BufferSize,
	}, slogLogger)
	if err != nil {
		log.Fatalf("Failed to initialize event bus: %v", err)
	}

	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	if err := events.RunLogMailer(rootCtx, bus, slogLogger); err != nil {
		logger.Warn("Sign-in link mailer not started", "error", err)
	}

	// Identity providers
	authDeps := services.AuthDependencies{
		Tokens: auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL),
		SSO: auth.NewCasdoorProvider(auth.CasdoorConfig{
			Endpoint:         cfg.Casdoor.Endpoint,
			ClientID:         cfg.Casdoor.ClientID,
			ClientSecret:     cfg.Casdoor.ClientSecret,
			Certificate:      cfg.Casdoor.Cert,
			OrganizationName: cfg.Casdoor.Organization,
			ApplicationName:  cfg.Casdoor.Application,
			RedirectURI:      cfg.Casdoor.RedirectURI,
		}),
		AdminEmails: cfg.AdminEmails,
	}
	if cacheManager.Available() {
		authDeps.Links = auth.NewLinkStore(cacheManager.Auth, cfg.SignInLink.BaseURL, cfg.SignInLink.TTL)
	}
	if cfg.Google.ClientID != "" {
		authDeps.Google = auth.NewGoogleVerifier(cfg.Google.ClientID)
	}

	tmdbClient := tmdb.New(tmdb.Config{
		BaseURL:   cfg.TMDB.BaseURL,
		APIKey:    cfg.TMDB.APIKey,
		ReadToken: cfg.TMDB.ReadToken,
		Language:  cfg.TMDB.Language,
		Timeout:   cfg.TMDB.Timeout,
		CacheTTL:  cfg.TMDB.CacheTTL,
	}, cacheManager.TMDB)

	// Initialize validator
	validator := validator.New(cfg.SupportedLanguages...)

	// Initialize services
	serviceManager := services.NewServiceManager(services.ServiceDependencies{
		Repo:      repo,
		Manager:   repoManager,
		Publisher: bus,
		Cache:     cacheManager,
		Auth:      authDeps,
		Metadata:  tmdbClient,
	}, slogLogger, validator)
	if err := serviceManager.Initialize(rootCtx); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Background jobs
	scheduler := jobs.NewScheduler(slogLogger, 10*time.Minute)
	if err := scheduler.AddMetadataRefresh(cfg.MetadataRefreshCron, serviceManager.Metadata()); err != nil {
		log.Fatalf("Failed to schedule jobs: %v", err)
	}
	scheduler.Start()

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.New(registry)

	var limiter handlers.RateLimiter
	if cfg.RateLimitPerMin > 0 {
		if redisClient != nil {
			limiter = handlers.NewRedisRateLimiter(redisClient, cfg.RateLimitPerMin)
		} else {
			limiter = handlers.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
		}
	}

	handlers.SetupMiddleware(router, logger, handlers.MiddlewareConfig{
		CORSOrigins: cfg.CORSOrigins,
		Limiter:     limiter,
		Metrics:     httpMetrics,
	})

	handlerManager := handlers.NewHandlerManager(serviceManager, handlers.RouterDependencies{
		Subscriber:    bus,
		Cache:         cacheManager,
		Metrics:       httpMetrics,
		EventsBackend: bus.Backend(),
		Heartbeat:     handlers.DefaultHeartbeat,
	}, logger)
	handlerManager.SetupRoutes(router)

	// Create HTTP server. No write timeout: snapshot streams stay open.
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return rootCtx },
	}

	go func() {
		logger.Info("Starting server",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"db_driver", cfg.DatabaseDriver,
			"events", bus.Backend(),
			"redis", cacheManager.Available(),
			"tmdb", tmdbClient.Configured())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Request contexts derive from rootCtx; cancelling it ends open snapshot streams.
	stopBackground()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	scheduler.Stop(ctx)

	if err := bus.Close(); err != nil {
		logger.Error("Failed to close event bus", "error", err)
	}

	if err := serviceManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}

	if redisClient != nil {
		redisClient.Close()
	}

	logger.Info("Server exited")
}
