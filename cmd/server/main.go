package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/solarbank/transferd/internal/adapter/http"
	"github.com/solarbank/transferd/internal/adapter/http/handler"
	"github.com/solarbank/transferd/internal/adapter/http/middleware"
	postgresRepo "github.com/solarbank/transferd/internal/adapter/repository/postgres"
	redisRepo "github.com/solarbank/transferd/internal/adapter/repository/redis"
	"github.com/solarbank/transferd/internal/infrastructure/config"
	"github.com/solarbank/transferd/internal/infrastructure/logger"
	"github.com/solarbank/transferd/internal/infrastructure/metrics"
	"github.com/solarbank/transferd/internal/infrastructure/postgres"
	"github.com/solarbank/transferd/internal/infrastructure/redis"
	"github.com/solarbank/transferd/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	log.Logger = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis when configured; the rate limiter is skipped otherwise
	var rateLimiter *middleware.RateLimiter
	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")

		store := redisRepo.NewRateLimitStore(redisClient)
		rateLimiter = middleware.NewRateLimiter(store, cfg.RateLimitRequests, cfg.RateLimitWindow)
	}

	// Metrics
	registry := prometheus.DefaultRegisterer
	m := metrics.New(registry)
	httpMetrics := middleware.NewHTTPMetrics(registry)

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool, cfg.LockTimeout)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	transferRepo := postgresRepo.NewTransferRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log.Logger)

	// Initialize use cases
	accountUC := usecase.NewAccountUseCase(accountRepo, idGen)
	transferUC := usecase.NewTransferUseCase(txManager, accountRepo, transferRepo, idGen, retrier, cfg.TransferTimeout)

	// Initialize handlers
	accountHandler := handler.NewAccountHandler(accountUC, m)
	transferHandler := handler.NewTransferHandler(transferUC, m)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:  accountHandler,
		TransferHandler: transferHandler,
		HealthHandler:   healthHandler,
		Logging:         middleware.NewLoggingMiddleware(log.Logger),
		HTTPMetrics:     httpMetrics,
		RateLimiter:     rateLimiter,
		MetricsGatherer: prometheus.DefaultGatherer,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
