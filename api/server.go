package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"

	"portscout/config"
	_ "portscout/docs"
	"portscout/logging"
	"portscout/scanner"
	"portscout/services"
)

const shutdownTimeout = 10 * time.Second

// Run initializes dependencies and serves the scan API until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.Configure(os.Stdout, cfg.LogLevel)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	table := services.New()
	servicesFile := cfg.ServicesFile
	if servicesFile == "" {
		servicesFile = services.SystemFile
	}
	if n, err := table.LoadFile(servicesFile); err != nil {
		logger.Warn("services file not fully loaded", "path", servicesFile, "loaded", n, "error", err)
	}
	logger.Info("service names loaded", "entries", table.Len())

	store := NewRedisStore(redisClient, cfg.JobTTL)
	limiter := NewRateLimiter(redisClient, cfg.RateLimit, cfg.RateWindow)
	router := NewRouter(store, limiter, cfg.APIKey, logger)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.Consumers; i++ {
		consumer := NewConsumer(store, scanner.NewExecutor(scanner.DefaultWorkers()), nil, table.Name, logger.With("consumer", i))
		group.Go(func() error {
			return consumer.Run(groupCtx)
		})
	}

	group.Go(func() error {
		logger.Info("starting portscout API server", "addr", cfg.ListenAddr, "consumers", cfg.Consumers)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(groupCtx), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down portscout API server")
		return httpServer.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// NewRouter builds the Gin engine with middleware and versioned routes.
// Authentication is enabled only when apiKey is non-empty; a nil limiter disables rate limiting.
func NewRouter(store JobStore, limiter *RateLimiter, apiKey string, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLoggingMiddleware(logger), SecurityHeadersMiddleware())

	router.GET("/healthz", healthHandler)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	if limiter != nil {
		v1.Use(RateLimitMiddleware(limiter, logger))
	}
	if apiKey != "" {
		v1.Use(AuthMiddleware(apiKey, logger))
	}

	NewServer(store).RegisterRoutes(v1)
	return router
}
