package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/imagestore"
	"storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/server"
	"storefront/migrations"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	// In-flight uploads get 30 seconds to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")
	done <- true
}

// connectRedis returns nil when Redis is disabled. An unreachable Redis is
// logged and kept, since the cache and rate limiter both degrade gracefully.
func connectRedis(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) *redis.Client {
	if !cfg.Enabled {
		log.Info("Redis disabled, running without snapshot cache or rate limiting")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis ping failed", zap.Error(err), zap.String("addr", client.Options().Addr))
	}
	return client
}

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting storefront catalog API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Backend),
	)

	ctx := context.Background()

	dbService, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database health check", zap.Any("health", dbService.Health()))

	if err := database.RunMigrations(ctx, dbService.DB(), migrations.FS, log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	images, err := imagestore.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatal("Failed to initialize image store", zap.Error(err))
	}

	srv := server.NewServer(cfg, log, server.Dependencies{
		DB:      dbService.DB(),
		Redis:   connectRedis(ctx, cfg.Redis, log),
		Images:  images,
		Metrics: metrics.New(),
	})

	done := make(chan bool, 1)
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Graceful shutdown complete")
}
