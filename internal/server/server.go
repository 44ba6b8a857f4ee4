package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/imagestore"
	"storefront/internal/metrics"
	custommiddleware "storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies are the external resources the server is built on. A nil
// Redis client disables the snapshot cache and write rate limiting.
type Dependencies struct {
	DB      *sql.DB
	Redis   *redis.Client
	Images  imagestore.Store
	Metrics *metrics.Metrics
}

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	deps   Dependencies
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Dependencies) *Server {
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	router := chi.NewRouter()
	router.Use(custommiddleware.DefaultMiddlewareStack(logger)...)
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.IsDevelopment()))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Get("/ready", readyHandler(deps.DB, logger))
	router.Handle("/metrics", deps.Metrics.Handler())

	if local, ok := deps.Images.(*imagestore.LocalStore); ok {
		router.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(local.Dir()))))
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(deps.DB)
	categoryRepo := repository.NewCategoryRepository(deps.DB)
	storeRepo := repository.NewStoreRepository(deps.DB)

	snapshot := cache.NewNopCache()
	var writeLimits []func(http.Handler) http.Handler
	if deps.Redis != nil {
		snapshot = cache.NewRedisCache(deps.Redis, cfg.Catalog.SnapshotTTL)
		writeLimits = append(writeLimits, custommiddleware.RateLimitMiddleware(deps.Redis, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "catalog_writes",
		}, logger))
	}

	// Initialize services
	catalogService := service.NewCatalogService(productRepo, categoryRepo, deps.Images, snapshot, deps.Metrics, logger, service.Options{
		UploadConcurrency: cfg.Catalog.UploadConcurrency,
	})

	// Initialize handlers
	productHandler := transport.NewProductHandler(catalogService, storeRepo, logger, cfg.Catalog.MaxUploadBytes)
	categoryHandler := transport.NewCategoryHandler(catalogService, logger)

	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	writers := custommiddleware.RequireRole([]string{custommiddleware.RoleMerchant, custommiddleware.RoleAdmin}, logger)

	// Register routes
	productHandler.RegisterRoutes(router, authMiddleware, append([]func(http.Handler) http.Handler{writers}, writeLimits...)...)
	categoryHandler.RegisterRoutes(router, authMiddleware, custommiddleware.RequireAdmin(logger))

	return &Server{
		Server: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:           router,
			IdleTimeout:       time.Minute,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      60 * time.Second,
		},
		config: cfg,
		logger: logger,
		deps:   deps,
	}
}

func readyHandler(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if db == nil {
			custommiddleware.RespondWithError(w, http.StatusServiceUnavailable, "database not configured")
			return
		}
		if err := db.PingContext(ctx); err != nil {
			logger.Warn("Readiness check failed", zap.Error(err))
			custommiddleware.RespondWithError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// Close releases the database, Redis and image store connections
func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.deps.Redis != nil {
		if err := s.deps.Redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if closer, ok := s.deps.Images.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			s.logger.Error("Failed to close image store", zap.Error(err))
		}
	}

	if s.deps.DB != nil {
		if err := s.deps.DB.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
