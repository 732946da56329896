package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"catalog-curator/internal/cache"
	"catalog-curator/internal/config"
	custommiddleware "catalog-curator/internal/middleware"
	"catalog-curator/internal/repository"
	"catalog-curator/internal/service"
	"catalog-curator/internal/slug"
	"catalog-curator/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, redisClient *redis.Client) *Server {
	// Create router
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env != "production"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         "rate_limit",
	}, logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Initialize repositories
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	linkRepo := repository.NewLinkRepository(db)
	marketplaceRepo := repository.NewMarketplaceRepository(db)

	// Initialize the cache facade and services
	cacheFacade := cache.NewRedis(redisClient)
	slugService := slug.NewService(
		repository.NewSlugLookup(productRepo, categoryRepo, marketplaceRepo),
		cacheFacade,
		cfg.Slug,
		logger,
	)
	curationService := service.NewCurationService(
		productRepo, categoryRepo, linkRepo, slugService, cacheFacade, cfg.Catalog, logger,
	)
	catalogService := service.NewCatalogService(
		curationService, productRepo, linkRepo, categoryRepo, slugService,
		&service.LogAuditSink{Logger: logger.Named("audit")},
		logger,
	)

	// Initialize handlers
	productHandler := transport.NewProductHandler(catalogService, slugService, logger)

	// Register routes behind token auth and the admin-role check
	productHandler.RegisterRoutes(router,
		custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger),
		custommiddleware.RequireAdmin(logger),
	)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
