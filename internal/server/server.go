package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/jeswanthjohn/api-forge/internal/apperror"
	"github.com/jeswanthjohn/api-forge/internal/config"
	"github.com/jeswanthjohn/api-forge/internal/database"
	custommiddleware "github.com/jeswanthjohn/api-forge/internal/middleware"
	"github.com/jeswanthjohn/api-forge/internal/ratelimit"
	"github.com/jeswanthjohn/api-forge/internal/repository"
	"github.com/jeswanthjohn/api-forge/internal/service"
	"github.com/jeswanthjohn/api-forge/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config  *config.Config
	logger  *zap.Logger
	db      *sql.DB
	redis   *redis.Client
	limiter ratelimit.Limiter

	stopJanitor context.CancelFunc
}

// Deps are the optional backends the server is built on. A nil DB keeps
// products in memory and a nil Redis client keeps rate windows in memory.
type Deps struct {
	DB    *sql.DB
	Redis *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Deps) *Server {
	s := &Server{
		config: cfg,
		logger: logger,
		db:     deps.DB,
		redis:  deps.Redis,
	}
	s.limiter = s.newLimiter()

	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack(logger)...)
	if cfg.Server.MaxInFlight > 0 {
		router.Use(middleware.Throttle(cfg.Server.MaxInFlight))
	}
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, !cfg.Server.IsProduction()))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Health check endpoint, not rate limited
	var ping transport.PingFunc
	if s.db != nil {
		ping = func(ctx context.Context) error { return database.Ping(ctx, s.db) }
	}
	router.Method(http.MethodGet, "/health", transport.NewHealthHandler(ping, cfg.Server.Env, logger))

	var productRepo repository.ProductRepository
	if s.db != nil {
		productRepo = repository.NewProductRepository(s.db)
	} else {
		productRepo = repository.NewMemoryProductRepository()
	}
	productService := service.NewProductService(productRepo, logger)
	productHandler := transport.NewProductHandler(productService, logger)

	router.Group(func(r chi.Router) {
		r.Use(custommiddleware.RateLimitMiddleware(s.limiter, custommiddleware.ClientKey, logger))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Write([]byte("REST API is running..."))
		})
		productHandler.RegisterRoutes(r)
	})

	router.NotFound(custommiddleware.Handle(logger, func(w http.ResponseWriter, r *http.Request) error {
		return apperror.NotFound("Route")
	}))

	s.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) newLimiter() ratelimit.Limiter {
	rl := s.config.RateLimit
	policy := ratelimit.Policy{Max: rl.Max, Window: rl.Window}

	if rl.Backend == config.RateLimitRedis && s.redis != nil {
		s.logger.Info("Using Redis rate limiter", zap.String("prefix", rl.KeyPrefix))
		return ratelimit.NewRedisLimiter(s.redis, policy, rl.KeyPrefix)
	}
	if rl.Backend == config.RateLimitRedis {
		s.logger.Warn("Redis rate limiter requested without a Redis client, using memory")
	}

	ml := ratelimit.NewMemoryLimiter(policy, ratelimit.WithCleanupEvery(rl.CleanupInterval))
	ctx, cancel := context.WithCancel(context.Background())
	s.stopJanitor = cancel
	ml.StartJanitor(ctx)
	return ml
}

// Limiter returns the admission controller in use
func (s *Server) Limiter() ratelimit.Limiter { return s.limiter }

// Reload applies the parts of cfg that can change at runtime
func (s *Server) Reload(cfg *config.Config) {
	r, ok := s.limiter.(ratelimit.Reconfigurable)
	if !ok {
		return
	}

	policy := ratelimit.Policy{Max: cfg.RateLimit.Max, Window: cfg.RateLimit.Window}
	r.Reconfigure(policy)
	s.logger.Info("Rate limit policy reloaded",
		zap.Int("max", policy.Max),
		zap.Duration("window", policy.Window),
	)
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.stopJanitor != nil {
		s.stopJanitor()
	}

	// Close database connection
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
