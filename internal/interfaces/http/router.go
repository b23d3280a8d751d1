package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/auth"
	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Substructure/internal/interfaces/http/handlers"
	"github.com/turtacn/KeyIP-Substructure/internal/interfaces/http/middleware"
)

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the complete HTTP route tree.
type RouterConfig struct {
	// Handlers
	SubstructureHandler *handlers.SubstructureHandler
	HealthHandler       *handlers.HealthHandler

	// Middleware
	Logging     middleware.LoggingConfig
	CORS        *middleware.CORSConfig
	MaxBodySize int64
	// APIKeys guards /api/v1 when it holds at least one key.
	APIKeys *auth.KeySet
	// RateLimiter, when set, throttles /api/v1 per API key or client IP.
	RateLimiter middleware.RateLimiter

	// Infrastructure
	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
	MetricsPath      string
}

// NewRouter constructs the complete HTTP route tree from the given configuration.
// Set the gin mode before calling it.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true

	// --- Global middleware (applied to every request) ---
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	r.Use(middleware.RequestLogging(logger, cfg.Logging))
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}

	// --- Public health endpoints ---
	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(r)
	}

	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	// --- API v1 ---
	api := r.Group("/api/v1")
	if cfg.SubstructureHandler != nil {
		sub := api.Group("/substructure", middleware.BodyLimit(cfg.MaxBodySize))
		if cfg.APIKeys.Enabled() {
			sub.Use(middleware.APIKeyAuth(cfg.APIKeys, logger))
		}
		if cfg.RateLimiter != nil {
			sub.Use(middleware.RateLimit(cfg.RateLimiter, nil))
		}
		cfg.SubstructureHandler.RegisterRoutes(sub)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.ErrorResponse{
			Code:      "NOT_FOUND",
			Message:   "route not found",
			RequestID: middleware.GetRequestID(c),
		})
	})
	return r
}
