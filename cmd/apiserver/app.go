package main

import (
	"context"

	"github.com/gin-gonic/gin"

	appmol "github.com/turtacn/KeyIP-Substructure/internal/application/molecule"
	"github.com/turtacn/KeyIP-Substructure/internal/config"
	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/auth"
	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/database/redis"
	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/monitoring/prometheus"
	grpcserver "github.com/turtacn/KeyIP-Substructure/internal/interfaces/grpc"
	"github.com/turtacn/KeyIP-Substructure/internal/interfaces/grpc/services"
	httpserver "github.com/turtacn/KeyIP-Substructure/internal/interfaces/http"
	"github.com/turtacn/KeyIP-Substructure/internal/interfaces/http/handlers"
	"github.com/turtacn/KeyIP-Substructure/internal/interfaces/http/middleware"
)

// app holds the wired servers and the resources they must release.  grpc is
// nil unless grpc.enabled is set.
type app struct {
	server  *httpserver.Server
	router  *gin.Engine
	grpc    *grpcserver.Server
	closers []func() error
}

// buildApp wires the service graph described by cfg.  A configured but
// unreachable Redis is logged and skipped.  The gRPC listener is bound here,
// so a taken port fails the build.
func buildApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*app, error) {
	a := &app{}
	var (
		svcOpts  []appmol.ServiceOption
		checkers []handlers.HealthChecker
		metrics  *prometheus.AppMetrics
		collect  prometheus.MetricsCollector
	)

	if cfg.Metrics.Enabled {
		c, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			Subsystem:            cfg.Metrics.Subsystem,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger.Named("metrics"))
		if err != nil {
			return nil, err
		}
		collect = c
		metrics = prometheus.NewAppMetrics(c)
		svcOpts = append(svcOpts, appmol.WithMetrics(metrics))
	}

	if cfg.Redis.Enabled {
		client, err := redis.NewClient(ctx, cfg.Redis, logger.Named("redis"))
		if err != nil {
			logger.Warn("screening cache disabled", logging.Err(err))
		} else {
			a.closers = append(a.closers, client.Close)
			checkers = append(checkers, &redisHealthAdapter{client: client})
			svcOpts = append(svcOpts, appmol.WithHitCache(redis.NewHitCache(client, logger.Named("cache"),
				redis.WithPrefix(cfg.Redis.KeyPrefix),
				redis.WithTTL(cfg.Matcher.CacheTTL),
			)))
		}
	}

	svc := appmol.NewService(cfg.Matcher, logger.Named("matcher"), svcOpts...)

	var cors *middleware.CORSConfig
	if len(cfg.Server.CORSOrigins) > 0 {
		c := middleware.DefaultCORSConfig()
		c.AllowedOrigins = cfg.Server.CORSOrigins
		cors = &c
	}

	keys := auth.NewKeySet(cfg.Server.APIKeys)
	var limiter middleware.RateLimiter
	if rl := cfg.Server.RateLimit; rl.Enabled {
		l := middleware.NewTokenBucketLimiter(rl.RequestsPerSecond, rl.Burst, rl.CleanupInterval)
		a.closers = append(a.closers, func() error { l.Stop(); return nil })
		limiter = l
	}

	gin.SetMode(cfg.Server.Mode)
	a.router = httpserver.NewRouter(httpserver.RouterConfig{
		SubstructureHandler: handlers.NewSubstructureHandler(svc, logger.Named("http"), metrics),
		HealthHandler:       handlers.NewHealthHandler(version, checkers...),
		Logging:             middleware.DefaultLoggingConfig(),
		CORS:                cors,
		MaxBodySize:         cfg.Server.MaxBodySize,
		APIKeys:             keys,
		RateLimiter:         limiter,
		Logger:              logger.Named("http"),
		Metrics:             metrics,
		MetricsCollector:    collect,
		MetricsPath:         cfg.Metrics.Path,
	})
	a.server = httpserver.NewServer(cfg.Server, a.router, logger)

	if cfg.GRPC.Enabled {
		gs, err := grpcserver.NewServer(cfg.GRPC,
			grpcserver.WithLogger(logger.Named("grpc")),
			grpcserver.WithMetrics(metrics),
			grpcserver.WithAPIKeys(keys),
		)
		if err != nil {
			a.close()
			return nil, err
		}
		services.NewSubstructureService(svc, logger.Named("grpc")).Register(gs)
		a.grpc = gs
	}
	return a, nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
