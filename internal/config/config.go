// Package config defines all configuration structures for the substructure
// matching services.  No I/O or parsing logic lives here, only plain data
// types and validation.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/KeyIP-Substructure/internal/domain/substructure"
	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/monitoring/logging"
	mtypes "github.com/turtacn/KeyIP-Substructure/pkg/types/molecule"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// CORSOrigins lists the browser origins allowed to call the API.  Empty
	// disables CORS headers.
	CORSOrigins []string `mapstructure:"cors_origins"`
	// APIKeys, when non-empty, are the keys accepted on the substructure API
	// as a bearer token or X-API-Key header.
	APIKeys   []string        `mapstructure:"api_keys"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig holds the per-client token bucket applied to the matching
// endpoints.
type RateLimitConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

// GRPCConfig holds gRPC server tunables.
type GRPCConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	MaxRecvMsgSize   int           `mapstructure:"max_recv_msg_size"`
	MaxSendMsgSize   int           `mapstructure:"max_send_msg_size"`
	EnableReflection bool          `mapstructure:"enable_reflection"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns host:port for net.Listen.
func (g GRPCConfig) Addr() string {
	return fmt.Sprintf("%s:%d", g.Host, g.Port)
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MatcherConfig holds the defaults applied to match requests that leave an
// option unset, plus the screening limits.
type MatcherConfig struct {
	Algorithm  string `mapstructure:"algorithm"` // "frontier" | "refinement" | "depthfirst"
	Mode       string `mapstructure:"mode"`      // "subgraph" | "exact"
	Unique     string `mapstructure:"unique"`    // "none" | "atoms" | "bonds"
	Limit      int    `mapstructure:"limit"`
	Stereo     bool   `mapstructure:"stereo"`
	Components bool   `mapstructure:"components"`

	// ScreenAlgorithm is used for library screening, where one compiled
	// query meets many targets.
	ScreenAlgorithm string `mapstructure:"screen_algorithm"`
	ScreenWorkers   int    `mapstructure:"screen_workers"`
	MaxLibrarySize  int    `mapstructure:"max_library_size"`
	// MaxMappings caps the mappings returned by one match request.
	MaxMappings int           `mapstructure:"max_mappings"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

// RedisConfig holds Redis connection parameters for the screening cache.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Subsystem string `mapstructure:"subsystem"`
	Path      string `mapstructure:"path"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.  Every infrastructure component
// and application service reads its settings from the relevant sub-struct.
type Config struct {
	Server  ServerConfig      `mapstructure:"server"`
	GRPC    GRPCConfig        `mapstructure:"grpc"`
	Log     logging.LogConfig `mapstructure:"log"`
	Matcher MatcherConfig     `mapstructure:"matcher"`
	Redis   RedisConfig       `mapstructure:"redis"`
	Metrics MetricsConfig     `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}
	if c.Server.MaxBodySize < 0 {
		return fmt.Errorf("config: server.max_body_size must be ≥ 0, got %d", c.Server.MaxBodySize)
	}

	if rl := c.Server.RateLimit; rl.Enabled {
		if rl.RequestsPerSecond <= 0 {
			return fmt.Errorf("config: server.rate_limit.requests_per_second must be > 0, got %v", rl.RequestsPerSecond)
		}
		if rl.Burst < 1 {
			return fmt.Errorf("config: server.rate_limit.burst must be ≥ 1, got %d", rl.Burst)
		}
	}
	for i, k := range c.Server.APIKeys {
		if k == "" {
			return fmt.Errorf("config: server.api_keys[%d] is empty", i)
		}
	}

	// gRPC
	if c.GRPC.Enabled {
		if c.GRPC.Port < 1 || c.GRPC.Port > 65535 {
			return fmt.Errorf("config: grpc.port %d is out of range [1, 65535]", c.GRPC.Port)
		}
		if c.GRPC.Port == c.Server.Port && c.GRPC.Host == c.Server.Host {
			return fmt.Errorf("config: grpc.port %d collides with server.port", c.GRPC.Port)
		}
	}
	if c.GRPC.MaxRecvMsgSize < 0 || c.GRPC.MaxSendMsgSize < 0 {
		return fmt.Errorf("config: grpc message size limits must be ≥ 0")
	}

	// Matcher
	if _, err := substructure.ParseAlgorithm(c.Matcher.Algorithm); err != nil {
		return fmt.Errorf("config: matcher.algorithm %q is invalid; expected frontier|refinement|depthfirst", c.Matcher.Algorithm)
	}
	if _, err := substructure.ParseAlgorithm(c.Matcher.ScreenAlgorithm); err != nil {
		return fmt.Errorf("config: matcher.screen_algorithm %q is invalid; expected frontier|refinement|depthfirst", c.Matcher.ScreenAlgorithm)
	}
	if _, err := substructure.ParseMode(c.Matcher.Mode); err != nil {
		return fmt.Errorf("config: matcher.mode %q is invalid; expected subgraph|exact", c.Matcher.Mode)
	}
	if !mtypes.UniqueMode(c.Matcher.Unique).IsValid() {
		return fmt.Errorf("config: matcher.unique %q is invalid; expected none|atoms|bonds", c.Matcher.Unique)
	}
	if c.Matcher.Limit < 0 {
		return fmt.Errorf("config: matcher.limit must be ≥ 0, got %d", c.Matcher.Limit)
	}
	if c.Matcher.ScreenWorkers < 1 {
		return fmt.Errorf("config: matcher.screen_workers must be ≥ 1, got %d", c.Matcher.ScreenWorkers)
	}
	if c.Matcher.MaxLibrarySize < 1 {
		return fmt.Errorf("config: matcher.max_library_size must be ≥ 1, got %d", c.Matcher.MaxLibrarySize)
	}
	if c.Matcher.MaxMappings < 1 {
		return fmt.Errorf("config: matcher.max_mappings must be ≥ 1, got %d", c.Matcher.MaxMappings)
	}

	// Redis
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when redis is enabled")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}

	// Log
	switch c.Log.Level {
	case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError:
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Metrics
	if c.Metrics.Enabled && c.Metrics.Path == "" {
		return fmt.Errorf("config: metrics.path is required when metrics are enabled")
	}

	return nil
}
