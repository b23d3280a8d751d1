// Package config provides configuration loading, defaults, and validation for
// the substructure matching services.
package config

import (
	"runtime"
	"strings"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerHost            = "0.0.0.0"
	DefaultServerPort            = 8080
	DefaultServerMode            = "release"
	DefaultServerReadTimeout     = 30 * time.Second
	DefaultServerWriteTimeout    = 60 * time.Second
	DefaultServerMaxBodySize     = 8 << 20
	DefaultServerShutdownTimeout = 15 * time.Second

	DefaultRateLimitRequestsPerSecond = 10
	DefaultRateLimitBurst             = 20
	DefaultRateLimitCleanupInterval   = 5 * time.Minute

	DefaultGRPCHost            = "0.0.0.0"
	DefaultGRPCPort            = 9090
	DefaultGRPCMaxMsgSize      = 16 << 20
	DefaultGRPCShutdownTimeout = 15 * time.Second

	DefaultMatcherAlgorithm       = "frontier"
	DefaultMatcherScreenAlgorithm = "depthfirst"
	DefaultMatcherMode            = "subgraph"
	DefaultMatcherUnique          = "none"
	DefaultMatcherMaxLibrarySize  = 10000
	DefaultMatcherMaxMappings     = 1000
	DefaultMatcherCacheTTL        = time.Hour

	DefaultRedisAddr        = "localhost:6379"
	DefaultRedisPoolSize    = 10
	DefaultRedisDialTimeout = 5 * time.Second
	DefaultRedisKeyPrefix   = "keyip:substructure:"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "keyip"
	DefaultMetricsSubsystem = "substructure"
	DefaultMetricsPath      = "/metrics"
)

// ApplyDefaults fills every zero-value field in cfg with the platform default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.  Booleans cannot be
// told apart from "unset" and keep their zero value.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultServerMaxBodySize
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}

	if cfg.Server.RateLimit.RequestsPerSecond == 0 {
		cfg.Server.RateLimit.RequestsPerSecond = DefaultRateLimitRequestsPerSecond
	}
	if cfg.Server.RateLimit.Burst == 0 {
		cfg.Server.RateLimit.Burst = DefaultRateLimitBurst
	}
	if cfg.Server.RateLimit.CleanupInterval == 0 {
		cfg.Server.RateLimit.CleanupInterval = DefaultRateLimitCleanupInterval
	}

	// ── gRPC ──────────────────────────────────────────────────────────────────
	if cfg.GRPC.Host == "" {
		cfg.GRPC.Host = DefaultGRPCHost
	}
	if cfg.GRPC.Port == 0 {
		cfg.GRPC.Port = DefaultGRPCPort
	}
	if cfg.GRPC.MaxRecvMsgSize == 0 {
		cfg.GRPC.MaxRecvMsgSize = DefaultGRPCMaxMsgSize
	}
	if cfg.GRPC.MaxSendMsgSize == 0 {
		cfg.GRPC.MaxSendMsgSize = DefaultGRPCMaxMsgSize
	}
	if cfg.GRPC.ShutdownTimeout == 0 {
		cfg.GRPC.ShutdownTimeout = DefaultGRPCShutdownTimeout
	}

	// ── Matcher ───────────────────────────────────────────────────────────────
	if cfg.Matcher.Algorithm == "" {
		cfg.Matcher.Algorithm = DefaultMatcherAlgorithm
	}
	if cfg.Matcher.ScreenAlgorithm == "" {
		cfg.Matcher.ScreenAlgorithm = DefaultMatcherScreenAlgorithm
	}
	if cfg.Matcher.Mode == "" {
		cfg.Matcher.Mode = DefaultMatcherMode
	}
	if cfg.Matcher.Unique == "" {
		cfg.Matcher.Unique = DefaultMatcherUnique
	}
	if cfg.Matcher.ScreenWorkers == 0 {
		cfg.Matcher.ScreenWorkers = runtime.GOMAXPROCS(0)
	}
	if cfg.Matcher.MaxLibrarySize == 0 {
		cfg.Matcher.MaxLibrarySize = DefaultMatcherMaxLibrarySize
	}
	if cfg.Matcher.MaxMappings == 0 {
		cfg.Matcher.MaxMappings = DefaultMatcherMaxMappings
	}
	if cfg.Matcher.CacheTTL == 0 {
		cfg.Matcher.CacheTTL = DefaultMatcherCacheTTL
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = DefaultRedisPoolSize
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = DefaultRedisDialTimeout
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	// DB is an int; 0 is a valid explicit value so we cannot distinguish "not
	// set" from "set to 0".  We leave it as-is (0 is also the default).

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}

// Default returns a Config holding only defaults.  It passes Validate.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
