package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "KEYIP"

// envKeys lists every leaf key so that AutomaticEnv can see variables for keys
// the config file does not mention.
var envKeys = []string{
	"server.host", "server.port", "server.mode", "server.read_timeout", "server.write_timeout",
	"server.max_body_size", "server.shutdown_timeout", "server.cors_origins", "server.api_keys",
	"server.rate_limit.enabled", "server.rate_limit.requests_per_second", "server.rate_limit.burst",
	"server.rate_limit.cleanup_interval",
	"grpc.enabled", "grpc.host", "grpc.port", "grpc.max_recv_msg_size", "grpc.max_send_msg_size",
	"grpc.enable_reflection", "grpc.shutdown_timeout",
	"log.level", "log.format", "log.output_paths", "log.error_output_paths",
	"matcher.algorithm", "matcher.mode", "matcher.unique", "matcher.limit", "matcher.stereo",
	"matcher.components", "matcher.screen_algorithm", "matcher.screen_workers", "matcher.max_library_size",
	"matcher.max_mappings", "matcher.cache_ttl",
	"redis.enabled", "redis.addr", "redis.password", "redis.db", "redis.pool_size",
	"redis.min_idle_conns", "redis.dial_timeout", "redis.read_timeout", "redis.write_timeout",
	"redis.key_prefix",
	"metrics.enabled", "metrics.namespace", "metrics.subsystem", "metrics.path",
}

// newViper builds a pre-configured Viper instance: YAML file type, KEYIP_ env
// prefix, automatic env binding, and a key replacer that maps "." → "_" so
// that nested keys like "redis.addr" resolve to "KEYIP_REDIS_ADDR".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}
	return v
}

// Load reads the YAML file at configPath, merges any KEYIP_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from KEYIP_* environment variables,
// with no config file required.
//
// Environment variable naming convention:
//
//	KEYIP_<SECTION>_<FIELD>   e.g.  KEYIP_MATCHER_ALGORITHM, KEYIP_REDIS_ADDR
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// LoadOrDefault loads configPath when it is non-empty and otherwise falls back
// to LoadFromEnv.
func LoadOrDefault(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	return Load(configPath)
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath for changes and invokes onChange with the newly
// parsed Config whenever the file is modified on disk.  It is meant for
// settings that are safe to swap at runtime, such as the log level and the
// matcher defaults.
//
// Watch is non-blocking; viper runs the watcher goroutine.  A change that
// fails to parse or validate is reported to onError, when given, and
// onChange is not called.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// MustLoad is a convenience wrapper around Load that panics on any error.
// It is intended for use in main() where a config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
