// Command apiserver serves the substructure matching API over HTTP and,
// when enabled, gRPC.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/KeyIP-Substructure/internal/config"
	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment and built-in defaults)")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	grpcPort := flag.Int("grpc-port", 0, "gRPC server port (overrides config)")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *httpPort > 0 {
		cfg.Server.Port = *httpPort
	}
	if *grpcPort > 0 {
		cfg.GRPC.Port = *grpcPort
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *configPath, logger); err != nil {
		logger.Error("API server exited with error", logging.Err(err))
		os.Exit(1)
	}
}

// run serves until ctx is cancelled, then shuts down gracefully.
func run(ctx context.Context, cfg *config.Config, configPath string, logger logging.Logger) error {
	logger.Info("starting KeyIP substructure API server",
		logging.String("version", version),
		logging.String("addr", cfg.Server.Addr()),
		logging.String("algorithm", cfg.Matcher.Algorithm),
		logging.Bool("cache", cfg.Redis.Enabled),
		logging.Bool("grpc", cfg.GRPC.Enabled),
	)

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(); err != nil {
			logger.Warn("failed to release resources", logging.Err(err))
		}
	}()

	if configPath != "" {
		err := config.Watch(configPath,
			func(*config.Config) {
				logger.Info("configuration file changed; restart to apply", logging.String("path", configPath))
			},
			func(err error) {
				logger.Warn("configuration file change rejected", logging.Err(err))
			},
		)
		if err != nil {
			logger.Warn("configuration watch disabled", logging.Err(err))
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- a.server.Start() }()

	grpcErrCh := make(chan error, 1)
	if a.grpc != nil {
		go func() { grpcErrCh <- a.grpc.Start() }()
	}

	var serveErr error
	select {
	case serveErr = <-errCh:
	case serveErr = <-grpcErrCh:
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	if a.grpc != nil {
		if err := a.grpc.Stop(context.Background()); err != nil && serveErr == nil {
			serveErr = err
		}
	}
	if err := a.server.Shutdown(context.Background()); err != nil && serveErr == nil {
		serveErr = err
	}
	if serveErr != nil {
		return serveErr
	}
	return <-errCh
}
