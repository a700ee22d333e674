// Command monitord runs the opinion-balance monitoring service: it exposes
// the task API and drives the measurement/intervention feedback loop for
// every registered task.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opinionbalance/balancer/internal/bootstrap"
	"github.com/opinionbalance/balancer/internal/config"
	"github.com/opinionbalance/balancer/internal/logging"
)

const defaultShutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "monitord: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load[config.Config](config.Path("config.yml"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	components, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	logger.Info("monitord starting",
		logging.String("addr", cfg.Service.Addr),
		logging.String("db_driver", cfg.Database.Driver),
		logging.Duration("monitoring_interval", cfg.Monitoring.Interval),
		logging.Int("monitoring_cycles", cfg.Monitoring.Cycles))

	serverErr := make(chan error, 1)
	go func() { serverErr <- components.Server.Start() }()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	shutdownTimeout := cfg.Service.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Stop accepting requests first, then cancel the monitoring tasks so
	// each one gets its finalization window.
	if err := components.Server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", logging.Err(err))
	}
	if err := components.Supervisor.Shutdown(shutdownCtx); err != nil {
		logger.Error("supervisor shutdown failed", logging.Err(err))
	}

	logger.Info("monitord stopped")
	return nil
}
