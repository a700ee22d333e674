// Package bootstrap wires the service components together for the monitord
// binary.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/opinionbalance/balancer/internal/api"
	"github.com/opinionbalance/balancer/internal/config"
	"github.com/opinionbalance/balancer/internal/intervention"
	"github.com/opinionbalance/balancer/internal/llm"
	"github.com/opinionbalance/balancer/internal/logging"
	"github.com/opinionbalance/balancer/internal/monitor"
	"github.com/opinionbalance/balancer/internal/report"
	"github.com/opinionbalance/balancer/internal/reward"
	"github.com/opinionbalance/balancer/internal/scoring"
	"github.com/opinionbalance/balancer/internal/store"
	"github.com/opinionbalance/balancer/internal/telemetry"
)

const defaultCacheTTL = 24 * time.Hour

// Components holds everything the binary needs to run and shut down.
type Components struct {
	Store      *store.SQLStore
	Supervisor *monitor.Supervisor
	Server     *api.Server
	Telemetry  *telemetry.Provider

	redisClient *redis.Client
	logger      logging.Logger
}

// New builds all service components from validated configuration. The
// database schema is ensured as part of startup; a failure here is fatal.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Components, error) {
	tel := telemetry.NewProvider()

	db, err := store.Open(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	c := &Components{Store: db, Telemetry: tel, logger: logger}

	scorerOpts := []scoring.ScorerOption{scoring.WithFallbackCounter(tel)}
	if cfg.Redis.Addr != "" {
		c.redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ttl := cfg.Redis.TTL
		if ttl <= 0 {
			ttl = defaultCacheTTL
		}
		scorerOpts = append(scorerOpts, scoring.WithCache(scoring.NewRedisCache(c.redisClient, ttl, logger)))
		logger.Info("score cache enabled", logging.String("redis_addr", cfg.Redis.Addr))
	}

	// Without an API key the scorer runs on the rule-based estimator alone.
	var classifier scoring.Classifier
	var health api.HealthChecker
	if cfg.Classifier.APIKey != "" {
		client := llm.NewClient(cfg.Classifier, logger)
		classifier = client
		health = client
	} else {
		logger.Warn("no classifier api key configured, scoring degrades to rule-based estimates")
	}

	scorer := scoring.NewScorer(classifier, logger, scorerOpts...)
	aggregator := scoring.NewAggregator(db, scorer, logger)

	builder := report.NewBuilder(cfg.Monitoring.Thresholds, logger)
	evaluator := report.NewEvaluator(logger)

	executorOpts := []intervention.ExecutorOption{intervention.WithMetrics(tel)}
	if cfg.Monitoring.AmplifierCount > 0 {
		executorOpts = append(executorOpts, intervention.WithAmplifierCount(cfg.Monitoring.AmplifierCount))
	}
	executor := intervention.NewExecutor(db,
		intervention.StaticStrategyProvider{},
		intervention.TemplateSynthesizer{},
		logger, executorOpts...)

	rewards := reward.NewUpdater(cfg.Monitoring.Reward, nil, logger)

	loop := monitor.NewLoop(
		monitor.Config{Cycles: cfg.Monitoring.Cycles},
		aggregator, builder, evaluator, executor,
		db, rewards, cfg.Monitoring.Thresholds, tel, logger)

	c.Supervisor = monitor.NewSupervisor(ctx, loop, tel, logger)

	handler := api.NewHandler(c.Supervisor, db, scorer, db, health, cfg.Monitoring.Interval, logger)
	c.Server = api.NewServer(handler, api.ServerConfig{
		Addr:         cfg.Service.Addr,
		ReadTimeout:  cfg.Service.ReadTimeout,
		WriteTimeout: cfg.Service.WriteTimeout,
		Debug:        cfg.Logging.Development,
	}, tel.Handler(), logger)

	return c, nil
}

// Close releases held resources. Safe to call after a partial shutdown.
func (c *Components) Close() {
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			c.logger.Warn("redis close failed", logging.Err(err))
		}
	}
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			c.logger.Warn("database close failed", logging.Err(err))
		}
	}
}
