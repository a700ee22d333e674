package config

import (
	"fmt"
	"time"

	"github.com/opinionbalance/balancer/internal/domain"
	"github.com/opinionbalance/balancer/internal/llm"
	"github.com/opinionbalance/balancer/internal/logging"
	"github.com/opinionbalance/balancer/internal/reward"
	"github.com/opinionbalance/balancer/internal/store"
)

// Config is the full service configuration, loaded once at startup and
// read-only afterwards.
type Config struct {
	Service    ServiceConfig    `yaml:"service"`
	Logging    logging.Config   `yaml:"logging"`
	Database   store.Config     `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Classifier llm.Config       `yaml:"classifier"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// ServiceConfig covers the HTTP surface.
type ServiceConfig struct {
	Name            string        `yaml:"name"`
	Addr            string        `env:"HTTP_ADDR" yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// RedisConfig covers the optional score cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR" yaml:"addr"`
	Password string        `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// MonitoringConfig bounds the feedback loop. Interval and Cycles have no
// defaults: both must be configured explicitly and positive, because a
// silently defaulted loop cadence is worse than a refused startup.
type MonitoringConfig struct {
	Interval       time.Duration     `env:"MONITORING_INTERVAL" yaml:"interval"`
	Cycles         int               `env:"MONITORING_CYCLES" yaml:"cycles"`
	AmplifierCount int               `yaml:"amplifier_count"`
	Thresholds     domain.Thresholds `yaml:"thresholds"`
	Reward         reward.Config     `yaml:"reward"`
}

// Validate fails fast on any configuration the service cannot run with.
func (c *Config) Validate() error {
	if c.Service.Addr == "" {
		return fmt.Errorf("service.addr is required")
	}
	if c.Database.Driver == "" || c.Database.DSN == "" {
		return fmt.Errorf("database.driver and database.dsn are required")
	}
	if c.Monitoring.Interval <= 0 {
		return fmt.Errorf("monitoring.interval must be configured and positive, got %v", c.Monitoring.Interval)
	}
	if c.Monitoring.Cycles <= 0 {
		return fmt.Errorf("monitoring.cycles must be configured and positive, got %d", c.Monitoring.Cycles)
	}
	if err := c.Monitoring.Thresholds.Validate(); err != nil {
		return fmt.Errorf("monitoring.thresholds: %w", err)
	}
	return nil
}
