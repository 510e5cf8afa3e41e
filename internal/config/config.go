// Package config handles loading and validating the application
// configuration from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Stream    StreamConfig    `yaml:"stream"`
	Aggregate AggregateConfig `yaml:"aggregate"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// StreamConfig defines the Kafka observation stream settings. Disabled
// by default; when disabled, observations only arrive through the API.
type StreamConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Brokers   []string      `yaml:"brokers"`
	Topic     string        `yaml:"topic"`
	GroupID   string        `yaml:"group_id"`
	BatchSize int           `yaml:"batch_size"`
	MaxWait   time.Duration `yaml:"max_wait"`
}

// AggregateConfig defines the statistics parameters.
type AggregateConfig struct {
	WindowsDays  []int   `yaml:"windows_days"`
	MinSamples   int     `yaml:"min_samples"`
	TrimFraction float64 `yaml:"trim_fraction"`
}

// ScheduleConfig defines cron intervals for the aggregation cycle.
type ScheduleConfig struct {
	AggregationInterval time.Duration `yaml:"aggregation_interval"`
	LockTTL             time.Duration `yaml:"lock_ttl"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment
// variable substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyStreamDefaults(&cfg.Stream)
	applyAggregateDefaults(&cfg.Aggregate)
	applyScheduleDefaults(&cfg.Schedule)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyStreamDefaults(s *StreamConfig) {
	if s.Topic == "" {
		s.Topic = "putter-observations"
	}
	if s.GroupID == "" {
		s.GroupID = "putterbase"
	}
	if s.BatchSize == 0 {
		s.BatchSize = 100
	}
	if s.MaxWait == 0 {
		s.MaxWait = 5 * time.Second
	}
}

func applyAggregateDefaults(a *AggregateConfig) {
	if len(a.WindowsDays) == 0 {
		a.WindowsDays = []int{60, 90, 180}
	}
	if a.MinSamples == 0 {
		a.MinSamples = 5
	}
	if a.TrimFraction == 0 {
		a.TrimFraction = 0.05
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.AggregationInterval == 0 {
		s.AggregationInterval = 6 * time.Hour
	}
	if s.LockTTL == 0 {
		s.LockTTL = 30 * time.Minute
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Database.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if cfg.Database.Name == "" {
		errs = append(errs, fmt.Errorf("database.name is required"))
	}
	if cfg.Database.User == "" {
		errs = append(errs, fmt.Errorf("database.user is required"))
	}

	if cfg.Stream.Enabled && len(cfg.Stream.Brokers) == 0 {
		errs = append(errs, fmt.Errorf("stream.brokers is required when stream.enabled is true"))
	}

	for _, w := range cfg.Aggregate.WindowsDays {
		if w <= 0 {
			errs = append(errs, fmt.Errorf("aggregate.windows_days entries must be positive (got %d)", w))
		}
	}
	if cfg.Aggregate.TrimFraction < 0 || cfg.Aggregate.TrimFraction >= 0.5 {
		errs = append(errs, fmt.Errorf(
			"aggregate.trim_fraction must be in [0, 0.5) (got %g)",
			cfg.Aggregate.TrimFraction,
		))
	}
	if cfg.Aggregate.MinSamples < 1 {
		errs = append(errs, fmt.Errorf("aggregate.min_samples must be at least 1"))
	}

	return errors.Join(errs...)
}
