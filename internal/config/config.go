// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Nested sections map to nested koanf keys, e.g. store.driver.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/paddock/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// MaxCandidateLimit caps GET /v1/candidates?limit.
	MaxCandidateLimit int `koanf:"max_candidate_limit"`

	// DefaultCandidateLimit applies when the limit parameter is absent.
	DefaultCandidateLimit int `koanf:"default_candidate_limit"`

	// MinScore drops ranked candidates scoring below it. 0 keeps all.
	MinScore float64 `koanf:"min_score"`

	Store     StoreConfig     `koanf:"store"`
	Distance  DistanceConfig  `koanf:"distance"`
	Scoring   ScoringConfig   `koanf:"scoring"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
}

// StoreConfig selects and configures persistence.
type StoreConfig struct {
	// Driver is memory, sqlite or postgres.
	Driver string `koanf:"driver"`
	// DSN is the database file path (sqlite) or connection string (postgres).
	DSN string `koanf:"dsn"`
	// Fixtures optionally names a YAML catalog loaded at startup.
	Fixtures string `koanf:"fixtures"`
}

// DistanceConfig configures the distance provider and its guard.
type DistanceConfig struct {
	// Provider is constant or table.
	Provider          string             `koanf:"provider"`
	ConstantKm        float64            `koanf:"constant_km"`
	Table             map[string]float64 `koanf:"table"`
	TimeoutMS         int                `koanf:"timeout_ms"`
	BreakerFailures   uint32             `koanf:"breaker_failures"`
	BreakerCooldownMS int                `koanf:"breaker_cooldown_ms"`
}

// Timeout returns the per-lookup timeout.
func (d DistanceConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutMS) * time.Millisecond
}

// BreakerCooldown returns how long the breaker stays open.
func (d DistanceConfig) BreakerCooldown() time.Duration {
	return time.Duration(d.BreakerCooldownMS) * time.Millisecond
}

// ScoringConfig selects the strategy and carries the weights of both.
type ScoringConfig struct {
	Strategy string                 `koanf:"strategy"`
	Additive scoring.AdditiveConfig `koanf:"additive"`
	Weighted scoring.WeightedConfig `koanf:"weighted"`
}

// Weights returns the scoring constants.
func (s ScoringConfig) Weights() scoring.Config {
	return scoring.Config{Additive: s.Additive, Weighted: s.Weighted}
}

// RateLimitConfig bounds like registrations per user.
type RateLimitConfig struct {
	LikesPerMinute int `koanf:"likes_per_minute"`
	Burst          int `koanf:"burst"`
}

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Distance providers.
const (
	DistanceConstant = "constant"
	DistanceTable    = "table"
)

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	weights := scoring.DefaultConfig()
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":9080",
		MaxCandidateLimit:     50,
		DefaultCandidateLimit: 10,
		MinScore:              0,
		Store: StoreConfig{
			Driver: DriverMemory,
		},
		Distance: DistanceConfig{
			Provider:          DistanceConstant,
			ConstantKm:        5,
			TimeoutMS:         200,
			BreakerFailures:   5,
			BreakerCooldownMS: 30_000,
		},
		Scoring: ScoringConfig{
			Strategy: scoring.StrategyAdditive,
			Additive: weights.Additive,
			Weighted: weights.Weighted,
		},
		RateLimit: RateLimitConfig{
			LikesPerMinute: 60,
			Burst:          10,
		},
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MaxCandidateLimit < 1:
		return fmt.Errorf("%w: max_candidate_limit must be positive", ErrInvalidConfig)
	case c.DefaultCandidateLimit < 1 || c.DefaultCandidateLimit > c.MaxCandidateLimit:
		return fmt.Errorf("%w: default_candidate_limit must be within 1..%d", ErrInvalidConfig, c.MaxCandidateLimit)
	case c.MinScore < 0 || c.MinScore > 100:
		return fmt.Errorf("%w: min_score must be within 0..100", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("%w: store.dsn is required for %s", ErrInvalidConfig, c.Store.Driver)
		}
	default:
		return fmt.Errorf("%w: unknown store.driver %q", ErrInvalidConfig, c.Store.Driver)
	}

	switch c.Distance.Provider {
	case DistanceConstant:
		if c.Distance.ConstantKm < 0 {
			return fmt.Errorf("%w: distance.constant_km must not be negative", ErrInvalidConfig)
		}
	case DistanceTable:
	default:
		return fmt.Errorf("%w: unknown distance.provider %q", ErrInvalidConfig, c.Distance.Provider)
	}
	if c.Distance.TimeoutMS <= 0 {
		return fmt.Errorf("%w: distance.timeout_ms must be positive", ErrInvalidConfig)
	}

	if _, err := scoring.New(c.Scoring.Strategy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.RateLimit.LikesPerMinute < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("%w: ratelimit values must not be negative", ErrInvalidConfig)
	}
	return nil
}
