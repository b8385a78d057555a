// Placewise - Tourism Places API and Personalized Recommendations
// Copyright 2026 Placewise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/placewise/placewise

// Package config provides layered configuration for Placewise.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Config is immutable after Load() and safe for concurrent read access.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults, an optional
// YAML file, and environment variables.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Security  SecurityConfig  `koanf:"security"`
	Recommend RecommendConfig `koanf:"recommend"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_PORT: Listen port (default: 8080)
//   - HTTP_HOST: Listen host (default: 0.0.0.0)
//   - HTTP_TIMEOUT: Read/write timeout (default: 30s)
//   - ENVIRONMENT: development or production (default: development)
type ServerConfig struct {
	Port        int           `koanf:"port" validate:"gte=1,lte=65535"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment" validate:"oneof=development production"`
}

// DatabaseConfig holds DuckDB settings.
//
// Environment Variables:
//   - DUCKDB_PATH: Database file path (default: /data/placewise.duckdb)
//   - DUCKDB_MAX_MEMORY: DuckDB memory limit (default: 2GB)
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	// Threads limits DuckDB worker threads. 0 = use runtime.NumCPU().
	Threads int `koanf:"threads" validate:"gte=0"`
}

// SecurityConfig holds API-surface security settings.
//
// JWTSecret is used only to extract the caller's account identity from bearer
// tokens issued by the external auth service. An empty secret disables
// identity extraction and every request is treated as anonymous.
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"gte=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// RecommendConfig holds recommendation engine settings.
//
// The hyperparameter defaults match the production model: rank-100 factors
// trained for 50 epochs over the aggregated interaction signals.
type RecommendConfig struct {
	// ModelPath is the directory holding the persisted model file.
	ModelPath string `koanf:"model_path"`

	// TrainOnStartup triggers a background training run after boot.
	TrainOnStartup bool `koanf:"train_on_startup"`

	// Rank is the latent factor dimensionality. Default: 100.
	Rank int `koanf:"rank" validate:"gte=1,lte=1024"`

	// Epochs is the number of training passes. Default: 50.
	Epochs int `koanf:"epochs" validate:"gte=1,lte=1000"`

	// LearningRate is the SGD step size. Default: 0.01.
	LearningRate float64 `koanf:"learning_rate" validate:"gt=0"`

	// Regularization is the L2 penalty on factors. Default: 0.05.
	Regularization float64 `koanf:"regularization" validate:"gte=0"`

	// MinSignals is the minimum deduplicated signal count required to train.
	// Below this, training is a no-op. Default: 20.
	MinSignals int `koanf:"min_signals" validate:"gte=1"`

	// Seed fixes the random source for the train/test split and factor
	// initialization. 0 = time-seeded (non-deterministic). Default: 0.
	Seed int64 `koanf:"seed"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Validate checks cross-field constraints that struct tags cannot express.
// Tag-level bounds are checked by the validator during Load.
func (c *Config) Validate() error {
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Recommend.ModelPath == "" {
		return fmt.Errorf("recommend.model_path must not be empty")
	}
	if !c.Security.RateLimitDisabled && c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("security.rate_limit_window must be positive when rate limiting is enabled")
	}
	if c.Server.Environment == "production" && c.Security.JWTSecret == "" {
		// Identity extraction off in production is almost always a
		// misconfiguration; recommendations degrade to top-rated for everyone.
		return fmt.Errorf("security.jwt_secret must be set in production")
	}
	return nil
}
