// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

/*
Package config provides centralized configuration for the
recommendation service.

Configuration loads in three layers with Koanf v2, later layers
overriding earlier ones:

 1. Defaults: built-in values for every setting
 2. Config file: optional YAML file (config.yaml)
 3. Environment variables: SECTION_FIELD form, e.g. SERVER_PORT,
    DATABASE_PATH, AI_API_KEY, ENGINE_SIGNAL_WINDOW_DAYS

Config is immutable after Load and safe for concurrent reads.
*/
package config

import (
	"time"

	"github.com/cipondok/astra-villa-nexus-sub017/internal/recommend"
)

// Config holds all application settings.
type Config struct {
	Server   ServerConfig     `koanf:"server"`
	Database DatabaseConfig   `koanf:"database"`
	Security SecurityConfig   `koanf:"security"`
	Engine   recommend.Config `koanf:"engine"`
	AI       AIConfig         `koanf:"ai"`
	Events   EventsConfig     `koanf:"events"`
	Logging  LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // "development", "staging", "production"
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"` // 0 = use NumCPU
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"`

	// SeedMockData inserts demo listings on startup for local runs.
	SeedMockData bool `koanf:"seed_mock_data"`
}

// SecurityConfig holds authentication and rate-limit settings.
// Requests without a valid JWT are served as anonymous, so the secret
// is only required when signed tokens are actually issued upstream.
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// AIConfig holds settings for the optional match-explanation backend.
// Disabled or unreachable backends degrade to empty explanations.
type AIConfig struct {
	Enabled           bool          `koanf:"enabled"`
	BaseURL           string        `koanf:"base_url"`
	APIKey            string        `koanf:"api_key"`
	Model             string        `koanf:"model"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
}

// EventsConfig holds settings for the in-process event bus.
type EventsConfig struct {
	BufferSize   int           `koanf:"buffer_size"`
	CloseTimeout time.Duration `koanf:"close_timeout"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // "json" or "console"
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the built-in defaults for every setting.
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Path:                   "data/astravilla.db",
			MaxMemory:              "512MB",
			Threads:                0,
			PreserveInsertionOrder: false,
		},
		Security: SecurityConfig{
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			CORSOrigins:       []string{"*"},
		},
		Engine: *recommend.DefaultConfig(),
		AI: AIConfig{
			Enabled:           false,
			BaseURL:           "https://api.openai.com/v1",
			Model:             "gpt-4o-mini",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Events: EventsConfig{
			BufferSize:   256,
			CloseTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
