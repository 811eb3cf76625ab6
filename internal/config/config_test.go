// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Database.Path != "data/astravilla.db" {
		t.Errorf("unexpected default database path %q", cfg.Database.Path)
	}
	if cfg.Engine.SignalWindowDays != 30 {
		t.Errorf("expected default signal window 30, got %d", cfg.Engine.SignalWindowDays)
	}
	if cfg.AI.Enabled {
		t.Error("AI should be disabled by default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_MAX_MEMORY", "1GB")
	t.Setenv("ENGINE_SIGNAL_WINDOW_DAYS", "14")
	t.Setenv("SECURITY_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SECURITY_RATE_LIMIT_WINDOW", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Database.MaxMemory != "1GB" {
		t.Errorf("expected max memory 1GB, got %q", cfg.Database.MaxMemory)
	}
	if cfg.Engine.SignalWindowDays != 14 {
		t.Errorf("expected signal window 14, got %d", cfg.Engine.SignalWindowDays)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORS origins not split: %v", cfg.Security.CORSOrigins)
	}
	if cfg.Security.RateLimitWindow != 30*time.Second {
		t.Errorf("expected 30s rate window, got %s", cfg.Security.RateLimitWindow)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 7070\nlogging:\n  level: debug\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("expected port 7070 from file, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level from file, got %q", cfg.Logging.Level)
	}
}

func TestEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 7070\n"), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("SERVER_PORT", "9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("expected env to win over file, got %d", cfg.Server.Port)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad environment", func(c *Config) { c.Server.Environment = "prod" }},
		{"empty db path", func(c *Config) { c.Database.Path = "" }},
		{"zero rate limit", func(c *Config) { c.Security.RateLimitRequests = 0 }},
		{"bad engine window", func(c *Config) { c.Engine.SignalWindowDays = 0 }},
		{"ai enabled without url", func(c *Config) { c.AI.Enabled = true; c.AI.BaseURL = "" }},
		{"zero event buffer", func(c *Config) { c.Events.BufferSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"SERVER_PORT", "server.port"},
		{"DATABASE_MAX_MEMORY", "database.max_memory"},
		{"ENGINE_SIGNAL_WINDOW_DAYS", "engine.signal_window_days"},
		{"AI_API_KEY", "ai.api_key"},
		{"JWT_SECRET", "security.jwt_secret"},
		{"SEED_MOCK_DATA", "database.seed_mock_data"},
		{"HOME", ""},
		{"PATH", ""},
		{"SERVER_", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
