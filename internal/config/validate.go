// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

package config

import (
	"fmt"
	"strings"
)

// Validate checks cross-field configuration invariants. Called by Load
// after all layers are merged.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be 1-65535, got %d", c.Server.Port)
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("unknown environment %q", c.Server.Environment)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("database threads must be non-negative, got %d", c.Database.Threads)
	}

	if c.Security.RateLimitRequests <= 0 {
		return fmt.Errorf("rate limit requests must be positive, got %d", c.Security.RateLimitRequests)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit window must be positive, got %s", c.Security.RateLimitWindow)
	}

	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	if c.AI.Enabled {
		if c.AI.BaseURL == "" || !strings.HasPrefix(c.AI.BaseURL, "http") {
			return fmt.Errorf("ai base_url must be an http(s) URL, got %q", c.AI.BaseURL)
		}
		if c.AI.Model == "" {
			return fmt.Errorf("ai model is required when ai is enabled")
		}
		if c.AI.RequestsPerSecond <= 0 {
			return fmt.Errorf("ai requests_per_second must be positive, got %v", c.AI.RequestsPerSecond)
		}
	}

	if c.Events.BufferSize <= 0 {
		return fmt.Errorf("events buffer size must be positive, got %d", c.Events.BufferSize)
	}
	return nil
}
