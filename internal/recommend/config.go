// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

package recommend

import "fmt"

// Config holds the engine's operational limits. Scoring thresholds are
// deliberately not configurable; they are part of the tested contract
// and live as named constants in scorer.go.
type Config struct {
	// SignalWindowDays is the trailing window for behavior aggregation.
	SignalWindowDays int `koanf:"signal_window_days"`

	// MaxSignals caps how many recent signals feed profile building.
	MaxSignals int `koanf:"max_signals"`

	// MaxInteractions caps how many legacy interaction rows are merged in.
	MaxInteractions int `koanf:"max_interactions"`

	// CandidateLimit caps the listing fetch for one recommendation pass.
	CandidateLimit int `koanf:"candidate_limit"`

	// DefaultLimit is the result count when the caller omits limit.
	DefaultLimit int `koanf:"default_limit"`

	// MaxLimit clamps the caller-supplied limit.
	MaxLimit int `koanf:"max_limit"`

	// HistoryTopN is how many served results are persisted as history.
	HistoryTopN int `koanf:"history_top_n"`

	// MinEngagementEvents is the signal+interaction count at which a
	// profile counts as personalized.
	MinEngagementEvents int `koanf:"min_engagement_events"`
}

// DefaultConfig returns the stock engine configuration.
func DefaultConfig() *Config {
	return &Config{
		SignalWindowDays:    30,
		MaxSignals:          200,
		MaxInteractions:     200,
		CandidateLimit:      200,
		DefaultLimit:        12,
		MaxLimit:            50,
		HistoryTopN:         5,
		MinEngagementEvents: 5,
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.SignalWindowDays <= 0 {
		return fmt.Errorf("signal_window_days must be positive, got %d", c.SignalWindowDays)
	}
	if c.MaxSignals <= 0 {
		return fmt.Errorf("max_signals must be positive, got %d", c.MaxSignals)
	}
	if c.MaxInteractions <= 0 {
		return fmt.Errorf("max_interactions must be positive, got %d", c.MaxInteractions)
	}
	if c.CandidateLimit <= 0 {
		return fmt.Errorf("candidate_limit must be positive, got %d", c.CandidateLimit)
	}
	if c.DefaultLimit <= 0 {
		return fmt.Errorf("default_limit must be positive, got %d", c.DefaultLimit)
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("max_limit %d must be >= default_limit %d", c.MaxLimit, c.DefaultLimit)
	}
	if c.HistoryTopN < 0 {
		return fmt.Errorf("history_top_n must be non-negative, got %d", c.HistoryTopN)
	}
	if c.MinEngagementEvents <= 0 {
		return fmt.Errorf("min_engagement_events must be positive, got %d", c.MinEngagementEvents)
	}
	return nil
}
