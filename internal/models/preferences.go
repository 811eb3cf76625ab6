// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

package models

import "time"

// ScoreWeights holds the per-factor weights used by the scorer. Weights
// are non-negative and need not sum to 1; the scorer normalizes by the
// total weight it actually applied.
type ScoreWeights struct {
	Location float64 `json:"location"`
	Price    float64 `json:"price"`
	Size     float64 `json:"size"`
	Features float64 `json:"features"`
	Type     float64 `json:"type"`
}

// DefaultScoreWeights returns the stock weight allocation used when a
// user has not overridden their weights.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Location: 0.25,
		Price:    0.25,
		Size:     0.20,
		Features: 0.15,
		Type:     0.15,
	}
}

// UserPreferences is the explicit preference row a user edits directly.
// Zero-or-one row per user; absence means "use defaults".
type UserPreferences struct {
	UserID                 string        `json:"user_id" db:"user_id"`
	MinBudget              *int64        `json:"minBudget,omitempty" db:"min_budget"`
	MaxBudget              *int64        `json:"maxBudget,omitempty" db:"max_budget"`
	PreferredLocations     []string      `json:"preferredLocations,omitempty" db:"preferred_locations"`
	PreferredPropertyTypes []string      `json:"preferredPropertyTypes,omitempty" db:"preferred_property_types"`
	MinBedrooms            *int          `json:"minBedrooms,omitempty" db:"min_bedrooms"`
	MaxBedrooms            *int          `json:"maxBedrooms,omitempty" db:"max_bedrooms"`
	MustHaveFeatures       []string      `json:"mustHaveFeatures,omitempty" db:"must_have_features"`
	DealBreakers           []string      `json:"dealBreakers,omitempty" db:"deal_breakers"`
	Weights                *ScoreWeights `json:"weights,omitempty" db:"weights"`
	DiscoveryOpenness      *float64      `json:"discoveryOpenness,omitempty" db:"discovery_openness"`
	UpdatedAt              time.Time     `json:"updated_at" db:"updated_at"`
}

// Learned-preference pattern types.
const (
	PatternFeatureAffinity = "feature_affinity"
	PatternStylePreference = "style_preference"
)

// PatternValue is the JSON payload of a learned-preference row. Affinity
// rows carry Score, style rows carry Preferred.
type PatternValue struct {
	Score     *float64 `json:"score,omitempty"`
	Preferred *bool    `json:"preferred,omitempty"`
}

// LearnedPreference is a persisted, reinforced belief about a user's
// taste, keyed by (user_id, pattern_type, pattern_key). Upserts merge on
// the composite key so repeated reinforcement never duplicates rows.
type LearnedPreference struct {
	UserID           string       `json:"user_id" db:"user_id"`
	PatternType      string       `json:"pattern_type" db:"pattern_type"`
	PatternKey       string       `json:"pattern_key" db:"pattern_key"`
	PatternValue     PatternValue `json:"pattern_value" db:"pattern_value"`
	ConfidenceScore  float64      `json:"confidence_score" db:"confidence_score"`
	SampleCount      int          `json:"sample_count" db:"sample_count"`
	LastReinforcedAt time.Time    `json:"last_reinforced_at" db:"last_reinforced_at"`
}
