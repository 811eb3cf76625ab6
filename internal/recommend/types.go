// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

package recommend

import (
	"context"
	"math"
	"time"

	"github.com/cipondok/astra-villa-nexus-sub017/internal/models"
)

// PriceRangeUnbounded is the Max sentinel of a price range derived from
// zero observations. A range with this Max is treated as "no data", not
// as "everything matches".
const PriceRangeUnbounded = int64(math.MaxInt64)

// PriceRange is the observed price band of a user's recent activity.
type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Observed reports whether the range was derived from actual data.
func (r PriceRange) Observed() bool {
	return r.Max != PriceRangeUnbounded
}

// ExplicitPreferences are the directly user-set preference fields.
type ExplicitPreferences struct {
	MinBudget              *int64   `json:"minBudget,omitempty"`
	MaxBudget              *int64   `json:"maxBudget,omitempty"`
	PreferredLocations     []string `json:"preferredLocations"`
	PreferredPropertyTypes []string `json:"preferredPropertyTypes"`
	MinBedrooms            *int     `json:"minBedrooms,omitempty"`
	MaxBedrooms            *int     `json:"maxBedrooms,omitempty"`
	MustHaveFeatures       []string `json:"mustHaveFeatures"`
	DealBreakers           []string `json:"dealBreakers"`
}

// ImplicitPreferences are derived from recent behavior, not user-set.
type ImplicitPreferences struct {
	ViewedPriceRange  PriceRange         `json:"viewedPriceRange"`
	DwellTimeByType   map[string]float64 `json:"dwellTimeByType"`
	LocationClusters  []string           `json:"locationClusters"`
	FeatureAffinities map[string]float64 `json:"featureAffinities"`
	StylePreferences  []string           `json:"stylePreferences"`
	TimePatterns      []string           `json:"timePatterns"`
}

// UserProfile is the per-request composite the scorer runs against.
// It is rebuilt on every request, never persisted as a unit.
type UserProfile struct {
	UserID            string              `json:"userId,omitempty"`
	Explicit          ExplicitPreferences `json:"explicit"`
	Implicit          ImplicitPreferences `json:"implicit"`
	Weights           models.ScoreWeights `json:"weights"`
	DiscoveryOpenness float64             `json:"discoveryOpenness"`
	HasEnoughData     bool                `json:"hasEnoughData"`
	IsAnonymous       bool                `json:"isAnonymous"`
}

// MatchReason is one factor's contribution to a match, with the score in
// [0,1], the weight applied, and a short human-readable explanation.
type MatchReason struct {
	Factor      string  `json:"factor"`
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
	Weight      float64 `json:"weight"`
}

// MatchResult is the scoring outcome for one candidate listing.
// Scores are on a 0-100 integer scale.
type MatchResult struct {
	PropertyID       string        `json:"propertyId"`
	OverallScore     int           `json:"overallScore"`
	PreferenceScore  int           `json:"preferenceScore"`
	DiscoveryScore   int           `json:"discoveryScore"`
	MatchReasons     []MatchReason `json:"matchReasons"`
	DiscoveryReasons []MatchReason `json:"discoveryReasons,omitempty"`
	IsDiscoveryMatch bool          `json:"isDiscoveryMatch"`
}

// ScoredProperty pairs a match result with the listing it scored, in the
// shape the recommendation response returns.
type ScoredProperty struct {
	MatchResult
	Property *models.Property `json:"property"`
}

// RecommendationSet is the outcome of one orchestrated recommendation
// pass: the interleaved results plus serving metadata.
type RecommendationSet struct {
	Recommendations []ScoredProperty `json:"recommendations"`
	UserProfile     *UserProfile     `json:"userProfile"`
	Meta            SetMeta          `json:"meta"`
}

// SetMeta describes how a recommendation set was assembled.
type SetMeta struct {
	TotalCandidates    int  `json:"totalCandidates"`
	PreferenceMatches  int  `json:"preferenceMatches"`
	DiscoveryMatches   int  `json:"discoveryMatches"`
	HasPersonalization bool `json:"hasPersonalization"`
}

// MatchReport is the single-property deep-dive returned by the match
// report operation.
type MatchReport struct {
	Property      *models.Property `json:"property"`
	MatchResult   *MatchResult     `json:"matchResult"`
	UserProfile   *UserProfile     `json:"userProfile"`
	AIExplanation string           `json:"aiExplanation"`
}

// Store defines the persistence reads and writes the engine needs.
// Implemented by the database layer; defined here so the engine has no
// dependency on it.
type Store interface {
	// GetUserPreferences returns the explicit preference row for a user,
	// or nil when the user has never saved preferences.
	GetUserPreferences(ctx context.Context, userID string) (*models.UserPreferences, error)

	// GetRecentSignals returns up to limit behavior signals for a user
	// recorded since the given time, newest first.
	GetRecentSignals(ctx context.Context, userID string, since time.Time, limit int) ([]models.BehaviorSignal, error)

	// GetRecentInteractions returns up to limit legacy interaction rows
	// for a user recorded since the given time, newest first.
	GetRecentInteractions(ctx context.Context, userID string, since time.Time, limit int) ([]models.UserInteraction, error)

	// GetLearnedPreferences returns all learned-preference rows for a user.
	GetLearnedPreferences(ctx context.Context, userID string) ([]models.LearnedPreference, error)

	// GetActiveProperties returns up to limit active, approved listings,
	// newest first.
	GetActiveProperties(ctx context.Context, limit int) ([]models.Property, error)

	// GetProperty returns a single listing by ID, or nil when absent.
	GetProperty(ctx context.Context, id string) (*models.Property, error)

	// InsertSignal appends one behavior signal row.
	InsertSignal(ctx context.Context, signal *models.BehaviorSignal) error

	// UpsertUserPreferences inserts or replaces a user's explicit
	// preference row.
	UpsertUserPreferences(ctx context.Context, prefs *models.UserPreferences) error

	// GetActivitySummary tallies a user's recorded signals.
	GetActivitySummary(ctx context.Context, userID string) (*models.ActivitySummary, error)

	// UpdateRecommendationFeedback attaches feedback to a history row.
	// Silently no-ops when the row does not exist.
	UpdateRecommendationFeedback(ctx context.Context, recommendationID, feedback string) error
}

// EventPublisher dispatches the fire-and-forget write paths. Publishing
// must not block; failures are logged downstream, never surfaced to the
// request that triggered them.
type EventPublisher interface {
	// PublishRecommendationServed records which listings were shown.
	PublishRecommendationServed(userID, context string, results []ScoredProperty)

	// PublishPreferenceReinforcement applies learned-preference upserts
	// derived from a qualifying signal.
	PublishPreferenceReinforcement(userID string, prefs []models.LearnedPreference)
}

// Explainer produces an optional natural-language rationale for a match.
// Implementations are expected to be best-effort; the engine degrades
// any error to an empty explanation.
type Explainer interface {
	Explain(ctx context.Context, property *models.Property, result *MatchResult) (string, error)
}
