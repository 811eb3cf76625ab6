// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cipondok/astra-villa-nexus-sub017/internal/models"
)

// ErrPropertyNotFound is returned when a match report references a
// listing that does not exist.
var ErrPropertyNotFound = errors.New("property not found")

// Reinforcement constants for the signal write path.
const (
	// maxReinforcedFeatures caps how many listing features one signal
	// can reinforce.
	maxReinforcedFeatures = 5

	reinforceStrongScore      = 0.8
	reinforceWeakScore        = 0.5
	reinforceAffinityConfid   = 0.6
	reinforceStyleConfidence  = 0.7
)

// Engine orchestrates profile building, scoring, interleaving, and the
// signal write paths. Stateless per request; safe for concurrent use.
type Engine struct {
	config    *Config
	logger    zerolog.Logger
	store     Store
	publisher EventPublisher
	explainer Explainer

	// now is swappable for deterministic tests.
	now func() time.Time
}

// NewEngine creates a recommendation engine. The explainer may be nil,
// in which case match reports carry an empty AI explanation.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, store Store, publisher EventPublisher, explainer Explainer, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if store == nil {
		return nil, errors.New("store is required")
	}

	return &Engine{
		config:    cfg,
		logger:    logger.With().Str("component", "engine").Logger(),
		store:     store,
		publisher: publisher,
		explainer: explainer,
		now:       time.Now,
	}, nil
}

// GetRecommendations runs one full recommendation pass. An empty userID
// produces anonymous recommendations against the default profile. An
// empty candidate set yields an empty list, not an error.
func (e *Engine) GetRecommendations(ctx context.Context, userID string, limit int, reqContext string) (*RecommendationSet, error) {
	limit = e.clampLimit(limit)

	profile, err := e.BuildProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	candidates, err := e.store.GetActiveProperties(ctx, e.config.CandidateLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}

	scored := e.scoreCandidates(candidates, profile)
	results := blendResults(scored, limit)

	set := &RecommendationSet{
		Recommendations: results,
		UserProfile:     profile,
		Meta:            buildMeta(scored, profile),
	}

	if userID != "" && e.publisher != nil && len(results) > 0 {
		top := results
		if len(top) > e.config.HistoryTopN {
			top = top[:e.config.HistoryTopN]
		}
		e.publisher.PublishRecommendationServed(userID, reqContext, top)
	}

	e.logger.Debug().
		Str("user_id", userID).
		Int("candidates", len(candidates)).
		Int("returned", len(results)).
		Bool("personalized", profile.HasEnoughData).
		Msg("recommendations generated")

	return set, nil
}

// clampLimit applies the default and maximum result counts.
func (e *Engine) clampLimit(limit int) int {
	if limit <= 0 {
		return e.config.DefaultLimit
	}
	if limit > e.config.MaxLimit {
		return e.config.MaxLimit
	}
	return limit
}

// scoreCandidates runs the scorer over every candidate.
func (e *Engine) scoreCandidates(candidates []models.Property, profile *UserProfile) []ScoredProperty {
	now := e.now()
	scored := make([]ScoredProperty, 0, len(candidates))
	for i := range candidates {
		property := &candidates[i]
		scored = append(scored, ScoredProperty{
			MatchResult: ScoreProperty(property, profile, now),
			Property:    property,
		})
	}
	return scored
}

// buildMeta tallies the scored set before pool truncation.
func buildMeta(scored []ScoredProperty, profile *UserProfile) SetMeta {
	meta := SetMeta{
		TotalCandidates:    len(scored),
		HasPersonalization: profile.HasEnoughData,
	}
	for i := range scored {
		if scored[i].IsDiscoveryMatch {
			meta.DiscoveryMatches++
		} else {
			meta.PreferenceMatches++
		}
	}
	return meta
}

// GetUserProfile returns the rebuilt profile plus the activity tally.
func (e *Engine) GetUserProfile(ctx context.Context, userID string) (*UserProfile, *models.ActivitySummary, error) {
	profile, err := e.BuildProfile(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	summary, err := e.store.GetActivitySummary(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("activity summary for %s: %w", userID, err)
	}
	return profile, summary, nil
}

// RecordSignal persists one behavior signal and, for qualifying signal
// types, dispatches learned-preference reinforcement asynchronously.
// The property snapshot lookup is best-effort; its absence never blocks
// the write.
func (e *Engine) RecordSignal(ctx context.Context, userID, propertyID, signalType string, data *models.SignalData) error {
	property, err := e.store.GetProperty(ctx, propertyID)
	if err != nil {
		e.logger.Warn().Err(err).
			Str("property_id", propertyID).
			Msg("snapshot lookup failed, recording signal without snapshot")
		property = nil
	}

	signal := &models.BehaviorSignal{
		UserID:           userID,
		PropertyID:       propertyID,
		SignalType:       signalType,
		SignalStrength:   SignalStrength(signalType, data),
		PropertySnapshot: models.SnapshotOf(property),
		CreatedAt:        e.now(),
	}
	if data != nil {
		signal.TimeSpentSeconds = data.TimeSpent
		signal.ScrollDepth = data.ScrollDepth
		signal.PhotosViewed = data.PhotosViewed
		signal.SectionsExpanded = data.SectionsExpanded
		signal.SessionID = data.SessionID
		signal.DeviceType = data.DeviceType
	}

	if err := e.store.InsertSignal(ctx, signal); err != nil {
		return fmt.Errorf("insert signal: %w", err)
	}

	if e.publisher != nil {
		if prefs := DeriveReinforcement(userID, signalType, property, e.now()); len(prefs) > 0 {
			e.publisher.PublishPreferenceReinforcement(userID, prefs)
		}
	}
	return nil
}

// DeriveReinforcement computes the learned-preference upserts a signal
// triggers. Bare views teach nothing; stronger signals reinforce up to
// five present features, and save/inquiry additionally reinforce the
// listing's style.
func DeriveReinforcement(userID, signalType string, property *models.Property, now time.Time) []models.LearnedPreference {
	if property == nil || signalType == models.SignalView {
		return nil
	}

	strong := signalType == models.SignalSave || signalType == models.SignalInquiry
	score := reinforceWeakScore
	if strong {
		score = reinforceStrongScore
	}

	features := property.Features.EnabledNames()
	if len(features) > maxReinforcedFeatures {
		features = features[:maxReinforcedFeatures]
	}

	prefs := make([]models.LearnedPreference, 0, len(features)+1)
	for _, feature := range features {
		s := score
		prefs = append(prefs, models.LearnedPreference{
			UserID:           userID,
			PatternType:      models.PatternFeatureAffinity,
			PatternKey:       strings.ToLower(feature),
			PatternValue:     models.PatternValue{Score: &s},
			ConfidenceScore:  reinforceAffinityConfid,
			SampleCount:      1,
			LastReinforcedAt: now,
		})
	}

	if strong && property.PropertyType != "" {
		preferred := true
		prefs = append(prefs, models.LearnedPreference{
			UserID:           userID,
			PatternType:      models.PatternStylePreference,
			PatternKey:       strings.ToLower(property.PropertyType),
			PatternValue:     models.PatternValue{Preferred: &preferred},
			ConfidenceScore:  reinforceStyleConfidence,
			SampleCount:      1,
			LastReinforcedAt: now,
		})
	}
	return prefs
}

// UpdatePreferences replaces a user's explicit preference row.
func (e *Engine) UpdatePreferences(ctx context.Context, userID string, prefs *models.UserPreferences) error {
	prefs.UserID = userID
	prefs.UpdatedAt = e.now()
	if err := e.store.UpsertUserPreferences(ctx, prefs); err != nil {
		return fmt.Errorf("upsert preferences for %s: %w", userID, err)
	}
	return nil
}

// GetMatchReport rebuilds the profile and re-scores one listing with
// the same scorer the list view uses. The AI explanation is best-effort
// and degrades to an empty string on any failure.
func (e *Engine) GetMatchReport(ctx context.Context, userID, propertyID string) (*MatchReport, error) {
	property, err := e.store.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("fetch property %s: %w", propertyID, err)
	}
	if property == nil {
		return nil, fmt.Errorf("%w: %s", ErrPropertyNotFound, propertyID)
	}

	profile, err := e.BuildProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := ScoreProperty(property, profile, e.now())

	explanation := ""
	if e.explainer != nil {
		explanation, err = e.explainer.Explain(ctx, property, &result)
		if err != nil {
			e.logger.Warn().Err(err).
				Str("property_id", propertyID).
				Msg("explanation unavailable")
			explanation = ""
		}
	}

	return &MatchReport{
		Property:      property,
		MatchResult:   &result,
		UserProfile:   profile,
		AIExplanation: explanation,
	}, nil
}

// ProvideFeedback attaches user feedback to a history row. Unknown
// recommendation IDs silently no-op.
func (e *Engine) ProvideFeedback(ctx context.Context, recommendationID, feedback string) error {
	if err := e.store.UpdateRecommendationFeedback(ctx, recommendationID, feedback); err != nil {
		return fmt.Errorf("update feedback: %w", err)
	}
	return nil
}
