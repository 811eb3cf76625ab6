// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

package recommend

import (
	"context"
	"fmt"
	"sync"

	"github.com/cipondok/astra-villa-nexus-sub017/internal/models"
)

// Discovery openness defaults. Anonymous callers get a higher openness
// because there is nothing known to exploit.
const (
	DefaultDiscoveryOpenness   = 0.2
	AnonymousDiscoveryOpenness = 0.5
)

// AnonymousProfile returns the fixed profile used when no user can be
// resolved. Constructed without any data access.
func AnonymousProfile() *UserProfile {
	return &UserProfile{
		Explicit: ExplicitPreferences{
			PreferredLocations:     []string{},
			PreferredPropertyTypes: []string{},
			MustHaveFeatures:       []string{},
			DealBreakers:           []string{},
		},
		Implicit: ImplicitPreferences{
			ViewedPriceRange:  PriceRange{Min: 0, Max: PriceRangeUnbounded},
			DwellTimeByType:   map[string]float64{},
			LocationClusters:  []string{},
			FeatureAffinities: map[string]float64{},
			StylePreferences:  []string{},
			TimePatterns:      []string{},
		},
		Weights:           models.DefaultScoreWeights(),
		DiscoveryOpenness: AnonymousDiscoveryOpenness,
		HasEnoughData:     false,
		IsAnonymous:       true,
	}
}

// profileInputs collects the four independent reads that feed profile
// building.
type profileInputs struct {
	prefs        *models.UserPreferences
	signals      []models.BehaviorSignal
	interactions []models.UserInteraction
	learned      []models.LearnedPreference
}

// BuildProfile composes explicit preferences, aggregated behavior, and
// learned preferences into one profile. Returns the anonymous profile
// for an empty userID without touching the store.
func (e *Engine) BuildProfile(ctx context.Context, userID string) (*UserProfile, error) {
	if userID == "" {
		return AnonymousProfile(), nil
	}

	inputs, err := e.fetchProfileInputs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("build profile for %s: %w", userID, err)
	}

	return e.composeProfile(userID, inputs), nil
}

// fetchProfileInputs issues the four profile reads concurrently; they
// are independent of each other. The first error wins.
func (e *Engine) fetchProfileInputs(ctx context.Context, userID string) (*profileInputs, error) {
	since := e.now().AddDate(0, 0, -e.config.SignalWindowDays)
	inputs := &profileInputs{}

	var wg sync.WaitGroup
	errs := make([]error, 4)

	wg.Add(4)
	go func() {
		defer wg.Done()
		inputs.prefs, errs[0] = e.store.GetUserPreferences(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		inputs.signals, errs[1] = e.store.GetRecentSignals(ctx, userID, since, e.config.MaxSignals)
	}()
	go func() {
		defer wg.Done()
		inputs.interactions, errs[2] = e.store.GetRecentInteractions(ctx, userID, since, e.config.MaxInteractions)
	}()
	go func() {
		defer wg.Done()
		inputs.learned, errs[3] = e.store.GetLearnedPreferences(ctx, userID)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return inputs, nil
}

// composeProfile folds fetched rows into the final profile value.
func (e *Engine) composeProfile(userID string, inputs *profileInputs) *UserProfile {
	behavior := AggregateBehavior(inputs.signals, inputs.interactions)
	affinities, styles := MergeLearnedPreferences(inputs.learned)

	profile := &UserProfile{
		UserID:   userID,
		Explicit: explicitFromRow(inputs.prefs),
		Implicit: ImplicitPreferences{
			ViewedPriceRange:  behavior.PriceRange,
			DwellTimeByType:   behavior.DwellTimeByType,
			LocationClusters:  behavior.LocationClusters,
			FeatureAffinities: affinities,
			StylePreferences:  styles,
			TimePatterns:      behavior.TimePatterns,
		},
		Weights:           models.DefaultScoreWeights(),
		DiscoveryOpenness: DefaultDiscoveryOpenness,
		HasEnoughData:     len(inputs.signals)+len(inputs.interactions) >= e.config.MinEngagementEvents,
	}

	if inputs.prefs != nil {
		if inputs.prefs.Weights != nil {
			profile.Weights = *inputs.prefs.Weights
		}
		if inputs.prefs.DiscoveryOpenness != nil {
			profile.DiscoveryOpenness = *inputs.prefs.DiscoveryOpenness
		}
	}

	return profile
}

// explicitFromRow converts the stored preference row into the profile's
// explicit block. A missing row means "use defaults", never an error.
func explicitFromRow(prefs *models.UserPreferences) ExplicitPreferences {
	if prefs == nil {
		return ExplicitPreferences{
			PreferredLocations:     []string{},
			PreferredPropertyTypes: []string{},
			MustHaveFeatures:       []string{},
			DealBreakers:           []string{},
		}
	}
	return ExplicitPreferences{
		MinBudget:              prefs.MinBudget,
		MaxBudget:              prefs.MaxBudget,
		PreferredLocations:     nonNil(prefs.PreferredLocations),
		PreferredPropertyTypes: nonNil(prefs.PreferredPropertyTypes),
		MinBedrooms:            prefs.MinBedrooms,
		MaxBedrooms:            prefs.MaxBedrooms,
		MustHaveFeatures:       nonNil(prefs.MustHaveFeatures),
		DealBreakers:           nonNil(prefs.DealBreakers),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
