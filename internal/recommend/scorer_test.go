// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

package recommend

import (
	"testing"
	"time"

	"github.com/cipondok/astra-villa-nexus-sub017/internal/models"
)

var scoreNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }

func testProperty() *models.Property {
	return &models.Property{
		ID:           "prop-1",
		Title:        "Villa Menteng",
		Price:        1_500_000_000,
		Location:     "Menteng",
		City:         "Jakarta",
		PropertyType: "villa",
		Bedrooms:     3,
		Status:       models.PropertyStatusActive,
		Features:     models.FeatureBag{"pool": true, "garage": "yes"},
		CreatedAt:    scoreNow.AddDate(0, -2, 0),
	}
}

func TestScoreBounds(t *testing.T) {
	profiles := []*UserProfile{
		AnonymousProfile(),
		{
			Explicit: ExplicitPreferences{
				MinBudget:          int64Ptr(1_000_000_000),
				MaxBudget:          int64Ptr(2_000_000_000),
				PreferredLocations: []string{"Menteng"},
				DealBreakers:       []string{"pool"},
			},
			Weights:           models.DefaultScoreWeights(),
			DiscoveryOpenness: 0.9,
		},
	}
	properties := []*models.Property{
		testProperty(),
		{ID: "bare", CreatedAt: scoreNow},
		{ID: "expensive", Price: 99_000_000_000, Bedrooms: 1, CreatedAt: scoreNow.AddDate(-1, 0, 0)},
	}

	for _, profile := range profiles {
		for _, property := range properties {
			result := ScoreProperty(property, profile, scoreNow)
			if result.PreferenceScore < 0 || result.PreferenceScore > 100 {
				t.Errorf("preferenceScore out of bounds for %s: %d", property.ID, result.PreferenceScore)
			}
			if result.DiscoveryScore < 0 || result.DiscoveryScore > 100 {
				t.Errorf("discoveryScore out of bounds for %s: %d", property.ID, result.DiscoveryScore)
			}
			if result.OverallScore < 0 || result.OverallScore > 100 {
				t.Errorf("overallScore out of bounds for %s: %d", property.ID, result.OverallScore)
			}
		}
	}
}

func TestPerfectMatchScoresHundred(t *testing.T) {
	profile := &UserProfile{
		Explicit: ExplicitPreferences{
			MinBudget:              int64Ptr(1_000_000_000),
			MaxBudget:              int64Ptr(2_000_000_000),
			PreferredLocations:     []string{"Menteng"},
			PreferredPropertyTypes: []string{"villa"},
			MinBedrooms:            intPtr(2),
			MaxBedrooms:            intPtr(4),
			MustHaveFeatures:       []string{"pool"},
			DealBreakers:           []string{},
		},
		Weights:           models.DefaultScoreWeights(),
		DiscoveryOpenness: DefaultDiscoveryOpenness,
	}

	result := ScoreProperty(testProperty(), profile, scoreNow)
	if result.PreferenceScore != 100 {
		t.Errorf("preferenceScore = %d, want 100", result.PreferenceScore)
	}
	if len(result.MatchReasons) != 5 {
		t.Errorf("got %d match reasons, want 5", len(result.MatchReasons))
	}
}

func TestDealBreakerZerosFeatures(t *testing.T) {
	profile := &UserProfile{
		Explicit: ExplicitPreferences{
			MustHaveFeatures: []string{"pool"},
			DealBreakers:     []string{"garage"},
		},
		Weights: models.DefaultScoreWeights(),
	}

	reason := scoreFeatures(testProperty(), profile)
	if reason.Score != 0 {
		t.Errorf("features score with deal-breaker = %f, want 0", reason.Score)
	}
	if reason.Explanation != "Contains features you want to avoid" {
		t.Errorf("unexpected explanation %q", reason.Explanation)
	}
}

func TestPriceWithinBudget(t *testing.T) {
	profile := &UserProfile{
		Explicit: ExplicitPreferences{
			MinBudget: int64Ptr(1_000_000_000),
			MaxBudget: int64Ptr(2_000_000_000),
		},
		Weights: models.DefaultScoreWeights(),
	}
	property := &models.Property{Price: 1_500_000_000, CreatedAt: scoreNow}

	reason := scorePrice(property, profile)
	if reason.Score != 1.0 {
		t.Errorf("price score = %f, want 1.0", reason.Score)
	}
	if reason.Explanation != "Within your budget" {
		t.Errorf("explanation = %q, want %q", reason.Explanation, "Within your budget")
	}
}

func TestPriceTiers(t *testing.T) {
	profile := &UserProfile{
		Explicit: ExplicitPreferences{
			MinBudget: int64Ptr(1_000_000_000),
			MaxBudget: int64Ptr(2_000_000_000),
		},
		Weights: models.DefaultScoreWeights(),
	}

	tests := []struct {
		name  string
		price int64
		want  float64
	}{
		{"well below min is value", 700_000_000, priceBelowBudgetScore},
		{"just under min is near miss", 900_000_000, priceNearBudgetScore},
		{"in range", 1_200_000_000, priceInBudgetScore},
		{"just above max is near miss", 2_100_000_000, priceNearBudgetScore},
		{"far above max is out", 2_500_000_000, priceAboveBudgetScore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason := scorePrice(&models.Property{Price: tt.price}, profile)
			if reason.Score != tt.want {
				t.Errorf("price %d score = %f, want %f", tt.price, reason.Score, tt.want)
			}
		})
	}
}

func TestPriceImplicitRange(t *testing.T) {
	profile := AnonymousProfile()
	profile.Implicit.ViewedPriceRange = PriceRange{Min: 1_000_000_000, Max: 2_000_000_000}

	reason := scorePrice(&models.Property{Price: 1_500_000_000}, profile)
	if reason.Score != priceImplicitScore {
		t.Errorf("implicit price score = %f, want %f", reason.Score, priceImplicitScore)
	}

	reason = scorePrice(&models.Property{Price: 9_000_000_000}, profile)
	if reason.Score != priceOutsideUsualScore {
		t.Errorf("out-of-range implicit score = %f, want %f", reason.Score, priceOutsideUsualScore)
	}
}

func TestPriceNoPreference(t *testing.T) {
	reason := scorePrice(&models.Property{Price: 1_500_000_000}, AnonymousProfile())
	if reason.Score != priceNoPreferenceScore {
		t.Errorf("no-preference price score = %f, want %f", reason.Score, priceNoPreferenceScore)
	}
	if reason.Explanation != "No budget preference set" {
		t.Errorf("unexpected explanation %q", reason.Explanation)
	}
}

func TestSizeOffByOne(t *testing.T) {
	profile := &UserProfile{
		Explicit: ExplicitPreferences{MinBedrooms: intPtr(3), MaxBedrooms: intPtr(4)},
		Weights:  models.DefaultScoreWeights(),
	}

	tests := []struct {
		beds int
		want float64
	}{
		{3, sizeInRangeScore},
		{4, sizeInRangeScore},
		{2, sizeOffByOneScore},
		{5, sizeOffByOneScore},
		{1, sizeMismatchScore},
		{7, sizeMismatchScore},
	}
	for _, tt := range tests {
		reason := scoreSize(&models.Property{Bedrooms: tt.beds}, profile)
		if reason.Score != tt.want {
			t.Errorf("size score for %d bedrooms = %f, want %f", tt.beds, reason.Score, tt.want)
		}
	}
}

func TestTypeDwellAboveAverage(t *testing.T) {
	profile := AnonymousProfile()
	profile.Implicit.DwellTimeByType = map[string]float64{
		"villa":     300,
		"apartment": 20,
		"house":     10,
	}

	reason := scoreType(&models.Property{PropertyType: "villa"}, profile)
	if reason.Score != typeDwellScore {
		t.Errorf("dwell type score = %f, want %f", reason.Score, typeDwellScore)
	}

	reason = scoreType(&models.Property{PropertyType: "house"}, profile)
	if reason.Score != typeNoMatchScore {
		t.Errorf("below-average dwell type score = %f, want %f", reason.Score, typeNoMatchScore)
	}
}

func TestFeatureAffinityAggregate(t *testing.T) {
	profile := AnonymousProfile()
	profile.Implicit.FeatureAffinities = map[string]float64{"pool": 0.4, "garage": 0.3}

	reason := scoreFeatures(testProperty(), profile)
	if reason.Score != featureAffinityScore {
		t.Errorf("affinity features score = %f, want %f", reason.Score, featureAffinityScore)
	}
}

func TestDiscoveryClassification(t *testing.T) {
	// Anonymous profile and a fresh, good-value listing: preferences are
	// weak but discovery factors fire.
	property := &models.Property{
		ID:           "fresh",
		Price:        900_000_000,
		Bedrooms:     3,
		PropertyType: "loft",
		CreatedAt:    scoreNow.AddDate(0, 0, -2),
	}
	result := ScoreProperty(property, AnonymousProfile(), scoreNow)

	if result.PreferenceScore >= discoveryMatchPrefCeiling {
		t.Fatalf("preferenceScore = %d, expected below %d for this setup", result.PreferenceScore, discoveryMatchPrefCeiling)
	}
	if result.DiscoveryScore <= discoveryMatchDiscFloor {
		t.Fatalf("discoveryScore = %d, expected above %d for this setup", result.DiscoveryScore, discoveryMatchDiscFloor)
	}
	if !result.IsDiscoveryMatch {
		t.Error("expected a discovery match")
	}
	if result.OverallScore != result.DiscoveryScore {
		t.Errorf("discovery match overallScore = %d, want discoveryScore %d", result.OverallScore, result.DiscoveryScore)
	}
}

func TestNonDiscoveryBlend(t *testing.T) {
	profile := &UserProfile{
		Explicit: ExplicitPreferences{
			MinBudget:              int64Ptr(1_000_000_000),
			MaxBudget:              int64Ptr(2_000_000_000),
			PreferredLocations:     []string{"Menteng"},
			PreferredPropertyTypes: []string{"villa"},
			MinBedrooms:            intPtr(2),
			MaxBedrooms:            intPtr(4),
			MustHaveFeatures:       []string{"pool"},
		},
		Weights:           models.DefaultScoreWeights(),
		DiscoveryOpenness: DefaultDiscoveryOpenness,
	}
	result := ScoreProperty(testProperty(), profile, scoreNow)

	if result.IsDiscoveryMatch {
		t.Fatal("high-preference match classified as discovery")
	}
	want := int(float64(result.PreferenceScore)*overallPreferenceShare + float64(result.DiscoveryScore)*overallDiscoveryShare + 0.5)
	if result.OverallScore != want {
		t.Errorf("overallScore = %d, want blended %d", result.OverallScore, want)
	}
}

func TestDiscoveryFactorsComposition(t *testing.T) {
	profile := AnonymousProfile()

	// Old listing, poor value, known style, low openness: only trend.
	profile.DiscoveryOpenness = 0.1
	old := &models.Property{Price: 10_000_000_000, Bedrooms: 2, PropertyType: "villa", CreatedAt: scoreNow.AddDate(-1, 0, 0)}
	factors := discoveryFactors(old, profile, scoreNow)
	if len(factors) != 1 || factors[0].Factor != "trend" {
		t.Errorf("expected only trend factor, got %+v", factors)
	}

	// Fresh listing with good value and style openness: all four.
	profile.DiscoveryOpenness = AnonymousDiscoveryOpenness
	fresh := &models.Property{Price: 900_000_000, Bedrooms: 3, PropertyType: "loft", CreatedAt: scoreNow.AddDate(0, 0, -3)}
	factors = discoveryFactors(fresh, profile, scoreNow)
	if len(factors) != 4 {
		t.Errorf("expected 4 discovery factors, got %d: %+v", len(factors), factors)
	}
}

func TestDiscoveryAverageEmptyDefaults(t *testing.T) {
	if got := discoveryAverage(nil); got != discoveryDefaultScore {
		t.Errorf("discoveryAverage(nil) = %d, want %d", got, discoveryDefaultScore)
	}
}

func TestZeroBedroomsSkipsValueFactor(t *testing.T) {
	property := &models.Property{Price: 100_000_000, Bedrooms: 0, CreatedAt: scoreNow.AddDate(-1, 0, 0)}
	for _, f := range discoveryFactors(property, AnonymousProfile(), scoreNow) {
		if f.Factor == "value" {
			t.Error("value factor applied to zero-bedroom listing")
		}
	}
}
