// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

package recommend

import (
	"reflect"
	"testing"
	"time"

	"github.com/cipondok/astra-villa-nexus-sub017/internal/models"
)

func signalAt(hour int, price int64, location, propType string, seconds int) models.BehaviorSignal {
	return models.BehaviorSignal{
		SignalType:       models.SignalView,
		TimeSpentSeconds: seconds,
		PropertySnapshot: &models.PropertySnapshot{
			Price:        price,
			Location:     location,
			PropertyType: propType,
		},
		CreatedAt: time.Date(2026, 8, 20, hour, 15, 0, 0, time.UTC),
	}
}

func TestPriceRangeEmptyInput(t *testing.T) {
	summary := AggregateBehavior(nil, nil)
	if summary.PriceRange.Min != 0 {
		t.Errorf("empty-input min = %d, want 0", summary.PriceRange.Min)
	}
	if summary.PriceRange.Max != PriceRangeUnbounded {
		t.Errorf("empty-input max = %d, want unbounded sentinel", summary.PriceRange.Max)
	}
	if summary.PriceRange.Observed() {
		t.Error("empty-input range reported as observed")
	}
}

func TestPriceRangePercentiles(t *testing.T) {
	signals := make([]models.BehaviorSignal, 0, 10)
	for i := 1; i <= 10; i++ {
		signals = append(signals, signalAt(10, int64(i)*100_000_000, "Menteng", "villa", 30))
	}

	summary := AggregateBehavior(signals, nil)
	// 10 prices 100M..1000M: index 1 (10th pct) and 9 (90th pct).
	if summary.PriceRange.Min != 200_000_000 {
		t.Errorf("p10 = %d, want 200000000", summary.PriceRange.Min)
	}
	if summary.PriceRange.Max != 1_000_000_000 {
		t.Errorf("p90 = %d, want 1000000000", summary.PriceRange.Max)
	}
}

func TestPriceRangeMergesInteractions(t *testing.T) {
	interactions := []models.UserInteraction{
		{PropertyPrice: 500_000_000, CreatedAt: time.Now()},
	}
	summary := AggregateBehavior(nil, interactions)
	if summary.PriceRange.Min != 500_000_000 || summary.PriceRange.Max != 500_000_000 {
		t.Errorf("single-price range = %+v, want 500M/500M", summary.PriceRange)
	}
}

func TestDwellTimeByType(t *testing.T) {
	signals := []models.BehaviorSignal{
		signalAt(10, 0, "", "villa", 120),
		signalAt(11, 0, "", "villa", 60),
		signalAt(12, 0, "", "apartment", 30),
	}
	interactions := []models.UserInteraction{
		{PropertyType: "villa", CreatedAt: time.Now()},
		{PropertyType: "house", CreatedAt: time.Now()},
	}

	summary := AggregateBehavior(signals, interactions)
	if summary.DwellTimeByType["villa"] != 181 {
		t.Errorf("villa dwell = %f, want 181 (120+60 plus unit increment)", summary.DwellTimeByType["villa"])
	}
	if summary.DwellTimeByType["apartment"] != 30 {
		t.Errorf("apartment dwell = %f, want 30", summary.DwellTimeByType["apartment"])
	}
	if summary.DwellTimeByType["house"] != 1 {
		t.Errorf("house dwell = %f, want unit increment 1", summary.DwellTimeByType["house"])
	}
}

func TestLocationClustersTopFive(t *testing.T) {
	var signals []models.BehaviorSignal
	locations := []string{"A", "A", "A", "B", "B", "C", "D", "E", "F", "G"}
	for _, loc := range locations {
		signals = append(signals, signalAt(9, 0, loc, "", 0))
	}

	summary := AggregateBehavior(signals, nil)
	if len(summary.LocationClusters) != maxLocationClusters {
		t.Fatalf("got %d clusters, want %d", len(summary.LocationClusters), maxLocationClusters)
	}
	if summary.LocationClusters[0] != "A" || summary.LocationClusters[1] != "B" {
		t.Errorf("clusters not frequency-ordered: %v", summary.LocationClusters)
	}
}

func TestTimePatternBuckets(t *testing.T) {
	signals := []models.BehaviorSignal{
		signalAt(8, 0, "", "", 0),
		signalAt(8, 0, "", "", 0),
		signalAt(14, 0, "", "", 0),
		signalAt(14, 0, "", "", 0),
		signalAt(20, 0, "", "", 0),
		signalAt(20, 0, "", "", 0),
	}

	summary := AggregateBehavior(signals, nil)
	want := map[string]bool{"morning": true, "afternoon": true, "evening": true}
	if len(summary.TimePatterns) != 3 {
		t.Fatalf("got %d patterns, want 3: %v", len(summary.TimePatterns), summary.TimePatterns)
	}
	for _, p := range summary.TimePatterns {
		if !want[p] {
			t.Errorf("unexpected pattern %q", p)
		}
	}
}

func TestTimePatternDeduplicates(t *testing.T) {
	// Three distinct morning hours collapse into one bucket.
	signals := []models.BehaviorSignal{
		signalAt(7, 0, "", "", 0),
		signalAt(8, 0, "", "", 0),
		signalAt(9, 0, "", "", 0),
	}
	summary := AggregateBehavior(signals, nil)
	if !reflect.DeepEqual(summary.TimePatterns, []string{"morning"}) {
		t.Errorf("patterns = %v, want [morning]", summary.TimePatterns)
	}
}

func TestHourBucketBoundaries(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{0, "morning"},
		{11, "morning"},
		{12, "afternoon"},
		{16, "afternoon"},
		{17, "evening"},
		{23, "evening"},
	}
	for _, tt := range tests {
		if got := hourBucket(tt.hour); got != tt.want {
			t.Errorf("hourBucket(%d) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}

func TestMergeLearnedPreferences(t *testing.T) {
	score := 0.9
	rows := []models.LearnedPreference{
		{
			PatternType:     models.PatternFeatureAffinity,
			PatternKey:      "pool",
			PatternValue:    models.PatternValue{Score: &score},
			ConfidenceScore: 0.8,
		},
		{
			PatternType:     models.PatternFeatureAffinity,
			PatternKey:      "garage",
			ConfidenceScore: 0.8,
		},
		{
			PatternType:     models.PatternStylePreference,
			PatternKey:      "villa",
			ConfidenceScore: 0.7,
		},
		{
			PatternType:     models.PatternStylePreference,
			PatternKey:      "loft",
			ConfidenceScore: 0.5,
		},
	}

	affinities, styles := MergeLearnedPreferences(rows)

	if got := affinities["pool"]; got != 0.9*0.8 {
		t.Errorf("pool affinity = %f, want %f", got, 0.9*0.8)
	}
	// Missing score falls back to 0.5 before confidence discount.
	if got := affinities["garage"]; got != 0.5*0.8 {
		t.Errorf("garage affinity = %f, want %f", got, 0.5*0.8)
	}
	if !reflect.DeepEqual(styles, []string{"villa"}) {
		t.Errorf("styles = %v, want [villa] (confidence floor)", styles)
	}
}
