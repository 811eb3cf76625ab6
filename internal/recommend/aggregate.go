// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

package recommend

import (
	"sort"

	"github.com/cipondok/astra-villa-nexus-sub017/internal/models"
)

// Aggregation constants. Location clusters and time patterns keep only
// the strongest entries so the profile stays a compact summary.
const (
	maxLocationClusters = 5
	maxTimePatternHours = 3

	// Learned-preference defaults applied when a row is missing its
	// score or confidence.
	defaultAffinityScore      = 0.5
	defaultAffinityConfidence = 0.5

	// stylePreferenceMinConfidence gates which style rows count.
	stylePreferenceMinConfidence = 0.6
)

// BehaviorSummary is the output of the behavior aggregation pass.
type BehaviorSummary struct {
	PriceRange       PriceRange
	DwellTimeByType  map[string]float64
	LocationClusters []string
	TimePatterns     []string
}

// AggregateBehavior reduces already-fetched signal and interaction rows
// into implicit-preference statistics. Pure reduction, no I/O.
func AggregateBehavior(signals []models.BehaviorSignal, interactions []models.UserInteraction) BehaviorSummary {
	return BehaviorSummary{
		PriceRange:       observedPriceRange(signals, interactions),
		DwellTimeByType:  dwellTimeByType(signals, interactions),
		LocationClusters: locationClusters(signals, interactions),
		TimePatterns:     timePatterns(signals, interactions),
	}
}

// observedPriceRange trims outliers symmetrically by taking the 10th and
// 90th percentile of every price seen across both sources. Zero prices
// are skipped as missing data.
func observedPriceRange(signals []models.BehaviorSignal, interactions []models.UserInteraction) PriceRange {
	prices := make([]int64, 0, len(signals)+len(interactions))
	for i := range signals {
		if snap := signals[i].PropertySnapshot; snap != nil && snap.Price > 0 {
			prices = append(prices, snap.Price)
		}
	}
	for i := range interactions {
		if interactions[i].PropertyPrice > 0 {
			prices = append(prices, interactions[i].PropertyPrice)
		}
	}

	if len(prices) == 0 {
		return PriceRange{Min: 0, Max: PriceRangeUnbounded}
	}

	sort.Slice(prices, func(i, j int) bool { return prices[i] < prices[j] })

	lo := percentileIndex(len(prices), 10)
	hi := percentileIndex(len(prices), 90)
	return PriceRange{Min: prices[lo], Max: prices[hi]}
}

// percentileIndex returns the index of the pct-th percentile element in
// a sorted slice of length n, clamped to the valid range.
func percentileIndex(n, pct int) int {
	idx := n * pct / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// dwellTimeByType sums dwell seconds per property type. Legacy
// interaction rows carry no duration, so each counts as one unit.
func dwellTimeByType(signals []models.BehaviorSignal, interactions []models.UserInteraction) map[string]float64 {
	dwell := make(map[string]float64)
	for i := range signals {
		snap := signals[i].PropertySnapshot
		if snap == nil || snap.PropertyType == "" {
			continue
		}
		dwell[snap.PropertyType] += float64(signals[i].TimeSpentSeconds)
	}
	for i := range interactions {
		if interactions[i].PropertyType == "" {
			continue
		}
		dwell[interactions[i].PropertyType]++
	}
	return dwell
}

// locationClusters returns the top locations by occurrence count.
// Ties break alphabetically so the output is deterministic.
func locationClusters(signals []models.BehaviorSignal, interactions []models.UserInteraction) []string {
	counts := make(map[string]int)
	for i := range signals {
		if snap := signals[i].PropertySnapshot; snap != nil && snap.Location != "" {
			counts[snap.Location]++
		}
	}
	for i := range interactions {
		if loc := interactions[i].PropertyLocation; loc != "" {
			counts[loc]++
		}
	}
	return topKeys(counts, maxLocationClusters)
}

// timePatterns buckets signal hours into morning/afternoon/evening,
// keeping the buckets of the most frequent hours.
func timePatterns(signals []models.BehaviorSignal, interactions []models.UserInteraction) []string {
	hourCounts := make(map[int]int)
	for i := range signals {
		hourCounts[signals[i].CreatedAt.Hour()]++
	}
	for i := range interactions {
		hourCounts[interactions[i].CreatedAt.Hour()]++
	}

	topHours := topIntKeys(hourCounts, maxTimePatternHours)

	seen := make(map[string]bool, len(topHours))
	patterns := make([]string, 0, len(topHours))
	for _, h := range topHours {
		bucket := hourBucket(h)
		if !seen[bucket] {
			seen[bucket] = true
			patterns = append(patterns, bucket)
		}
	}
	return patterns
}

// hourBucket maps an hour-of-day to its coarse time-of-day bucket.
func hourBucket(hour int) string {
	switch {
	case hour < 12:
		return "morning"
	case hour < 17:
		return "afternoon"
	default:
		return "evening"
	}
}

// topKeys returns up to k map keys ordered by descending count, ties
// broken alphabetically.
func topKeys(counts map[string]int, k int) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > k {
		keys = keys[:k]
	}
	return keys
}

// topIntKeys returns up to k int keys ordered by descending count, ties
// broken by ascending key.
func topIntKeys(counts map[int]int, k int) []int {
	keys := make([]int, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > k {
		keys = keys[:k]
	}
	return keys
}

// MergeLearnedPreferences folds persisted learned-preference rows into
// feature affinities and style preferences. Affinity is discounted by
// the row's confidence; style rows only count above a confidence floor.
func MergeLearnedPreferences(rows []models.LearnedPreference) (map[string]float64, []string) {
	affinities := make(map[string]float64)
	styles := make([]string, 0)

	for i := range rows {
		row := &rows[i]
		switch row.PatternType {
		case models.PatternFeatureAffinity:
			score := defaultAffinityScore
			if row.PatternValue.Score != nil {
				score = *row.PatternValue.Score
			}
			confidence := row.ConfidenceScore
			if confidence == 0 {
				confidence = defaultAffinityConfidence
			}
			affinities[row.PatternKey] = score * confidence
		case models.PatternStylePreference:
			if row.ConfidenceScore > stylePreferenceMinConfidence {
				styles = append(styles, row.PatternKey)
			}
		}
	}

	sort.Strings(styles)
	return affinities, styles
}
