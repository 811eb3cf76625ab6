// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

package recommend

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cipondok/astra-villa-nexus-sub017/internal/models"
)

// Preference sub-score tiers. These values are part of the tested
// contract; do not fold them into configuration.
const (
	locationExplicitScore = 1.0
	locationClusterScore  = 0.7
	locationNoMatchScore  = 0.4

	priceInBudgetScore     = 1.0
	priceBelowBudgetScore  = 0.5
	priceNearBudgetScore   = 0.6
	priceAboveBudgetScore  = 0.0
	priceImplicitScore     = 0.75
	priceOutsideUsualScore = 0.4
	priceNoPreferenceScore = 0.4

	// Budget tolerance bounds: below 80% of min is "value", above 120%
	// of max is out of reach, anything between is a near miss.
	priceValueFloorRatio   = 0.8
	priceCeilingRatio      = 1.2

	sizeInRangeScore      = 1.0
	sizeOffByOneScore     = 0.7
	sizeNoPreferenceScore = 0.5
	sizeMismatchScore     = 0.3

	typeExplicitScore = 1.0
	typeDwellScore    = 0.75
	typeNoMatchScore  = 0.4

	featureDealBreakerScore = 0.0
	featureMustHaveScore    = 1.0
	featureAffinityScore    = 0.8
	featureDefaultScore     = 0.5

	// featureAffinityThreshold is the summed-affinity level above which
	// a listing counts as matching the user's engaged features.
	featureAffinityThreshold = 0.5
)

// Discovery factor constants.
const (
	discoveryFreshDays       = 7
	discoveryRecentDays      = 14
	discoveryFreshScore      = 0.9
	discoveryFreshWeight     = 0.3
	discoveryRecentScore     = 0.6
	discoveryRecentWeight    = 0.2

	// discoveryValueThreshold is price-per-bedroom in Rupiah under which
	// a listing counts as a value find.
	discoveryValueThreshold = int64(500_000_000)
	discoveryValueScore     = 0.85
	discoveryValueWeight    = 0.3

	discoveryStyleScore     = 0.6
	discoveryStyleWeight    = 0.2
	discoveryStyleOpenness  = 0.3

	// Trend is a fixed stand-in signal; real market-trend data is not
	// wired in.
	discoveryTrendScore  = 0.5
	discoveryTrendWeight = 0.2

	// discoveryDefaultScore is returned when no factor applies.
	discoveryDefaultScore = 50
)

// Discovery classification thresholds.
const (
	discoveryMatchPrefCeiling = 60
	discoveryMatchDiscFloor   = 50

	// Overall blend for non-discovery results.
	overallPreferenceShare = 0.8
	overallDiscoveryShare  = 0.2
)

// ScoreProperty computes the full match result for one candidate.
// Deterministic, pure function of its inputs; now anchors listing age.
func ScoreProperty(property *models.Property, profile *UserProfile, now time.Time) MatchResult {
	reasons := []MatchReason{
		scoreLocation(property, profile),
		scorePrice(property, profile),
		scoreSize(property, profile),
		scoreType(property, profile),
		scoreFeatures(property, profile),
	}

	preferenceScore := weightedAverage(reasons)
	discoveryReasons := discoveryFactors(property, profile, now)
	discoveryScore := discoveryAverage(discoveryReasons)

	isDiscovery := preferenceScore < discoveryMatchPrefCeiling && discoveryScore > discoveryMatchDiscFloor

	overall := discoveryScore
	if !isDiscovery {
		overall = int(math.Round(float64(preferenceScore)*overallPreferenceShare + float64(discoveryScore)*overallDiscoveryShare))
	}

	return MatchResult{
		PropertyID:       property.ID,
		OverallScore:     overall,
		PreferenceScore:  preferenceScore,
		DiscoveryScore:   discoveryScore,
		MatchReasons:     reasons,
		DiscoveryReasons: discoveryReasons,
		IsDiscoveryMatch: isDiscovery,
	}
}

// weightedAverage collapses sub-scores into a 0-100 integer. Total
// weight is always the sum of all five profile weights since every
// sub-scorer contributes; a zero weight nulls that factor.
func weightedAverage(reasons []MatchReason) int {
	var weighted, total float64
	for _, r := range reasons {
		weighted += r.Score * r.Weight
		total += r.Weight
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(weighted / total * 100))
}

// scoreLocation matches the listing location against explicit preferred
// locations first, then implicit clusters. Substring, case-insensitive.
func scoreLocation(property *models.Property, profile *UserProfile) MatchReason {
	reason := MatchReason{Factor: "location", Weight: profile.Weights.Location}
	haystack := strings.ToLower(property.Location + " " + property.City)

	for _, loc := range profile.Explicit.PreferredLocations {
		if loc != "" && strings.Contains(haystack, strings.ToLower(loc)) {
			reason.Score = locationExplicitScore
			reason.Explanation = "In your preferred area: " + loc
			return reason
		}
	}
	for _, cluster := range profile.Implicit.LocationClusters {
		if cluster != "" && strings.Contains(haystack, strings.ToLower(cluster)) {
			reason.Score = locationClusterScore
			reason.Explanation = "Popular area in your recent searches"
			return reason
		}
	}

	reason.Score = locationNoMatchScore
	reason.Explanation = "New area to explore"
	return reason
}

// scorePrice checks the explicit budget first, then the observed
// implicit range, then falls back to the no-preference default.
func scorePrice(property *models.Property, profile *UserProfile) MatchReason {
	reason := MatchReason{Factor: "price", Weight: profile.Weights.Price}
	price := property.Price

	minBudget, maxBudget := profile.Explicit.MinBudget, profile.Explicit.MaxBudget
	if minBudget != nil || maxBudget != nil {
		lo := int64(0)
		if minBudget != nil {
			lo = *minBudget
		}
		hi := int64(math.MaxInt64)
		if maxBudget != nil {
			hi = *maxBudget
		}

		switch {
		case price >= lo && price <= hi:
			reason.Score = priceInBudgetScore
			reason.Explanation = "Within your budget"
		case price < int64(float64(lo)*priceValueFloorRatio):
			reason.Score = priceBelowBudgetScore
			reason.Explanation = "Below your budget - great value"
		case maxBudget != nil && price > int64(float64(hi)*priceCeilingRatio):
			reason.Score = priceAboveBudgetScore
			reason.Explanation = "Above your budget"
		default:
			reason.Score = priceNearBudgetScore
			reason.Explanation = "Close to your budget"
		}
		return reason
	}

	if implicit := profile.Implicit.ViewedPriceRange; implicit.Observed() {
		if price >= implicit.Min && price <= implicit.Max {
			reason.Score = priceImplicitScore
			reason.Explanation = "Similar to properties you've viewed"
		} else {
			reason.Score = priceOutsideUsualScore
			reason.Explanation = "Outside your usual price range"
		}
		return reason
	}

	reason.Score = priceNoPreferenceScore
	reason.Explanation = "No budget preference set"
	return reason
}

// scoreSize compares bedroom count against the explicit bounds.
func scoreSize(property *models.Property, profile *UserProfile) MatchReason {
	reason := MatchReason{Factor: "size", Weight: profile.Weights.Size}
	minBed, maxBed := profile.Explicit.MinBedrooms, profile.Explicit.MaxBedrooms

	if minBed == nil && maxBed == nil {
		reason.Score = sizeNoPreferenceScore
		reason.Explanation = "No size preference set"
		return reason
	}

	lo := 0
	if minBed != nil {
		lo = *minBed
	}
	hi := math.MaxInt
	if maxBed != nil {
		hi = *maxBed
	}

	beds := property.Bedrooms
	switch {
	case beds >= lo && beds <= hi:
		reason.Score = sizeInRangeScore
		reason.Explanation = "Matches your space requirements"
	case beds == lo-1 || (maxBed != nil && beds == hi+1):
		reason.Score = sizeOffByOneScore
		reason.Explanation = "Close to your preferred size"
	default:
		reason.Score = sizeMismatchScore
		reason.Explanation = "Different size than preferred"
	}
	return reason
}

// scoreType matches explicit preferred types first, then checks whether
// dwell time on this type exceeds the cross-type average.
func scoreType(property *models.Property, profile *UserProfile) MatchReason {
	reason := MatchReason{Factor: "type", Weight: profile.Weights.Type}
	propType := strings.ToLower(property.PropertyType)

	for _, preferred := range profile.Explicit.PreferredPropertyTypes {
		if strings.EqualFold(preferred, property.PropertyType) {
			reason.Score = typeExplicitScore
			reason.Explanation = "Your preferred property type: " + preferred
			return reason
		}
	}

	if dwellAboveAverage(profile.Implicit.DwellTimeByType, property.PropertyType) {
		reason.Score = typeDwellScore
		reason.Explanation = fmt.Sprintf("You often spend time on %s listings", propType)
		return reason
	}

	reason.Score = typeNoMatchScore
	reason.Explanation = "Different property type to consider"
	return reason
}

// dwellAboveAverage reports whether dwell time for one type exceeds the
// average across all observed types.
func dwellAboveAverage(dwell map[string]float64, propertyType string) bool {
	if len(dwell) == 0 {
		return false
	}
	var typeDwell float64
	var found bool
	for key, value := range dwell {
		if strings.EqualFold(key, propertyType) {
			typeDwell = value
			found = true
			break
		}
	}
	if !found || typeDwell == 0 {
		return false
	}

	var total float64
	for _, value := range dwell {
		total += value
	}
	return typeDwell > total/float64(len(dwell))
}

// scoreFeatures applies the deal-breaker hard zero, then must-haves,
// then the aggregated learned-affinity signal.
func scoreFeatures(property *models.Property, profile *UserProfile) MatchReason {
	reason := MatchReason{Factor: "features", Weight: profile.Weights.Features}

	for _, breaker := range profile.Explicit.DealBreakers {
		if property.Features.Enabled(breaker) {
			reason.Score = featureDealBreakerScore
			reason.Explanation = "Contains features you want to avoid"
			return reason
		}
	}

	if len(profile.Explicit.MustHaveFeatures) > 0 {
		all := true
		for _, must := range profile.Explicit.MustHaveFeatures {
			if !property.Features.Enabled(must) {
				all = false
				break
			}
		}
		if all {
			reason.Score = featureMustHaveScore
			reason.Explanation = "Has all your must-have features"
			return reason
		}
	}

	var affinitySum float64
	for _, feature := range property.Features.EnabledNames() {
		affinitySum += profile.Implicit.FeatureAffinities[strings.ToLower(feature)]
	}
	if affinitySum > featureAffinityThreshold {
		reason.Score = featureAffinityScore
		reason.Explanation = "Matches features you frequently engage with"
		return reason
	}

	reason.Score = featureDefaultScore
	reason.Explanation = "Standard feature set"
	return reason
}

// discoveryFactors assembles the conditionally-applied discovery
// reasons for a listing.
func discoveryFactors(property *models.Property, profile *UserProfile, now time.Time) []MatchReason {
	factors := make([]MatchReason, 0, 4)

	age := property.AgeDays(now)
	switch {
	case age < discoveryFreshDays:
		factors = append(factors, MatchReason{
			Factor:      "novelty",
			Score:       discoveryFreshScore,
			Explanation: "Newly listed this week",
			Weight:      discoveryFreshWeight,
		})
	case age < discoveryRecentDays:
		factors = append(factors, MatchReason{
			Factor:      "novelty",
			Score:       discoveryRecentScore,
			Explanation: "Recently listed",
			Weight:      discoveryRecentWeight,
		})
	}

	if property.Bedrooms > 0 && property.Price/int64(property.Bedrooms) < discoveryValueThreshold {
		factors = append(factors, MatchReason{
			Factor:      "value",
			Score:       discoveryValueScore,
			Explanation: "Great value per bedroom",
			Weight:      discoveryValueWeight,
		})
	}

	if profile.DiscoveryOpenness > discoveryStyleOpenness && !containsFold(profile.Implicit.StylePreferences, property.PropertyType) {
		factors = append(factors, MatchReason{
			Factor:      "style_expansion",
			Score:       discoveryStyleScore,
			Explanation: "A new style to explore",
			Weight:      discoveryStyleWeight,
		})
	}

	factors = append(factors, MatchReason{
		Factor:      "trend",
		Score:       discoveryTrendScore,
		Explanation: "Steady market interest",
		Weight:      discoveryTrendWeight,
	})

	return factors
}

// discoveryAverage blends whichever factors applied into a 0-100 score,
// defaulting to the midpoint when none did.
func discoveryAverage(factors []MatchReason) int {
	if len(factors) == 0 {
		return discoveryDefaultScore
	}
	var weighted, total float64
	for _, f := range factors {
		weighted += f.Score * f.Weight
		total += f.Weight
	}
	if total == 0 {
		return discoveryDefaultScore
	}
	return int(math.Round(weighted / total * 100))
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}
