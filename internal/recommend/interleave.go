// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

package recommend

import (
	"math"
	"sort"
)

// Pool split ratios. The discovery pool gets floor(limit*0.2)+1 slots;
// the +1 can overshoot a strict 80/20 split for small limits, but the
// final truncation to limit re-bounds the output and the interleaving
// order depends on the exact pool sizes, so the formula stays as is.
const (
	preferencePoolRatio = 0.8
	discoveryPoolRatio  = 0.2
	discoverySlotEvery  = 4
)

// partitionResults splits scored candidates into the preference-ranked
// and discovery-ranked pools, each sorted and truncated for a target
// result count.
func partitionResults(scored []ScoredProperty, limit int) (preference, discovery []ScoredProperty) {
	for i := range scored {
		if scored[i].IsDiscoveryMatch {
			discovery = append(discovery, scored[i])
		} else {
			preference = append(preference, scored[i])
		}
	}

	sort.SliceStable(preference, func(i, j int) bool {
		return preference[i].OverallScore > preference[j].OverallScore
	})
	sort.SliceStable(discovery, func(i, j int) bool {
		return discovery[i].DiscoveryScore > discovery[j].DiscoveryScore
	})

	prefCap := int(math.Ceil(float64(limit) * preferencePoolRatio))
	discCap := int(math.Floor(float64(limit)*discoveryPoolRatio)) + 1

	if len(preference) > prefCap {
		preference = preference[:prefCap]
	}
	if len(discovery) > discCap {
		discovery = discovery[:discCap]
	}
	return preference, discovery
}

// interleave merges the two pools, placing a discovery item at every
// 4th position while discovery items remain, preference items elsewhere,
// and falling back to whichever pool still has items when the other
// empties. Relative order within each pool is preserved.
func interleave(preference, discovery []ScoredProperty) []ScoredProperty {
	total := len(preference) + len(discovery)
	merged := make([]ScoredProperty, 0, total)

	pi, di := 0, 0
	for i := 0; i < total; i++ {
		takeDiscovery := (i+1)%discoverySlotEvery == 0 && di < len(discovery)
		switch {
		case takeDiscovery:
			merged = append(merged, discovery[di])
			di++
		case pi < len(preference):
			merged = append(merged, preference[pi])
			pi++
		default:
			merged = append(merged, discovery[di])
			di++
		}
	}
	return merged
}

// blendResults partitions, interleaves, and truncates one scoring pass
// to the requested size.
func blendResults(scored []ScoredProperty, limit int) []ScoredProperty {
	preference, discovery := partitionResults(scored, limit)
	merged := interleave(preference, discovery)
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
