// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

/*
Package recommend implements the property recommendation engine.

The engine builds a per-user preference profile from explicit settings,
recent behavior signals, and long-run learned preferences, scores a
candidate set of listings against five weighted preference factors plus
a separate discovery score, and interleaves preference-led and
discovery-led results under an 80/20 policy.

Core pieces:

  - Profile building (profile.go): explicit row + behavior aggregation +
    learned-preference merge, with a fixed anonymous profile for unknown
    callers.
  - Scoring (scorer.go): pure function of (property, profile), five
    preference sub-scores and up to four discovery factors.
  - Interleaving (interleave.go): deterministic merge placing a
    discovery pick at every 4th slot while both pools last.
  - Engine (engine.go): the orchestrator tying profile, candidate fetch,
    scoring, interleaving, and the write paths together over the Store
    interface.

The package has no dependency on the database or transport layers; the
Store and EventPublisher interfaces keep integration one-directional.
*/
package recommend
