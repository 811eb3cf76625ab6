// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

/*
Package events provides the in-process event bus that decouples the
request path from best-effort persistence.

Serving recommendations and reinforcing learned preferences publish
events through Watermill's GoChannel pub/sub; consumers write history
rows and learned-preference upserts off the request path. Failures in
this pipeline are logged and dropped, never retried and never surfaced
to the caller.
*/
package events

import (
	"time"

	"github.com/cipondok/astra-villa-nexus-sub017/internal/models"
)

// Topics carried by the bus.
const (
	TopicRecommendationServed = "recommendation.served"
	TopicPreferenceReinforce  = "preference.reinforce"
)

// ServedItem is one recommendation inside a RecommendationServedEvent.
type ServedItem struct {
	PropertyID       string `json:"propertyId"`
	OverallScore     int    `json:"overallScore"`
	PreferenceScore  int    `json:"preferenceScore"`
	DiscoveryScore   int    `json:"discoveryScore"`
	MatchReasons     []byte `json:"matchReasons,omitempty"`
	DiscoveryReasons []byte `json:"discoveryReasons,omitempty"`
	Position         int    `json:"position"`
}

// RecommendationServedEvent records one batch of shown recommendations.
type RecommendationServedEvent struct {
	UserID   string       `json:"userId"`
	Context  string       `json:"context"`
	Items    []ServedItem `json:"items"`
	ServedAt time.Time    `json:"servedAt"`
}

// PreferenceReinforceEvent carries learned-preference upserts derived
// from one qualifying behavior signal.
type PreferenceReinforceEvent struct {
	UserID      string                     `json:"userId"`
	Preferences []models.LearnedPreference `json:"preferences"`
	DerivedAt   time.Time                  `json:"derivedAt"`
}
