// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

package models

import (
	"time"

	"github.com/goccy/go-json"
)

// RecommendationHistory is the audit record of one shown recommendation.
// Written best-effort at serve time for the top results of a batch and
// updated later if the user submits feedback.
type RecommendationHistory struct {
	ID                    string          `json:"id" db:"id"`
	UserID                string          `json:"user_id" db:"user_id"`
	PropertyID            string          `json:"property_id" db:"property_id"`
	OverallScore          int             `json:"overall_score" db:"overall_score"`
	PreferenceScore       int             `json:"preference_score" db:"preference_score"`
	DiscoveryScore        int             `json:"discovery_score" db:"discovery_score"`
	MatchReasons          json.RawMessage `json:"match_reasons,omitempty" db:"match_reasons"`
	DiscoveryReasons      json.RawMessage `json:"discovery_reasons,omitempty" db:"discovery_reasons"`
	RecommendationContext string          `json:"recommendation_context" db:"recommendation_context"`
	PositionShown         int             `json:"position_shown" db:"position_shown"`
	UserFeedback          string          `json:"user_feedback,omitempty" db:"user_feedback"`
	FeedbackAt            *time.Time      `json:"feedback_at,omitempty" db:"feedback_at"`
	CreatedAt             time.Time       `json:"created_at" db:"created_at"`
}
