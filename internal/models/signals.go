// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

package models

import "time"

// Signal types recorded by the engine. Anything else is accepted but
// treated with the default base strength.
const (
	SignalView    = "view"
	SignalDwell   = "dwell"
	SignalSave    = "save"
	SignalShare   = "share"
	SignalInquiry = "inquiry"
	SignalRevisit = "revisit"
	SignalCompare = "compare"
)

// KnownSignalType reports whether t is one of the recorded signal types.
func KnownSignalType(t string) bool {
	switch t {
	case SignalView, SignalDwell, SignalSave, SignalShare, SignalInquiry, SignalRevisit, SignalCompare:
		return true
	}
	return false
}

// BehaviorSignal is one recorded user interaction with a listing.
// Rows are append-only: never mutated or deleted by this service.
type BehaviorSignal struct {
	ID               string             `json:"id" db:"id"`
	UserID           string             `json:"user_id" db:"user_id"`
	PropertyID       string             `json:"property_id" db:"property_id"`
	SignalType       string             `json:"signal_type" db:"signal_type"`
	SignalStrength   float64            `json:"signal_strength" db:"signal_strength"`
	TimeSpentSeconds int                `json:"time_spent_seconds,omitempty" db:"time_spent_seconds"`
	ScrollDepth      int                `json:"scroll_depth,omitempty" db:"scroll_depth"`
	PhotosViewed     int                `json:"photos_viewed,omitempty" db:"photos_viewed"`
	SectionsExpanded []string           `json:"sections_expanded,omitempty" db:"sections_expanded"`
	PropertySnapshot *PropertySnapshot  `json:"property_snapshot,omitempty" db:"property_snapshot"`
	SessionID        string             `json:"session_id,omitempty" db:"session_id"`
	DeviceType       string             `json:"device_type,omitempty" db:"device_type"`
	CreatedAt        time.Time          `json:"created_at" db:"created_at"`
}

// SignalData carries the optional engagement-depth fields submitted with
// a record_signal request.
type SignalData struct {
	TimeSpent        int      `json:"timeSpent,omitempty"`
	ScrollDepth      int      `json:"scrollDepth,omitempty"`
	PhotosViewed     int      `json:"photosViewed,omitempty"`
	SectionsExpanded []string `json:"sectionsExpanded,omitempty"`
	SessionID        string   `json:"sessionId,omitempty"`
	DeviceType       string   `json:"deviceType,omitempty"`
}

// UserInteraction is a row from the legacy interaction table, merged into
// profile building for continuity. It lacks duration data, so aggregation
// counts each row as a unit dwell increment. Property fields come from a
// join against the catalog at query time.
type UserInteraction struct {
	ID               string    `json:"id" db:"id"`
	UserID           string    `json:"user_id" db:"user_id"`
	PropertyID       string    `json:"property_id" db:"property_id"`
	InteractionType  string    `json:"interaction_type" db:"interaction_type"`
	PropertyPrice    int64     `json:"property_price,omitempty" db:"property_price"`
	PropertyLocation string    `json:"property_location,omitempty" db:"property_location"`
	PropertyType     string    `json:"property_type,omitempty" db:"property_type"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// ActivitySummary is the per-user interaction tally returned by the
// profile endpoint.
type ActivitySummary struct {
	TotalViews        int        `json:"totalViews"`
	TotalSaves        int        `json:"totalSaves"`
	TotalInquiries    int        `json:"totalInquiries"`
	TotalInteractions int        `json:"totalInteractions"`
	LastActive        *time.Time `json:"lastActive"`
}
