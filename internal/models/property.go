// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

package models

import (
	"sort"
	"strings"
	"time"
)

// Property status values used by the candidate filter.
const (
	PropertyStatusActive     = "active"
	ApprovalStatusApproved   = "approved"
	ApprovalStatusPending    = "pending"
	ApprovalStatusRejected   = "rejected"
)

// Property is a marketplace listing. Prices are in Indonesian Rupiah,
// which is why budget figures run into the billions.
type Property struct {
	ID             string     `json:"id" db:"id"`
	Title          string     `json:"title" db:"title"`
	Description    string     `json:"description,omitempty" db:"description"`
	Price          int64      `json:"price" db:"price"`
	Location       string     `json:"location" db:"location"`
	City           string     `json:"city" db:"city"`
	PropertyType   string     `json:"property_type" db:"property_type"`
	Bedrooms       int        `json:"bedrooms" db:"bedrooms"`
	Bathrooms      int        `json:"bathrooms" db:"bathrooms"`
	AreaSqm        float64    `json:"area_sqm" db:"area_sqm"`
	Status         string     `json:"status" db:"status"`
	ApprovalStatus string     `json:"approval_status" db:"approval_status"`
	Features       FeatureBag `json:"property_features" db:"property_features"`
	ImageURL       string     `json:"image_url,omitempty" db:"image_url"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// AgeDays returns the listing age in whole days relative to now.
func (p *Property) AgeDays(now time.Time) int {
	return int(now.Sub(p.CreatedAt).Hours() / 24)
}

// FeatureBag is the loosely-typed feature map attached to a listing.
// Upstream data encodes "present" three ways: boolean true, the string
// "yes", and any non-empty string other than "no". Normalization happens
// here once instead of in every scorer.
type FeatureBag map[string]interface{}

// Enabled reports whether the named feature is present, applying the
// encoding normalization. Lookup is case-insensitive on the feature name.
func (f FeatureBag) Enabled(name string) bool {
	if len(f) == 0 {
		return false
	}
	needle := strings.ToLower(name)
	for key, value := range f {
		if strings.ToLower(key) != needle {
			continue
		}
		return featureValueEnabled(value)
	}
	return false
}

// EnabledNames returns the sorted list of features considered present.
func (f FeatureBag) EnabledNames() []string {
	names := make([]string, 0, len(f))
	for key, value := range f {
		if featureValueEnabled(value) {
			names = append(names, key)
		}
	}
	sort.Strings(names)
	return names
}

func featureValueEnabled(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		lower := strings.ToLower(strings.TrimSpace(v))
		return lower != "" && lower != "no" && lower != "false"
	default:
		return false
	}
}

// PropertySnapshot is the denormalized copy of key listing fields stored
// alongside a behavior signal. Immutable once written.
type PropertySnapshot struct {
	Price        int64      `json:"price"`
	Location     string     `json:"location"`
	City         string     `json:"city"`
	PropertyType string     `json:"property_type"`
	Bedrooms     int        `json:"bedrooms"`
	Features     FeatureBag `json:"property_features,omitempty"`
}

// SnapshotOf captures the signal-time snapshot of a listing.
func SnapshotOf(p *Property) *PropertySnapshot {
	if p == nil {
		return nil
	}
	return &PropertySnapshot{
		Price:        p.Price,
		Location:     p.Location,
		City:         p.City,
		PropertyType: p.PropertyType,
		Bedrooms:     p.Bedrooms,
		Features:     p.Features,
	}
}
