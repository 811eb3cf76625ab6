// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cipondok/astra-villa-nexus-sub017/internal/models"
)

// GetUserPreferences returns the explicit preference row for a user, or
// nil when the user has never saved preferences.
func (db *DB) GetUserPreferences(ctx context.Context, userID string) (*models.UserPreferences, error) {
	row, err := db.queryRowContext(ctx, `SELECT
		user_id, min_budget, max_budget, preferred_locations, preferred_property_types,
		min_bedrooms, max_bedrooms, must_have_features, deal_breakers,
		weights, discovery_openness, updated_at
	FROM user_preferences WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}

	var (
		prefs       models.UserPreferences
		minBudget   sql.NullInt64
		maxBudget   sql.NullInt64
		locations   sql.NullString
		types       sql.NullString
		minBedrooms sql.NullInt64
		maxBedrooms sql.NullInt64
		mustHaves   sql.NullString
		breakers    sql.NullString
		weights     sql.NullString
		openness    sql.NullFloat64
	)
	err = row.Scan(&prefs.UserID, &minBudget, &maxBudget, &locations, &types,
		&minBedrooms, &maxBedrooms, &mustHaves, &breakers,
		&weights, &openness, &prefs.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user preferences: %w", err)
	}

	if minBudget.Valid {
		prefs.MinBudget = &minBudget.Int64
	}
	if maxBudget.Valid {
		prefs.MaxBudget = &maxBudget.Int64
	}
	if minBedrooms.Valid {
		v := int(minBedrooms.Int64)
		prefs.MinBedrooms = &v
	}
	if maxBedrooms.Valid {
		v := int(maxBedrooms.Int64)
		prefs.MaxBedrooms = &v
	}
	if openness.Valid {
		prefs.DiscoveryOpenness = &openness.Float64
	}
	if err := unmarshalJSON(locations, &prefs.PreferredLocations); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(types, &prefs.PreferredPropertyTypes); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(mustHaves, &prefs.MustHaveFeatures); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(breakers, &prefs.DealBreakers); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(weights, &prefs.Weights); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// UpsertUserPreferences inserts or fully replaces a user's explicit
// preference row.
func (db *DB) UpsertUserPreferences(ctx context.Context, prefs *models.UserPreferences) error {
	if prefs.UserID == "" {
		return fmt.Errorf("user ID is required")
	}
	if prefs.UpdatedAt.IsZero() {
		prefs.UpdatedAt = time.Now().UTC()
	}

	locations, err := marshalJSON(prefs.PreferredLocations)
	if err != nil {
		return err
	}
	types, err := marshalJSON(prefs.PreferredPropertyTypes)
	if err != nil {
		return err
	}
	mustHaves, err := marshalJSON(prefs.MustHaveFeatures)
	if err != nil {
		return err
	}
	breakers, err := marshalJSON(prefs.DealBreakers)
	if err != nil {
		return err
	}
	weights, err := marshalJSON(prefs.Weights)
	if err != nil {
		return err
	}

	_, err = db.execContext(ctx, `INSERT INTO user_preferences (
		user_id, min_budget, max_budget, preferred_locations, preferred_property_types,
		min_bedrooms, max_bedrooms, must_have_features, deal_breakers,
		weights, discovery_openness, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (user_id) DO UPDATE SET
		min_budget = excluded.min_budget,
		max_budget = excluded.max_budget,
		preferred_locations = excluded.preferred_locations,
		preferred_property_types = excluded.preferred_property_types,
		min_bedrooms = excluded.min_bedrooms,
		max_bedrooms = excluded.max_bedrooms,
		must_have_features = excluded.must_have_features,
		deal_breakers = excluded.deal_breakers,
		weights = excluded.weights,
		discovery_openness = excluded.discovery_openness,
		updated_at = excluded.updated_at`,
		prefs.UserID, nullInt64Ptr(prefs.MinBudget), nullInt64Ptr(prefs.MaxBudget),
		locations, types, nullIntPtr(prefs.MinBedrooms), nullIntPtr(prefs.MaxBedrooms),
		mustHaves, breakers, weights, nullFloat64Ptr(prefs.DiscoveryOpenness), prefs.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user preferences: %w", err)
	}
	return nil
}

// GetLearnedPreferences returns all learned-preference rows for a user.
func (db *DB) GetLearnedPreferences(ctx context.Context, userID string) ([]models.LearnedPreference, error) {
	rows, err := db.queryContext(ctx, `SELECT
		user_id, pattern_type, pattern_key, pattern_value,
		confidence_score, sample_count, last_reinforced_at
	FROM learned_preferences WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query learned preferences: %w", err)
	}
	defer closeQuietly(rows)

	var prefs []models.LearnedPreference
	for rows.Next() {
		var (
			p     models.LearnedPreference
			value sql.NullString
		)
		err := rows.Scan(&p.UserID, &p.PatternType, &p.PatternKey, &value,
			&p.ConfidenceScore, &p.SampleCount, &p.LastReinforcedAt)
		if err != nil {
			return nil, err
		}
		if err := unmarshalJSON(value, &p.PatternValue); err != nil {
			return nil, err
		}
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}

// UpsertLearnedPreference merges one reinforcement into the learned
// table. New keys insert with sample_count 1; existing keys take the
// fresh value and confidence and bump the sample count.
func (db *DB) UpsertLearnedPreference(ctx context.Context, pref *models.LearnedPreference) error {
	if pref.LastReinforcedAt.IsZero() {
		pref.LastReinforcedAt = time.Now().UTC()
	}

	value, err := marshalJSON(pref.PatternValue)
	if err != nil {
		return err
	}

	_, err = db.execContext(ctx, `INSERT INTO learned_preferences (
		user_id, pattern_type, pattern_key, pattern_value,
		confidence_score, sample_count, last_reinforced_at
	) VALUES (?, ?, ?, ?, ?, 1, ?)
	ON CONFLICT (user_id, pattern_type, pattern_key) DO UPDATE SET
		pattern_value = excluded.pattern_value,
		confidence_score = excluded.confidence_score,
		sample_count = learned_preferences.sample_count + 1,
		last_reinforced_at = excluded.last_reinforced_at`,
		pref.UserID, pref.PatternType, pref.PatternKey, value,
		pref.ConfidenceScore, pref.LastReinforcedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert learned preference: %w", err)
	}
	return nil
}

func nullInt64Ptr(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullIntPtr(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat64Ptr(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
