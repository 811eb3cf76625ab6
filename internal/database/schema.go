// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

package database

import (
	"context"
	"fmt"
)

// tableCreationQueries returns the DDL for every table, in dependency
// order. All statements are idempotent.
func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS properties (
			id VARCHAR PRIMARY KEY,
			title VARCHAR NOT NULL,
			description VARCHAR,
			price BIGINT NOT NULL,
			location VARCHAR,
			city VARCHAR,
			property_type VARCHAR,
			bedrooms INTEGER DEFAULT 0,
			bathrooms INTEGER DEFAULT 0,
			area_sqm DOUBLE DEFAULT 0,
			status VARCHAR DEFAULT 'active',
			approval_status VARCHAR DEFAULT 'pending',
			property_features VARCHAR,
			image_url VARCHAR,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS behavior_signals (
			id VARCHAR PRIMARY KEY,
			user_id VARCHAR NOT NULL,
			property_id VARCHAR NOT NULL,
			signal_type VARCHAR NOT NULL,
			signal_strength DOUBLE NOT NULL,
			time_spent_seconds INTEGER,
			scroll_depth INTEGER,
			photos_viewed INTEGER,
			sections_expanded VARCHAR,
			property_snapshot VARCHAR,
			session_id VARCHAR,
			device_type VARCHAR,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS user_interactions (
			id VARCHAR PRIMARY KEY,
			user_id VARCHAR NOT NULL,
			property_id VARCHAR NOT NULL,
			interaction_type VARCHAR NOT NULL,
			property_price BIGINT,
			property_type VARCHAR,
			property_location VARCHAR,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS user_preferences (
			user_id VARCHAR PRIMARY KEY,
			min_budget BIGINT,
			max_budget BIGINT,
			preferred_locations VARCHAR,
			preferred_property_types VARCHAR,
			min_bedrooms INTEGER,
			max_bedrooms INTEGER,
			must_have_features VARCHAR,
			deal_breakers VARCHAR,
			weights VARCHAR,
			discovery_openness DOUBLE,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS learned_preferences (
			user_id VARCHAR NOT NULL,
			pattern_type VARCHAR NOT NULL,
			pattern_key VARCHAR NOT NULL,
			pattern_value VARCHAR,
			confidence_score DOUBLE NOT NULL,
			sample_count INTEGER NOT NULL DEFAULT 1,
			last_reinforced_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, pattern_type, pattern_key)
		)`,
		`CREATE TABLE IF NOT EXISTS recommendation_history (
			id VARCHAR PRIMARY KEY,
			user_id VARCHAR NOT NULL,
			property_id VARCHAR NOT NULL,
			overall_score INTEGER NOT NULL,
			preference_score INTEGER NOT NULL,
			discovery_score INTEGER NOT NULL,
			match_reasons VARCHAR,
			discovery_reasons VARCHAR,
			recommendation_context VARCHAR,
			position_shown INTEGER,
			user_feedback VARCHAR,
			feedback_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}
}

// indexCreationQueries returns secondary indexes for the hot read
// paths: per-user recency scans and the active-property catalog.
func indexCreationQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_signals_user_created ON behavior_signals (user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_property ON behavior_signals (property_id)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_user_created ON user_interactions (user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_properties_status ON properties (status, approval_status)`,
		`CREATE INDEX IF NOT EXISTS idx_history_user_created ON recommendation_history (user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_history_user_property ON recommendation_history (user_id, property_id)`,
	}
}

func (db *DB) createTables(ctx context.Context) error {
	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute DDL: %w", err)
		}
	}
	return nil
}

func (db *DB) createIndexes(ctx context.Context) error {
	for _, query := range indexCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
