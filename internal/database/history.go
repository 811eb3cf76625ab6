// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cipondok/astra-villa-nexus-sub017/internal/models"
)

// InsertRecommendationHistory records one shown recommendation. Called
// from the event consumer, so failures are logged by the caller rather
// than surfaced to the request path.
func (db *DB) InsertRecommendationHistory(ctx context.Context, entry *models.RecommendationHistory) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.execContext(ctx, `INSERT INTO recommendation_history (
		id, user_id, property_id, overall_score, preference_score, discovery_score,
		match_reasons, discovery_reasons, recommendation_context, position_shown, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.PropertyID,
		entry.OverallScore, entry.PreferenceScore, entry.DiscoveryScore,
		rawJSONColumn(entry.MatchReasons), rawJSONColumn(entry.DiscoveryReasons),
		nullString(entry.RecommendationContext), entry.PositionShown, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert recommendation history: %w", err)
	}
	return nil
}

// UpdateRecommendationFeedback attaches user feedback to a history row.
// A missing row is a silent no-op.
func (db *DB) UpdateRecommendationFeedback(ctx context.Context, recommendationID, feedback string) error {
	_, err := db.execContext(ctx, `UPDATE recommendation_history
		SET user_feedback = ?, feedback_at = ?
		WHERE id = ?`,
		feedback, time.Now().UTC(), recommendationID)
	if err != nil {
		return fmt.Errorf("failed to update recommendation feedback: %w", err)
	}
	return nil
}

// GetRecommendationHistory returns a user's most recent history rows,
// newest first.
func (db *DB) GetRecommendationHistory(ctx context.Context, userID string, limit int) ([]models.RecommendationHistory, error) {
	rows, err := db.queryContext(ctx, `SELECT
		id, user_id, property_id, overall_score, preference_score, discovery_score,
		match_reasons, discovery_reasons, recommendation_context, position_shown,
		user_feedback, feedback_at, created_at
	FROM recommendation_history
	WHERE user_id = ?
	ORDER BY created_at DESC
	LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendation history: %w", err)
	}
	defer closeQuietly(rows)

	var entries []models.RecommendationHistory
	for rows.Next() {
		var (
			e          models.RecommendationHistory
			matches    sql.NullString
			discovery  sql.NullString
			recCtx     sql.NullString
			position   sql.NullInt64
			feedback   sql.NullString
			feedbackAt sql.NullTime
		)
		err := rows.Scan(&e.ID, &e.UserID, &e.PropertyID,
			&e.OverallScore, &e.PreferenceScore, &e.DiscoveryScore,
			&matches, &discovery, &recCtx, &position, &feedback, &feedbackAt, &e.CreatedAt)
		if err != nil {
			return nil, err
		}

		if matches.Valid {
			e.MatchReasons = []byte(matches.String)
		}
		if discovery.Valid {
			e.DiscoveryReasons = []byte(discovery.String)
		}
		e.RecommendationContext = recCtx.String
		e.PositionShown = int(position.Int64)
		e.UserFeedback = feedback.String
		if feedbackAt.Valid {
			t := feedbackAt.Time
			e.FeedbackAt = &t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func rawJSONColumn(raw []byte) sql.NullString {
	if len(raw) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(raw), Valid: true}
}
