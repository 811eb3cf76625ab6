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

// InsertSignal appends one behavior signal row. IDs and timestamps are
// generated when unset; rows are never updated afterwards.
func (db *DB) InsertSignal(ctx context.Context, signal *models.BehaviorSignal) error {
	if signal.ID == "" {
		signal.ID = uuid.New().String()
	}
	if signal.CreatedAt.IsZero() {
		signal.CreatedAt = time.Now().UTC()
	}

	sections, err := marshalJSON(signal.SectionsExpanded)
	if err != nil {
		return err
	}
	snapshot, err := marshalJSON(signal.PropertySnapshot)
	if err != nil {
		return err
	}

	_, err = db.execContext(ctx, `INSERT INTO behavior_signals (
		id, user_id, property_id, signal_type, signal_strength,
		time_spent_seconds, scroll_depth, photos_viewed, sections_expanded,
		property_snapshot, session_id, device_type, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		signal.ID, signal.UserID, signal.PropertyID, signal.SignalType, signal.SignalStrength,
		signal.TimeSpentSeconds, signal.ScrollDepth, signal.PhotosViewed, sections,
		snapshot, nullString(signal.SessionID), nullString(signal.DeviceType), signal.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert behavior signal: %w", err)
	}
	return nil
}

// GetRecentSignals returns up to limit signals for a user recorded
// since the given time, newest first.
func (db *DB) GetRecentSignals(ctx context.Context, userID string, since time.Time, limit int) ([]models.BehaviorSignal, error) {
	rows, err := db.queryContext(ctx, `SELECT
		id, user_id, property_id, signal_type, signal_strength,
		time_spent_seconds, scroll_depth, photos_viewed, sections_expanded,
		property_snapshot, session_id, device_type, created_at
	FROM behavior_signals
	WHERE user_id = ? AND created_at >= ?
	ORDER BY created_at DESC
	LIMIT ?`, userID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query behavior signals: %w", err)
	}
	defer closeQuietly(rows)

	var signals []models.BehaviorSignal
	for rows.Next() {
		var (
			s          models.BehaviorSignal
			timeSpent  sql.NullInt64
			scroll     sql.NullInt64
			photos     sql.NullInt64
			sections   sql.NullString
			snapshot   sql.NullString
			sessionID  sql.NullString
			deviceType sql.NullString
		)
		err := rows.Scan(&s.ID, &s.UserID, &s.PropertyID, &s.SignalType, &s.SignalStrength,
			&timeSpent, &scroll, &photos, &sections,
			&snapshot, &sessionID, &deviceType, &s.CreatedAt)
		if err != nil {
			return nil, err
		}

		s.TimeSpentSeconds = int(timeSpent.Int64)
		s.ScrollDepth = int(scroll.Int64)
		s.PhotosViewed = int(photos.Int64)
		s.SessionID = sessionID.String
		s.DeviceType = deviceType.String
		if err := unmarshalJSON(sections, &s.SectionsExpanded); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(snapshot, &s.PropertySnapshot); err != nil {
			return nil, err
		}
		signals = append(signals, s)
	}
	return signals, rows.Err()
}

// GetRecentInteractions returns up to limit legacy interaction rows for
// a user, newest first. Price, location and type prefer the values
// captured at interaction time; rows imported without them fall back to
// a join against the current catalog.
func (db *DB) GetRecentInteractions(ctx context.Context, userID string, since time.Time, limit int) ([]models.UserInteraction, error) {
	rows, err := db.queryContext(ctx, `SELECT
		i.id, i.user_id, i.property_id, i.interaction_type,
		COALESCE(NULLIF(i.property_price, 0), p.price, 0),
		COALESCE(i.property_location, p.location, ''),
		COALESCE(i.property_type, p.property_type, ''),
		i.created_at
	FROM user_interactions i
	LEFT JOIN properties p ON p.id = i.property_id
	WHERE i.user_id = ? AND i.created_at >= ?
	ORDER BY i.created_at DESC
	LIMIT ?`, userID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query user interactions: %w", err)
	}
	defer closeQuietly(rows)

	var interactions []models.UserInteraction
	for rows.Next() {
		var i models.UserInteraction
		err := rows.Scan(&i.ID, &i.UserID, &i.PropertyID, &i.InteractionType,
			&i.PropertyPrice, &i.PropertyLocation, &i.PropertyType, &i.CreatedAt)
		if err != nil {
			return nil, err
		}
		interactions = append(interactions, i)
	}
	return interactions, rows.Err()
}

// InsertInteraction appends one legacy interaction row. Kept for
// imports from the old tracking path.
func (db *DB) InsertInteraction(ctx context.Context, interaction *models.UserInteraction) error {
	if interaction.ID == "" {
		interaction.ID = uuid.New().String()
	}
	if interaction.CreatedAt.IsZero() {
		interaction.CreatedAt = time.Now().UTC()
	}

	_, err := db.execContext(ctx, `INSERT INTO user_interactions (
		id, user_id, property_id, interaction_type,
		property_price, property_type, property_location, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		interaction.ID, interaction.UserID, interaction.PropertyID,
		interaction.InteractionType, interaction.PropertyPrice,
		nullString(interaction.PropertyType), nullString(interaction.PropertyLocation),
		interaction.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert interaction: %w", err)
	}
	return nil
}

// GetActivitySummary tallies a user's recorded signals across both the
// signal table and the legacy interaction table.
func (db *DB) GetActivitySummary(ctx context.Context, userID string) (*models.ActivitySummary, error) {
	row, err := db.queryRowContext(ctx, `SELECT
		COUNT(*) FILTER (WHERE signal_type = ?),
		COUNT(*) FILTER (WHERE signal_type = ?),
		COUNT(*) FILTER (WHERE signal_type = ?),
		COUNT(*),
		MAX(created_at)
	FROM behavior_signals
	WHERE user_id = ?`,
		models.SignalView, models.SignalSave, models.SignalInquiry, userID)
	if err != nil {
		return nil, err
	}

	var (
		summary    models.ActivitySummary
		lastActive sql.NullTime
	)
	err = row.Scan(&summary.TotalViews, &summary.TotalSaves, &summary.TotalInquiries,
		&summary.TotalInteractions, &lastActive)
	if err != nil {
		return nil, fmt.Errorf("failed to scan activity summary: %w", err)
	}

	legacyRow, err := db.queryRowContext(ctx,
		`SELECT COUNT(*), MAX(created_at) FROM user_interactions WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}

	var (
		legacyCount int
		legacyLast  sql.NullTime
	)
	if err := legacyRow.Scan(&legacyCount, &legacyLast); err != nil {
		return nil, fmt.Errorf("failed to scan legacy activity: %w", err)
	}

	summary.TotalInteractions += legacyCount
	if legacyLast.Valid && (!lastActive.Valid || legacyLast.Time.After(lastActive.Time)) {
		lastActive = legacyLast
	}
	if lastActive.Valid {
		t := lastActive.Time
		summary.LastActive = &t
	}
	return &summary, nil
}
