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

	"github.com/google/uuid"

	"github.com/cipondok/astra-villa-nexus-sub017/internal/models"
)

const propertyColumns = `id, title, description, price, location, city, property_type,
	bedrooms, bathrooms, area_sqm, status, approval_status, property_features, image_url, created_at`

// GetActiveProperties returns up to limit active, approved listings,
// newest first.
func (db *DB) GetActiveProperties(ctx context.Context, limit int) ([]models.Property, error) {
	query := fmt.Sprintf(`SELECT %s FROM properties
		WHERE status = ? AND approval_status = ?
		ORDER BY created_at DESC
		LIMIT ?`, propertyColumns)

	rows, err := db.queryContext(ctx, query,
		models.PropertyStatusActive, models.ApprovalStatusApproved, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query active properties: %w", err)
	}
	defer closeQuietly(rows)

	var properties []models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, *p)
	}
	return properties, rows.Err()
}

// GetProperty returns a single listing by ID, or nil when absent.
func (db *DB) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	query := fmt.Sprintf(`SELECT %s FROM properties WHERE id = ?`, propertyColumns)

	row, err := db.queryRowContext(ctx, query, id)
	if err != nil {
		return nil, err
	}

	p, err := scanProperty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// InsertProperty adds a listing to the catalog, generating an ID and
// created-at timestamp when unset.
func (db *DB) InsertProperty(ctx context.Context, p *models.Property) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.Status == "" {
		p.Status = models.PropertyStatusActive
	}
	if p.ApprovalStatus == "" {
		p.ApprovalStatus = models.ApprovalStatusApproved
	}

	features, err := marshalJSON(p.Features)
	if err != nil {
		return err
	}

	_, err = db.execContext(ctx, `INSERT INTO properties (
		id, title, description, price, location, city, property_type,
		bedrooms, bathrooms, area_sqm, status, approval_status, property_features, image_url, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO NOTHING`,
		p.ID, p.Title, nullString(p.Description), p.Price,
		nullString(p.Location), nullString(p.City), nullString(p.PropertyType),
		p.Bedrooms, p.Bathrooms, p.AreaSqm, p.Status, p.ApprovalStatus,
		features, nullString(p.ImageURL), p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert property: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProperty(row rowScanner) (*models.Property, error) {
	var (
		p           models.Property
		description sql.NullString
		location    sql.NullString
		city        sql.NullString
		ptype       sql.NullString
		features    sql.NullString
		imageURL    sql.NullString
	)

	err := row.Scan(&p.ID, &p.Title, &description, &p.Price, &location, &city, &ptype,
		&p.Bedrooms, &p.Bathrooms, &p.AreaSqm, &p.Status, &p.ApprovalStatus,
		&features, &imageURL, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	p.Description = description.String
	p.Location = location.String
	p.City = city.String
	p.PropertyType = ptype.String
	p.ImageURL = imageURL.String
	if err := unmarshalJSON(features, &p.Features); err != nil {
		return nil, err
	}
	return &p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
