// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cipondok/astra-villa-nexus-sub017/internal/logging"
	"github.com/cipondok/astra-villa-nexus-sub017/internal/models"
)

// SeedMockData inserts a small demo catalog for local runs and demos.
// Inserts are idempotent: listings carry fixed ids and existing rows are
// left untouched.
func (db *DB) SeedMockData(ctx context.Context) error {
	logging.Info().Msg("Seeding database with demo listings...")

	now := time.Now().UTC()
	seeded := 0
	for i, listing := range demoListings() {
		p := listing
		p.ID = fmt.Sprintf("seed-%03d", i+1)
		// Stagger ages so freshness scoring has something to rank.
		p.CreatedAt = now.AddDate(0, 0, -(i * 9 % 120))
		if err := db.InsertProperty(ctx, &p); err != nil {
			return fmt.Errorf("seed listing %s: %w", p.ID, err)
		}
		seeded++
	}

	logging.Info().Int("listings", seeded).Msg("Demo catalog seeded")
	return nil
}

// demoListings returns a spread of Indonesian listings covering the
// price bands, property types and feature combinations the scorers
// distinguish. Prices are in IDR.
func demoListings() []models.Property {
	return []models.Property{
		{
			Title: "Modern Villa with Private Pool", Location: "Canggu", City: "Badung",
			PropertyType: "villa", Price: 4_500_000_000, Bedrooms: 4, Bathrooms: 4, AreaSqm: 320,
			Features: models.FeatureBag{"pool": true, "garden": true, "parking": "yes", "furnished": true},
		},
		{
			Title: "Minimalist Family House", Location: "Kemang", City: "Jakarta Selatan",
			PropertyType: "house", Price: 2_800_000_000, Bedrooms: 3, Bathrooms: 2, AreaSqm: 180,
			Features: models.FeatureBag{"garage": true, "garden": "yes"},
		},
		{
			Title: "City View Apartment", Location: "Sudirman", City: "Jakarta Pusat",
			PropertyType: "apartment", Price: 1_200_000_000, Bedrooms: 2, Bathrooms: 1, AreaSqm: 74,
			Features: models.FeatureBag{"gym": true, "pool": "yes", "security": true},
		},
		{
			Title: "Beachfront Villa Estate", Location: "Uluwatu", City: "Badung",
			PropertyType: "villa", Price: 12_000_000_000, Bedrooms: 6, Bathrooms: 7, AreaSqm: 650,
			Features: models.FeatureBag{"pool": true, "ocean_view": true, "staff_quarters": true},
		},
		{
			Title: "Compact Studio near Campus", Location: "Dago", City: "Bandung",
			PropertyType: "apartment", Price: 450_000_000, Bedrooms: 1, Bathrooms: 1, AreaSqm: 28,
			Features: models.FeatureBag{"furnished": "yes"},
		},
		{
			Title: "Classic Joglo House", Location: "Prawirotaman", City: "Yogyakarta",
			PropertyType: "house", Price: 1_750_000_000, Bedrooms: 4, Bathrooms: 3, AreaSqm: 240,
			Features: models.FeatureBag{"garden": true, "parking": true},
		},
		{
			Title: "Riverside Townhouse", Location: "Serpong", City: "Tangerang Selatan",
			PropertyType: "townhouse", Price: 950_000_000, Bedrooms: 3, Bathrooms: 2, AreaSqm: 120,
			Features: models.FeatureBag{"playground": "yes", "security": true},
		},
		{
			Title: "Penthouse with Skyline Terrace", Location: "Mega Kuningan", City: "Jakarta Selatan",
			PropertyType: "apartment", Price: 8_500_000_000, Bedrooms: 3, Bathrooms: 3, AreaSqm: 260,
			Features: models.FeatureBag{"terrace": true, "private_lift": true, "gym": "yes"},
		},
		{
			Title: "Hillside Retreat Villa", Location: "Ubud", City: "Gianyar",
			PropertyType: "villa", Price: 3_200_000_000, Bedrooms: 3, Bathrooms: 3, AreaSqm: 280,
			Features: models.FeatureBag{"pool": "yes", "rice_field_view": true, "garden": true},
		},
		{
			Title: "Starter Home in Green Cluster", Location: "Cibubur", City: "Bekasi",
			PropertyType: "house", Price: 650_000_000, Bedrooms: 2, Bathrooms: 1, AreaSqm: 72,
			Features: models.FeatureBag{"parking": "yes"},
		},
		{
			Title: "Serviced Apartment near CBD", Location: "Thamrin", City: "Jakarta Pusat",
			PropertyType: "apartment", Price: 2_100_000_000, Bedrooms: 2, Bathrooms: 2, AreaSqm: 95,
			Features: models.FeatureBag{"pool": true, "gym": true, "furnished": "yes"},
		},
		{
			Title: "Surf Break Guesthouse", Location: "Kuta Lombok", City: "Lombok Tengah",
			PropertyType: "house", Price: 1_100_000_000, Bedrooms: 5, Bathrooms: 4, AreaSqm: 210,
			Features: models.FeatureBag{"pool": "no", "garden": true, "parking": true},
		},
	}
}
