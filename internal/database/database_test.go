// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

package database

import (
	"context"
	"testing"
	"time"

	"github.com/cipondok/astra-villa-nexus-sub017/internal/config"
	"github.com/cipondok/astra-villa-nexus-sub017/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(&config.DatabaseConfig{Path: ":memory:", Threads: 2, MaxMemory: "256MB"})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})
	return db
}

func testListing(id string, price int64) *models.Property {
	return &models.Property{
		ID:           id,
		Title:        "Listing " + id,
		Price:        price,
		Location:     "Kemang",
		City:         "Jakarta Selatan",
		PropertyType: "villa",
		Bedrooms:     3,
		Bathrooms:    2,
		AreaSqm:      180,
		Features:     models.FeatureBag{"pool": true, "garden": "yes"},
		CreatedAt:    time.Now().UTC().Add(-24 * time.Hour),
	}
}

func TestPropertyRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	want := testListing("prop-1", 1_500_000_000)
	if err := db.InsertProperty(ctx, want); err != nil {
		t.Fatalf("InsertProperty failed: %v", err)
	}

	got, err := db.GetProperty(ctx, "prop-1")
	if err != nil {
		t.Fatalf("GetProperty failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected property, got nil")
	}
	if got.Title != want.Title || got.Price != want.Price || got.PropertyType != want.PropertyType {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if !got.Features.Enabled("pool") || !got.Features.Enabled("garden") {
		t.Errorf("feature bag lost in round trip: %+v", got.Features)
	}
}

func TestGetPropertyMissing(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.GetProperty(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("GetProperty failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing property, got %+v", got)
	}
}

func TestGetActivePropertiesFiltersStatus(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	active := testListing("active-1", 1_000_000_000)
	if err := db.InsertProperty(ctx, active); err != nil {
		t.Fatalf("InsertProperty failed: %v", err)
	}

	sold := testListing("sold-1", 2_000_000_000)
	sold.Status = "sold"
	if err := db.InsertProperty(ctx, sold); err != nil {
		t.Fatalf("InsertProperty failed: %v", err)
	}

	pending := testListing("pending-1", 3_000_000_000)
	pending.ApprovalStatus = "pending"
	if err := db.InsertProperty(ctx, pending); err != nil {
		t.Fatalf("InsertProperty failed: %v", err)
	}

	got, err := db.GetActiveProperties(ctx, 10)
	if err != nil {
		t.Fatalf("GetActiveProperties failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "active-1" {
		t.Errorf("expected only the active approved listing, got %+v", got)
	}
}

func TestSignalRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	signal := &models.BehaviorSignal{
		UserID:           "user-1",
		PropertyID:       "prop-1",
		SignalType:       models.SignalDwell,
		SignalStrength:   0.65,
		TimeSpentSeconds: 145,
		ScrollDepth:      90,
		PhotosViewed:     7,
		SectionsExpanded: []string{"floorplan", "amenities"},
		PropertySnapshot: &models.PropertySnapshot{Price: 1_500_000_000, Location: "Kemang", PropertyType: "villa"},
		SessionID:        "sess-1",
		DeviceType:       "mobile",
	}
	if err := db.InsertSignal(ctx, signal); err != nil {
		t.Fatalf("InsertSignal failed: %v", err)
	}
	if signal.ID == "" {
		t.Error("expected generated signal ID")
	}

	since := time.Now().UTC().Add(-time.Hour)
	got, err := db.GetRecentSignals(ctx, "user-1", since, 10)
	if err != nil {
		t.Fatalf("GetRecentSignals failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(got))
	}

	s := got[0]
	if s.SignalType != models.SignalDwell || s.SignalStrength != 0.65 {
		t.Errorf("signal mismatch: %+v", s)
	}
	if s.TimeSpentSeconds != 145 || s.ScrollDepth != 90 || s.PhotosViewed != 7 {
		t.Errorf("engagement data lost: %+v", s)
	}
	if len(s.SectionsExpanded) != 2 || s.SectionsExpanded[0] != "floorplan" {
		t.Errorf("sections lost: %+v", s.SectionsExpanded)
	}
	if s.PropertySnapshot == nil || s.PropertySnapshot.Location != "Kemang" {
		t.Errorf("snapshot lost: %+v", s.PropertySnapshot)
	}
}

func TestGetRecentSignalsWindowAndOrder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i, age := range []time.Duration{time.Hour, 48 * time.Hour, 24 * 31 * time.Hour} {
		signal := &models.BehaviorSignal{
			ID:             string(rune('a' + i)),
			UserID:         "user-1",
			PropertyID:     "prop-1",
			SignalType:     models.SignalView,
			SignalStrength: 0.3,
			CreatedAt:      now.Add(-age),
		}
		if err := db.InsertSignal(ctx, signal); err != nil {
			t.Fatalf("InsertSignal failed: %v", err)
		}
	}

	got, err := db.GetRecentSignals(ctx, "user-1", now.AddDate(0, 0, -30), 10)
	if err != nil {
		t.Fatalf("GetRecentSignals failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 signals inside window, got %d", len(got))
	}
	if !got[0].CreatedAt.After(got[1].CreatedAt) {
		t.Error("expected newest-first ordering")
	}
}

func TestInteractionsJoinCatalog(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.InsertProperty(ctx, testListing("prop-1", 2_200_000_000)); err != nil {
		t.Fatalf("InsertProperty failed: %v", err)
	}
	err := db.InsertInteraction(ctx, &models.UserInteraction{
		UserID: "user-1", PropertyID: "prop-1", InteractionType: "view",
	})
	if err != nil {
		t.Fatalf("InsertInteraction failed: %v", err)
	}
	// Interaction against a listing that has since been removed.
	err = db.InsertInteraction(ctx, &models.UserInteraction{
		UserID: "user-1", PropertyID: "gone", InteractionType: "view",
	})
	if err != nil {
		t.Fatalf("InsertInteraction failed: %v", err)
	}

	got, err := db.GetRecentInteractions(ctx, "user-1", time.Now().UTC().Add(-time.Hour), 10)
	if err != nil {
		t.Fatalf("GetRecentInteractions failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 interactions, got %d", len(got))
	}
	for _, i := range got {
		switch i.PropertyID {
		case "prop-1":
			if i.PropertyPrice != 2_200_000_000 || i.PropertyLocation != "Kemang" || i.PropertyType != "villa" {
				t.Errorf("join missing catalog data: %+v", i)
			}
		case "gone":
			if i.PropertyPrice != 0 || i.PropertyLocation != "" {
				t.Errorf("expected zero values for orphan interaction: %+v", i)
			}
		}
	}
}

func TestInteractionsKeepInteractionTimeSnapshot(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.InsertProperty(ctx, testListing("prop-1", 3_000_000_000)); err != nil {
		t.Fatalf("InsertProperty failed: %v", err)
	}
	// Snapshot captured at interaction time, before the listing was
	// repriced. It must win over the current catalog value.
	err := db.InsertInteraction(ctx, &models.UserInteraction{
		UserID: "user-1", PropertyID: "prop-1", InteractionType: "view",
		PropertyPrice: 2_500_000_000, PropertyType: "villa", PropertyLocation: "Seminyak",
	})
	if err != nil {
		t.Fatalf("InsertInteraction failed: %v", err)
	}

	got, err := db.GetRecentInteractions(ctx, "user-1", time.Now().UTC().Add(-time.Hour), 10)
	if err != nil {
		t.Fatalf("GetRecentInteractions failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 interaction, got %d", len(got))
	}
	if got[0].PropertyPrice != 2_500_000_000 {
		t.Errorf("price = %d, want the interaction-time 2500000000", got[0].PropertyPrice)
	}
	if got[0].PropertyLocation != "Seminyak" {
		t.Errorf("location = %q, want the interaction-time Seminyak", got[0].PropertyLocation)
	}
}

func TestActivitySummary(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, st := range []string{models.SignalView, models.SignalView, models.SignalSave, models.SignalInquiry, models.SignalDwell} {
		err := db.InsertSignal(ctx, &models.BehaviorSignal{
			UserID: "user-1", PropertyID: "prop-1", SignalType: st, SignalStrength: 0.5,
		})
		if err != nil {
			t.Fatalf("InsertSignal failed: %v", err)
		}
	}
	err := db.InsertInteraction(ctx, &models.UserInteraction{
		UserID: "user-1", PropertyID: "prop-2", InteractionType: "view",
	})
	if err != nil {
		t.Fatalf("InsertInteraction failed: %v", err)
	}

	got, err := db.GetActivitySummary(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetActivitySummary failed: %v", err)
	}
	if got.TotalViews != 2 || got.TotalSaves != 1 || got.TotalInquiries != 1 {
		t.Errorf("unexpected tallies: %+v", got)
	}
	if got.TotalInteractions != 6 {
		t.Errorf("expected 6 total interactions, got %d", got.TotalInteractions)
	}
	if got.LastActive == nil {
		t.Error("expected last-active timestamp")
	}
}

func TestUserPreferencesUpsert(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	got, err := db.GetUserPreferences(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUserPreferences failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for absent preferences, got %+v", got)
	}

	minBudget := int64(1_000_000_000)
	maxBudget := int64(3_000_000_000)
	minBeds := 2
	openness := 0.4
	prefs := &models.UserPreferences{
		UserID:                 "user-1",
		MinBudget:              &minBudget,
		MaxBudget:              &maxBudget,
		PreferredLocations:     []string{"Kemang", "Senopati"},
		PreferredPropertyTypes: []string{"villa"},
		MinBedrooms:            &minBeds,
		MustHaveFeatures:       []string{"pool"},
		DealBreakers:           []string{"busy road"},
		Weights:                &models.ScoreWeights{Location: 0.4, Price: 0.3, Size: 0.1, Features: 0.1, Type: 0.1},
		DiscoveryOpenness:      &openness,
	}
	if err := db.UpsertUserPreferences(ctx, prefs); err != nil {
		t.Fatalf("UpsertUserPreferences failed: %v", err)
	}

	got, err = db.GetUserPreferences(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUserPreferences failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected preferences row")
	}
	if *got.MinBudget != minBudget || *got.MaxBudget != maxBudget {
		t.Errorf("budget mismatch: %+v", got)
	}
	if len(got.PreferredLocations) != 2 || got.PreferredLocations[0] != "Kemang" {
		t.Errorf("locations mismatch: %+v", got.PreferredLocations)
	}
	if got.Weights == nil || got.Weights.Location != 0.4 {
		t.Errorf("weights mismatch: %+v", got.Weights)
	}
	if got.DiscoveryOpenness == nil || *got.DiscoveryOpenness != 0.4 {
		t.Errorf("openness mismatch: %+v", got.DiscoveryOpenness)
	}

	// Second upsert replaces the row entirely, clearing dropped fields.
	replacement := &models.UserPreferences{
		UserID:             "user-1",
		PreferredLocations: []string{"Canggu"},
	}
	if err := db.UpsertUserPreferences(ctx, replacement); err != nil {
		t.Fatalf("UpsertUserPreferences failed: %v", err)
	}
	got, err = db.GetUserPreferences(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUserPreferences failed: %v", err)
	}
	if got.MinBudget != nil || got.Weights != nil {
		t.Errorf("expected cleared fields after replacement: %+v", got)
	}
	if len(got.PreferredLocations) != 1 || got.PreferredLocations[0] != "Canggu" {
		t.Errorf("locations not replaced: %+v", got.PreferredLocations)
	}
}

func TestLearnedPreferenceUpsertMerges(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	score := 0.8
	pref := &models.LearnedPreference{
		UserID:          "user-1",
		PatternType:     models.PatternFeatureAffinity,
		PatternKey:      "pool",
		PatternValue:    models.PatternValue{Score: &score},
		ConfidenceScore: 0.6,
	}
	for i := 0; i < 3; i++ {
		if err := db.UpsertLearnedPreference(ctx, pref); err != nil {
			t.Fatalf("UpsertLearnedPreference failed: %v", err)
		}
	}

	got, err := db.GetLearnedPreferences(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetLearnedPreferences failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row after repeated upserts, got %d", len(got))
	}
	if got[0].SampleCount != 3 {
		t.Errorf("expected sample count 3, got %d", got[0].SampleCount)
	}
	if got[0].PatternValue.Score == nil || *got[0].PatternValue.Score != 0.8 {
		t.Errorf("pattern value mismatch: %+v", got[0].PatternValue)
	}
	if got[0].ConfidenceScore != 0.6 {
		t.Errorf("confidence mismatch: %v", got[0].ConfidenceScore)
	}
}

func TestRecommendationHistoryFeedback(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	entry := &models.RecommendationHistory{
		UserID:                "user-1",
		PropertyID:            "prop-1",
		OverallScore:          87,
		PreferenceScore:       90,
		DiscoveryScore:        40,
		MatchReasons:          []byte(`[{"factor":"location","score":1}]`),
		RecommendationContext: "homepage",
		PositionShown:         1,
	}
	if err := db.InsertRecommendationHistory(ctx, entry); err != nil {
		t.Fatalf("InsertRecommendationHistory failed: %v", err)
	}

	if err := db.UpdateRecommendationFeedback(ctx, entry.ID, "liked"); err != nil {
		t.Fatalf("UpdateRecommendationFeedback failed: %v", err)
	}
	// Missing row is a no-op, not an error.
	if err := db.UpdateRecommendationFeedback(ctx, "no-such-row", "liked"); err != nil {
		t.Fatalf("expected no-op for missing row, got %v", err)
	}

	got, err := db.GetRecommendationHistory(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("GetRecommendationHistory failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(got))
	}
	if got[0].UserFeedback != "liked" || got[0].FeedbackAt == nil {
		t.Errorf("feedback not recorded: %+v", got[0])
	}
	if string(got[0].MatchReasons) != `[{"factor":"location","score":1}]` {
		t.Errorf("match reasons lost: %s", got[0].MatchReasons)
	}
}

func TestPing(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
