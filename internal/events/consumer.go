// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

package events

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/cipondok/astra-villa-nexus-sub017/internal/models"
)

// Store is the persistence surface the consumer writes to.
type Store interface {
	InsertRecommendationHistory(ctx context.Context, entry *models.RecommendationHistory) error
	UpsertLearnedPreference(ctx context.Context, pref *models.LearnedPreference) error
}

// Consumer persists served-recommendation history and learned
// preference reinforcements. Handlers always ack: a row that cannot be
// written is logged and dropped rather than redelivered, since the
// data is advisory and the signal of record was already stored
// synchronously.
type Consumer struct {
	store  Store
	logger zerolog.Logger
}

// NewConsumer creates a consumer writing to the given store.
func NewConsumer(store Store, logger zerolog.Logger) *Consumer {
	return &Consumer{store: store, logger: logger}
}

// HandleRecommendationServed writes one history row per served item.
func (c *Consumer) HandleRecommendationServed(msg *message.Message) error {
	var event RecommendationServedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to decode served event")
		return nil
	}

	ctx := msg.Context()
	for _, item := range event.Items {
		entry := &models.RecommendationHistory{
			UserID:                event.UserID,
			PropertyID:            item.PropertyID,
			OverallScore:          item.OverallScore,
			PreferenceScore:       item.PreferenceScore,
			DiscoveryScore:        item.DiscoveryScore,
			MatchReasons:          item.MatchReasons,
			DiscoveryReasons:      item.DiscoveryReasons,
			RecommendationContext: event.Context,
			PositionShown:         item.Position,
			CreatedAt:             event.ServedAt,
		}
		if err := c.store.InsertRecommendationHistory(ctx, entry); err != nil {
			c.logger.Warn().Err(err).
				Str("user_id", event.UserID).
				Str("property_id", item.PropertyID).
				Msg("Failed to write recommendation history")
		}
	}
	return nil
}

// HandlePreferenceReinforce merges learned-preference upserts.
func (c *Consumer) HandlePreferenceReinforce(msg *message.Message) error {
	var event PreferenceReinforceEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to decode reinforce event")
		return nil
	}

	ctx := msg.Context()
	for i := range event.Preferences {
		pref := event.Preferences[i]
		if err := c.store.UpsertLearnedPreference(ctx, &pref); err != nil {
			c.logger.Warn().Err(err).
				Str("user_id", event.UserID).
				Str("pattern_key", pref.PatternKey).
				Msg("Failed to upsert learned preference")
		}
	}
	return nil
}
