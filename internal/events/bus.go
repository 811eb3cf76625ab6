// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/cipondok/astra-villa-nexus-sub017/internal/models"
	"github.com/cipondok/astra-villa-nexus-sub017/internal/recommend"
)

// Config holds bus settings.
type Config struct {
	BufferSize   int
	CloseTimeout time.Duration
}

// DefaultConfig returns the stock bus configuration.
func DefaultConfig() Config {
	return Config{
		BufferSize:   256,
		CloseTimeout: 5 * time.Second,
	}
}

// Bus is the in-process pub/sub pipeline. It implements
// recommend.EventPublisher: publishes never block the request path and
// publish failures are logged and dropped.
type Bus struct {
	pubsub *gochannel.GoChannel
	router *message.Router
	logger zerolog.Logger
}

// NewBus creates the bus and its router. Handlers must be registered
// with RegisterConsumer before Run.
func NewBus(cfg Config, logger zerolog.Logger) (*Bus, error) {
	adapter := NewLoggerAdapter(logger)

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: int64(cfg.BufferSize),
	}, adapter)

	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: cfg.CloseTimeout,
	}, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create event router: %w", err)
	}
	router.AddMiddleware(middleware.Recoverer)

	return &Bus{
		pubsub: pubsub,
		router: router,
		logger: logger,
	}, nil
}

// RegisterConsumer attaches the persistence handlers to the router.
func (b *Bus) RegisterConsumer(consumer *Consumer) {
	b.router.AddNoPublisherHandler(
		"history_writer",
		TopicRecommendationServed,
		b.pubsub,
		consumer.HandleRecommendationServed,
	)
	b.router.AddNoPublisherHandler(
		"preference_reinforcer",
		TopicPreferenceReinforce,
		b.pubsub,
		consumer.HandlePreferenceReinforce,
	)
}

// Run starts the router and blocks until ctx is canceled or the router
// stops.
func (b *Bus) Run(ctx context.Context) error {
	return b.router.Run(ctx)
}

// Running returns a channel that closes once the router is running.
func (b *Bus) Running() <-chan struct{} {
	return b.router.Running()
}

// Close stops the router and the underlying pub/sub.
func (b *Bus) Close() error {
	if err := b.router.Close(); err != nil {
		return fmt.Errorf("failed to close event router: %w", err)
	}
	return b.pubsub.Close()
}

// PublishRecommendationServed records which listings were shown.
func (b *Bus) PublishRecommendationServed(userID, recCtx string, results []recommend.ScoredProperty) {
	event := RecommendationServedEvent{
		UserID:   userID,
		Context:  recCtx,
		Items:    make([]ServedItem, 0, len(results)),
		ServedAt: time.Now().UTC(),
	}
	for i, r := range results {
		item := ServedItem{
			PropertyID:      r.PropertyID,
			OverallScore:    r.OverallScore,
			PreferenceScore: r.PreferenceScore,
			DiscoveryScore:  r.DiscoveryScore,
			Position:        i + 1,
		}
		if reasons, err := json.Marshal(r.MatchReasons); err == nil {
			item.MatchReasons = reasons
		}
		if reasons, err := json.Marshal(r.DiscoveryReasons); err == nil {
			item.DiscoveryReasons = reasons
		}
		event.Items = append(event.Items, item)
	}
	b.publish(TopicRecommendationServed, event)
}

// PublishPreferenceReinforcement applies learned-preference upserts
// derived from a qualifying signal.
func (b *Bus) PublishPreferenceReinforcement(userID string, prefs []models.LearnedPreference) {
	if len(prefs) == 0 {
		return
	}
	b.publish(TopicPreferenceReinforce, PreferenceReinforceEvent{
		UserID:      userID,
		Preferences: prefs,
		DerivedAt:   time.Now().UTC(),
	})
}

func (b *Bus) publish(topic string, event interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Warn().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		b.logger.Warn().Err(err).Str("topic", topic).Msg("Failed to publish event")
	}
}
