// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

// Package metrics registers Prometheus instrumentation for the
// recommendation service: API latency, engine scoring, signal intake,
// event-bus writes and the AI explanation backend.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action", "status"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"action", "status"},
	)

	// Engine metrics
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Total recommendations returned, by match kind",
		},
		[]string{"kind"}, // "preference" or "discovery"
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "End-to-end duration of one recommendation pass",
			Buckets: prometheus.DefBuckets,
		},
	)

	PersonalizedProfiles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_profiles_total",
			Help: "Profiles built, split by personalization state",
		},
		[]string{"personalized"}, // "true" or "false"
	)

	// Signal intake metrics
	SignalsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "behavior_signals_recorded_total",
			Help: "Behavior signals recorded, by signal type",
		},
		[]string{"signal_type"},
	)

	ReinforcementsDerived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "preference_reinforcements_total",
			Help: "Learned-preference reinforcement batches derived from signals",
		},
	)

	// Event bus metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Events published to the in-process bus",
		},
		[]string{"topic"},
	)

	EventWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_write_failures_total",
			Help: "Best-effort event writes that were dropped",
		},
		[]string{"topic"},
	)

	// AI explanation backend metrics
	AIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_explain_requests_total",
			Help: "AI explanation requests, by outcome",
		},
		[]string{"outcome"}, // "ok", "error", "rejected"
	)

	AIRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ai_explain_duration_seconds",
			Help:    "Duration of AI explanation requests",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Database metrics
	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)
)

// RecordAPIRequest records one dispatched API action.
func RecordAPIRequest(action string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	APIRequestsTotal.WithLabelValues(action, code).Inc()
	APIRequestDuration.WithLabelValues(action, code).Observe(duration.Seconds())
}

// RecordRecommendationBatch records the outcome of one serving pass.
func RecordRecommendationBatch(preferenceMatches, discoveryMatches int, personalized bool, duration time.Duration) {
	RecommendationsServed.WithLabelValues("preference").Add(float64(preferenceMatches))
	RecommendationsServed.WithLabelValues("discovery").Add(float64(discoveryMatches))
	PersonalizedProfiles.WithLabelValues(strconv.FormatBool(personalized)).Inc()
	RecommendationDuration.Observe(duration.Seconds())
}

// RecordAIRequest records one explanation attempt.
func RecordAIRequest(outcome string, duration time.Duration) {
	AIRequests.WithLabelValues(outcome).Inc()
	AIRequestDuration.Observe(duration.Seconds())
}
