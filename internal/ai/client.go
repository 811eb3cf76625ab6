// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

/*
Package ai generates natural-language match explanations through an
OpenAI-compatible chat-completions backend.

The client is strictly best-effort: requests are rate limited, guarded
by a circuit breaker and capped by a short timeout. Any failure yields
an error the engine degrades to an empty explanation, so the serving
path never depends on the backend being up.
*/
package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/cipondok/astra-villa-nexus-sub017/internal/config"
	"github.com/cipondok/astra-villa-nexus-sub017/internal/metrics"
	"github.com/cipondok/astra-villa-nexus-sub017/internal/models"
	"github.com/cipondok/astra-villa-nexus-sub017/internal/recommend"
)

const (
	maxErrorBodySize = 64 * 1024
	maxCompletionTok = 150

	breakerMinRequests  = 5
	breakerFailureRatio = 0.6
)

// ErrDisabled is returned when the backend is not configured.
var ErrDisabled = errors.New("ai backend disabled")

// Client calls an OpenAI-compatible chat-completions endpoint. It
// implements recommend.Explainer.
type Client struct {
	cfg     config.AIConfig
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[string]
	logger  zerolog.Logger
}

// NewClient creates an explanation client from configuration.
func NewClient(cfg config.AIConfig, logger zerolog.Logger) *Client {
	cbName := "ai-explain"
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < breakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= breakerFailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		breaker: breaker,
		logger:  logger,
	}
}

// Explain produces a short natural-language rationale for a match.
func (c *Client) Explain(ctx context.Context, property *models.Property, result *recommend.MatchResult) (string, error) {
	if !c.cfg.Enabled {
		return "", ErrDisabled
	}

	if !c.limiter.Allow() {
		metrics.RecordAIRequest("rejected", 0)
		return "", fmt.Errorf("explanation rate limit exceeded")
	}

	start := time.Now()
	explanation, err := c.breaker.Execute(func() (string, error) {
		return c.complete(ctx, buildPrompt(property, result))
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "rejected"
		}
		metrics.RecordAIRequest(outcome, time.Since(start))
		return "", err
	}

	metrics.RecordAIRequest("ok", time.Since(start))
	return explanation, nil
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a real estate assistant. Explain in two sentences why a property matches a buyer, in plain language, based only on the facts given."},
			{Role: "user", Content: prompt},
		},
		MaxTokens: maxCompletionTok,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("explanation request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return "", fmt.Errorf("explanation backend returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("explanation backend returned no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// buildPrompt summarizes the listing and its scored factors for the
// model. Only facts already computed by the scorer are included.
func buildPrompt(property *models.Property, result *recommend.MatchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Property: %s in %s, %s. Price %d IDR, %d bedrooms, %d bathrooms, %.0f sqm, type %s.\n",
		property.Title, property.Location, property.City,
		property.Price, property.Bedrooms, property.Bathrooms, property.AreaSqm, property.PropertyType)
	fmt.Fprintf(&b, "Overall match score: %d/100.\n", result.OverallScore)

	if len(result.MatchReasons) > 0 {
		b.WriteString("Match factors:\n")
		for _, r := range result.MatchReasons {
			fmt.Fprintf(&b, "- %s (%.0f%%): %s\n", r.Factor, r.Score*100, r.Explanation)
		}
	}
	if result.IsDiscoveryMatch && len(result.DiscoveryReasons) > 0 {
		parts := make([]string, 0, len(result.DiscoveryReasons))
		for _, r := range result.DiscoveryReasons {
			parts = append(parts, r.Explanation)
		}
		fmt.Fprintf(&b, "Suggested for discovery: %s\n", strings.Join(parts, "; "))
	}
	return b.String()
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
