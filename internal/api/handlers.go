// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/cipondok/astra-villa-nexus-sub017/internal/auth"
	"github.com/cipondok/astra-villa-nexus-sub017/internal/logging"
	"github.com/cipondok/astra-villa-nexus-sub017/internal/metrics"
	"github.com/cipondok/astra-villa-nexus-sub017/internal/models"
	"github.com/cipondok/astra-villa-nexus-sub017/internal/recommend"
	"github.com/cipondok/astra-villa-nexus-sub017/internal/validation"
)

const maxRequestBodySize = 1 << 20 // 1 MiB

// Pinger reports persistence-layer health for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the dispatch endpoint and health probes.
type Handler struct {
	engine   *recommend.Engine
	verifier *auth.Verifier
	pinger   Pinger
}

// NewHandler creates the API handler.
func NewHandler(engine *recommend.Engine, verifier *auth.Verifier, pinger Pinger) *Handler {
	return &Handler{engine: engine, verifier: verifier, pinger: pinger}
}

// dispatchRequest is the union of all per-action request fields.
type dispatchRequest struct {
	Action           string                  `json:"action" validate:"required"`
	UserID           string                  `json:"userId"`
	PropertyID       string                  `json:"propertyId"`
	Limit            int                     `json:"limit" validate:"omitempty,gte=1"`
	Context          string                  `json:"context"`
	SignalType       string                  `json:"signalType"`
	SignalData       *models.SignalData      `json:"signalData"`
	Preferences      *models.UserPreferences `json:"preferences"`
	RecommendationID string                  `json:"recommendationId"`
	Feedback         string                  `json:"feedback"`
}

// Dispatch is the single JSON entry point. The action field selects
// the operation; every response is valid JSON.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req dispatchRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err := decoder.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request body"})
		metrics.RecordAPIRequest("invalid", http.StatusBadRequest, time.Since(start))
		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		metrics.RecordAPIRequest(actionLabel(req.Action), http.StatusBadRequest, time.Since(start))
		return
	}

	userID := h.verifier.ResolveUserID(r, req.UserID)
	ctx := r.Context()

	var status int
	switch req.Action {
	case "get_recommendations":
		status = h.getRecommendations(ctx, w, userID, &req)
	case "get_user_profile":
		status = h.getUserProfile(ctx, w, userID)
	case "record_signal":
		status = h.recordSignal(ctx, w, userID, &req)
	case "update_preferences":
		status = h.updatePreferences(ctx, w, userID, &req)
	case "get_match_report":
		status = h.getMatchReport(ctx, w, userID, &req)
	case "provide_feedback":
		status = h.provideFeedback(ctx, w, &req)
	default:
		status = http.StatusBadRequest
		writeJSON(w, status, errorBody{Error: "Invalid action"})
	}

	metrics.RecordAPIRequest(actionLabel(req.Action), status, time.Since(start))
}

// actionLabel clamps the metric label to the dispatched actions.
// Labels come from untrusted input; an open set would let clients mint
// unbounded metric series.
func actionLabel(action string) string {
	switch action {
	case "get_recommendations", "get_user_profile", "record_signal",
		"update_preferences", "get_match_report", "provide_feedback":
		return action
	}
	return "invalid"
}

// signalLabel clamps the signal-type metric label to the known types.
// Unknown types are still recorded with default strength, but share one
// metric series.
func signalLabel(signalType string) string {
	if models.KnownSignalType(signalType) {
		return signalType
	}
	return "other"
}

func (h *Handler) getRecommendations(ctx context.Context, w http.ResponseWriter, userID string, req *dispatchRequest) int {
	start := time.Now()
	set, err := h.engine.GetRecommendations(ctx, userID, req.Limit, req.Context)
	if err != nil {
		return writeInternalError(ctx, w, err)
	}

	metrics.RecordRecommendationBatch(
		set.Meta.PreferenceMatches,
		set.Meta.DiscoveryMatches,
		set.Meta.HasPersonalization,
		time.Since(start),
	)
	writeJSON(w, http.StatusOK, set)
	return http.StatusOK
}

type profileResponse struct {
	Profile         *recommend.UserProfile  `json:"profile"`
	ActivitySummary *models.ActivitySummary `json:"activitySummary"`
}

func (h *Handler) getUserProfile(ctx context.Context, w http.ResponseWriter, userID string) int {
	// No resolvable user is not an error for this read.
	if userID == "" {
		writeJSON(w, http.StatusOK, profileResponse{})
		return http.StatusOK
	}

	profile, summary, err := h.engine.GetUserProfile(ctx, userID)
	if err != nil {
		return writeInternalError(ctx, w, err)
	}
	writeJSON(w, http.StatusOK, profileResponse{Profile: profile, ActivitySummary: summary})
	return http.StatusOK
}

type successBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (h *Handler) recordSignal(ctx context.Context, w http.ResponseWriter, userID string, req *dispatchRequest) int {
	if userID == "" || req.PropertyID == "" {
		writeJSON(w, http.StatusBadRequest, successBody{Success: false, Error: "Missing userId or propertyId"})
		return http.StatusBadRequest
	}

	if err := h.engine.RecordSignal(ctx, userID, req.PropertyID, req.SignalType, req.SignalData); err != nil {
		return writeInternalError(ctx, w, err)
	}
	metrics.SignalsRecorded.WithLabelValues(signalLabel(req.SignalType)).Inc()
	writeJSON(w, http.StatusOK, successBody{Success: true})
	return http.StatusOK
}

func (h *Handler) updatePreferences(ctx context.Context, w http.ResponseWriter, userID string, req *dispatchRequest) int {
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Not authenticated"})
		return http.StatusUnauthorized
	}
	if req.Preferences == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Missing preferences"})
		return http.StatusBadRequest
	}

	if err := h.engine.UpdatePreferences(ctx, userID, req.Preferences); err != nil {
		return writeInternalError(ctx, w, err)
	}
	writeJSON(w, http.StatusOK, successBody{Success: true})
	return http.StatusOK
}

func (h *Handler) getMatchReport(ctx context.Context, w http.ResponseWriter, userID string, req *dispatchRequest) int {
	if userID == "" || req.PropertyID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Missing userId or propertyId"})
		return http.StatusBadRequest
	}

	report, err := h.engine.GetMatchReport(ctx, userID, req.PropertyID)
	if err != nil {
		// A missing property deliberately surfaces as 500, not 404.
		return writeInternalError(ctx, w, err)
	}
	writeJSON(w, http.StatusOK, report)
	return http.StatusOK
}

func (h *Handler) provideFeedback(ctx context.Context, w http.ResponseWriter, req *dispatchRequest) int {
	if req.RecommendationID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Missing recommendationId"})
		return http.StatusBadRequest
	}

	if err := h.engine.ProvideFeedback(ctx, req.RecommendationID, req.Feedback); err != nil {
		return writeInternalError(ctx, w, err)
	}
	writeJSON(w, http.StatusOK, successBody{Success: true})
	return http.StatusOK
}

// HealthLive reports process liveness.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthReady reports readiness, including database connectivity.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(body)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write response")
	}
}

// writeInternalError is the single 500 path: log the failure, return
// its message in the error field.
func writeInternalError(ctx context.Context, w http.ResponseWriter, err error) int {
	logging.Ctx(ctx).Error().Err(err).Msg("Request failed")
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	return http.StatusInternalServerError
}
