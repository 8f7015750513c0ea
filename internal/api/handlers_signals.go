// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"net/http"
	"time"

	"github.com/reelrank/reelrank/internal/recommend"
)

// RecordSignal handles POST /api/v1/signals
// Accepts a learning signal for asynchronous processing.
//
// The response is 202 for every structurally valid signal. Profile
// updates, analytics, and broadcasts all happen behind the recorder,
// and their failures are telemetry, not caller errors. A verified token
// identity overrides the user_id in the body; anonymous signals are
// accepted and dropped downstream.
//
// @Summary Record a learning signal
// @Description Records a user interaction (view, click, save, rate, skip, remove, watch_time) that feeds behavioral profile learning and signal analytics. Returns 202 once the signal is accepted; downstream processing is asynchronous and best-effort.
// @Tags Signals
// @Accept json
// @Produce json
// @Param request body signalRequest true "Learning signal"
// @Success 202 {object} APIResponse "Signal accepted"
// @Failure 400 {object} APIResponse "Invalid signal"
// @Router /signals [post]
func (h *Handler) RecordSignal(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req signalRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest("Invalid JSON body")
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ValidationError(apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	action, err := recommend.ParseAction(req.Action)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	sig := req.toEngineSignal(effectiveUserID(r, req.UserID), action)
	if err := h.engine.RecordLearningSignal(r.Context(), sig); err != nil {
		respondEngineError(rw, err, "Failed to record signal")
		return
	}

	rw.Accepted(map[string]any{"accepted": true})
}

// SignalStats handles GET /api/v1/signals/stats
// Returns aggregated signal analytics over a trailing window.
//
// @Summary Get signal analytics
// @Description Returns signal totals, per-action counts, unique user counts, and the most interacted-with movies over the requested window. Requires the admin role. Responds 503 when the analytics store is disabled.
// @Tags Signals
// @Accept json
// @Produce json
// @Param days query int false "Aggregation window in days (default 30)"
// @Param top query int false "Top movies to include (default 10)"
// @Success 200 {object} APIResponse "Signal statistics"
// @Failure 503 {object} APIResponse "Analytics store disabled"
// @Router /signals/stats [get]
func (h *Handler) SignalStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.analytics == nil {
		rw.ServiceUnavailable("Signal analytics is not enabled")
		return
	}

	req := statsRequest{
		Days: getIntParam(r, "days", 30),
		Top:  getIntParam(r, "top", 10),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ValidationError(apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	since := time.Now().AddDate(0, 0, -req.Days)
	stats, err := h.analytics.Snapshot(r.Context(), since, req.Top)
	if err != nil {
		rw.InternalError(err, "Failed to compute signal statistics")
		return
	}

	rw.Success(stats)
}
