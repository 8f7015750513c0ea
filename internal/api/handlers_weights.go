// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"net/http"
)

// GetWeights handles GET /api/v1/weights
// Returns the active scoring weight configuration.
//
// @Summary Get scoring weights
// @Description Returns the persisted scoring weight document, including normalized component weights, version, and update attribution.
// @Tags Weights
// @Accept json
// @Produce json
// @Success 200 {object} APIResponse "Active weight document"
// @Router /weights [get]
func (h *Handler) GetWeights(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	doc, err := h.engine.GetWeights(r.Context())
	if err != nil {
		respondEngineError(rw, err, "Failed to load scoring weights")
		return
	}

	rw.Success(doc)
}

// UpdateWeights handles PUT /api/v1/weights
// Applies a partial weight update and returns the persisted document.
//
// Omitted components keep their stored value; the merged set is
// renormalized to sum to one before persisting. Requires the admin
// role. Connected WebSocket clients are notified of the new document.
//
// @Summary Update scoring weights
// @Description Merges the supplied component weights into the stored document, renormalizes, persists, and broadcasts the result. Unknown components or non-finite values are rejected with field details.
// @Tags Weights
// @Accept json
// @Produce json
// @Param request body weightsUpdateRequest true "Partial weight update"
// @Success 200 {object} APIResponse "Persisted weight document"
// @Failure 400 {object} APIResponse "Invalid weight update"
// @Router /weights [put]
func (h *Handler) UpdateWeights(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req weightsUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest("Invalid JSON body")
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ValidationError(apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	updatedBy := effectiveUserID(r, req.UpdatedBy)
	if updatedBy == "" {
		updatedBy = "api"
	}

	doc, err := h.engine.SetWeights(r.Context(), req.Weights, updatedBy)
	if err != nil {
		respondEngineError(rw, err, "Failed to update scoring weights")
		return
	}

	if h.wsHub != nil {
		h.wsHub.BroadcastWeightsUpdated(doc)
	}

	rw.Success(doc)
}
