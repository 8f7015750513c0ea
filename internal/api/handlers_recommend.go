// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"net/http"
)

// Recommendations handles POST /api/v1/recommendations
// Generates a personalized, paginated recommendation list for a user.
//
// @Summary Generate personalized movie recommendations
// @Description Scores catalog movies for the user with the blended ranking pipeline. Falls back from semantic search to preference-based scoring to popularity when upstream tiers are unavailable, and reports the tier used in the insights block.
// @Tags Recommendations
// @Accept json
// @Produce json
// @Param request body recommendationRequest true "Recommendation request"
// @Success 200 {object} APIResponse "Recommendations generated successfully"
// @Failure 400 {object} APIResponse "Invalid request body"
// @Router /recommendations [post]
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req recommendationRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest("Invalid JSON body")
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ValidationError(apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	resp, err := h.engine.GenerateRecommendations(r.Context(), req.toEngineRequest())
	if err != nil {
		respondEngineError(rw, err, "Failed to generate recommendations")
		return
	}

	rw.Success(resp)
}
