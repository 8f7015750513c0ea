// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import "github.com/reelrank/reelrank/internal/recommend"

// recommendationRequest is the validated request body for POST /recommendations.
//
// Fields:
//   - UserID: Required user identifier (1-128 characters)
//   - Query: Optional free-text query for semantic search (max 500 characters)
//   - PreferredGenres: Optional genre filter (max 20 entries)
//   - Mood: Optional mood hint appended to the semantic query (max 128 characters)
//   - Page: 1-based page number (default 1)
//   - Limit: Results per page (1-100, default from config)
//   - SemanticThreshold: Minimum similarity for semantic matches (0-1, default from config)
type recommendationRequest struct {
	UserID            string   `json:"user_id" validate:"required,min=1,max=128"`
	Query             string   `json:"query" validate:"omitempty,max=500"`
	PreferredGenres   []string `json:"preferred_genres" validate:"omitempty,max=20,dive,min=1,max=64"`
	Mood              string   `json:"mood" validate:"omitempty,max=128"`
	Page              int      `json:"page" validate:"omitempty,min=1,max=100000"`
	Limit             int      `json:"limit" validate:"omitempty,min=1,max=100"`
	SemanticThreshold float64  `json:"semantic_threshold" validate:"omitempty,min=0,max=1"`
}

// toEngineRequest maps the API body onto the engine request type.
func (req *recommendationRequest) toEngineRequest() recommend.Request {
	return recommend.Request{
		UserID:            req.UserID,
		Query:             req.Query,
		PreferredGenres:   req.PreferredGenres,
		Mood:              req.Mood,
		Page:              req.Page,
		Limit:             req.Limit,
		SemanticThreshold: req.SemanticThreshold,
	}
}

// signalContextRequest carries optional context for a learning signal.
type signalContextRequest struct {
	PageType           string `json:"page_type" validate:"omitempty,max=64"`
	RecommendationType string `json:"recommendation_type" validate:"omitempty,max=64"`
	PositionInList     int    `json:"position_in_list" validate:"omitempty,min=0,max=10000"`
	SessionID          string `json:"session_id" validate:"omitempty,max=128"`
}

// signalRequest is the validated request body for POST /signals.
//
// UserID is optional because authenticated requests take the user from
// the verified token. Anonymous signals (no token, no user_id) are
// accepted and dropped by the recorder.
//
// Fields:
//   - UserID: Optional user identifier (max 128 characters)
//   - MovieID: Required movie identifier (1-128 characters)
//   - Action: Required interaction type (view, click, save, rate, skip, remove, watch_time)
//   - Value: Optional action-specific value (>= 0, e.g. star rating or watched seconds)
//   - Context: Optional interaction context
type signalRequest struct {
	UserID  string               `json:"user_id" validate:"omitempty,max=128"`
	MovieID string               `json:"movie_id" validate:"required,min=1,max=128"`
	Action  string               `json:"action" validate:"required,oneof=view click save rate skip remove watch_time"`
	Value   *float64             `json:"value" validate:"omitempty,gte=0"`
	Context signalContextRequest `json:"context"`
}

// toEngineSignal maps the API body onto the engine signal type. The
// engine fills in the ID and timestamp.
func (req *signalRequest) toEngineSignal(userID string, action recommend.Action) recommend.Signal {
	return recommend.Signal{
		UserID:  userID,
		MovieID: req.MovieID,
		Action:  action,
		Value:   req.Value,
		Context: recommend.SignalContext{
			PageType:           req.Context.PageType,
			RecommendationType: req.Context.RecommendationType,
			PositionInList:     req.Context.PositionInList,
			SessionID:          req.Context.SessionID,
		},
	}
}

// statsRequest represents the validated query parameters for the
// /signals/stats endpoint.
//
// Fields:
//   - Days: Aggregation window in days (1-3650)
//   - Top: Number of movies in the top-movies ranking (1-100)
type statsRequest struct {
	Days int `validate:"min=1,max=3650"`
	Top  int `validate:"min=1,max=100"`
}

// weightsUpdateRequest is the validated request body for PUT /weights.
// Partial updates are allowed; omitted components keep their stored
// value and the result is renormalized before persisting.
//
// Fields:
//   - Weights: Required map of component name to raw weight (at least one entry)
//   - UpdatedBy: Optional identifier recorded in the weight document
type weightsUpdateRequest struct {
	Weights   map[string]float64 `json:"weights" validate:"required,min=1"`
	UpdatedBy string             `json:"updated_by" validate:"omitempty,max=128"`
}

// importRequest is the validated request body for POST /admin/catalog/import.
// Individual movies failing catalog validation are skipped and counted,
// not rejected wholesale.
type importRequest struct {
	Movies []recommend.Movie `json:"movies" validate:"required,min=1,max=10000"`
}

// tokenRequest is the validated request body for POST /auth/token.
type tokenRequest struct {
	Username string `json:"username" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=1"`
}
