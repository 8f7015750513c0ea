// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/reelrank/reelrank/internal/metrics"
	"github.com/reelrank/reelrank/internal/recommend"
)

// similarMovie pairs a resolved catalog movie with its similarity score.
type similarMovie struct {
	Movie      recommend.Movie `json:"movie"`
	Similarity float64         `json:"similarity"`
}

// GetMovie handles GET /api/v1/movies/{id}
// Returns a single catalog movie.
//
// @Summary Get a movie
// @Description Returns the catalog document for one movie ID.
// @Tags Movies
// @Accept json
// @Produce json
// @Param id path string true "Movie ID"
// @Success 200 {object} APIResponse "Movie found"
// @Failure 404 {object} APIResponse "Movie not found"
// @Router /movies/{id} [get]
func (h *Handler) GetMovie(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id := r.PathValue("id")
	if id == "" {
		rw.BadRequest("Missing movie ID")
		return
	}

	movie, err := h.catalog.FindByID(r.Context(), id)
	if err != nil {
		respondEngineError(rw, err, "Movie not found")
		return
	}

	rw.Success(movie)
}

// SimilarMovies handles GET /api/v1/movies/{id}/similar
// Returns embedding-space neighbors of a movie.
//
// The movie's title and overview are embedded and matched against the
// catalog. An unavailable embedding provider degrades to an empty list
// rather than an error, matching the recommendation pipeline's fallback
// behavior. Neighbors that left the catalog since indexing are dropped.
//
// @Summary Get similar movies
// @Description Returns movies close to the given one in embedding space, resolved through the catalog. Responds with an empty list when the embedding provider is disabled or unavailable.
// @Tags Movies
// @Accept json
// @Produce json
// @Param id path string true "Movie ID"
// @Param limit query int false "Maximum neighbors to return (default 10)"
// @Success 200 {object} APIResponse "Similar movies"
// @Failure 404 {object} APIResponse "Movie not found"
// @Router /movies/{id}/similar [get]
func (h *Handler) SimilarMovies(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id := r.PathValue("id")
	if id == "" {
		rw.BadRequest("Missing movie ID")
		return
	}

	movie, err := h.catalog.FindByID(r.Context(), id)
	if err != nil {
		respondEngineError(rw, err, "Movie not found")
		return
	}

	limit := getIntParam(r, "limit", 10)
	if limit < 1 || limit > 50 {
		rw.BadRequest("limit must be between 1 and 50")
		return
	}

	similar := make([]similarMovie, 0, limit)
	if h.embedder != nil {
		text := strings.TrimSpace(movie.Title + " " + movie.Overview)

		// Fetch one extra so the source movie can be dropped from its
		// own neighbor list without shorting the page.
		matches, err := h.embedder.SearchSimilar(r.Context(), text, 0, limit+1)
		if err != nil {
			h.logger.Warn().Err(err).Str("movie_id", id).Msg("similarity search unavailable, returning empty list")
			matches = nil
		}

		for _, match := range matches {
			if match.MovieID == id || len(similar) >= limit {
				continue
			}
			neighbor, err := h.catalog.FindByID(r.Context(), match.MovieID)
			if err != nil {
				if !errors.Is(err, recommend.ErrNotFound) {
					rw.InternalError(err, "Failed to resolve similar movies")
					return
				}
				continue
			}
			similar = append(similar, similarMovie{Movie: *neighbor, Similarity: match.Similarity})
		}
	}

	rw.Success(map[string]any{
		"movie_id": id,
		"similar":  similar,
	})
}

// ImportCatalog handles POST /api/v1/admin/catalog/import
// Bulk-imports movies into the catalog.
//
// Movies without an ID or title are skipped and counted, not rejected
// wholesale. Requires the admin role.
//
// @Summary Import catalog movies
// @Description Writes a batch of movies into the catalog in chunked transactions and reports imported and skipped counts. Existing movies are overwritten by ID.
// @Tags Catalog
// @Accept json
// @Produce json
// @Param request body importRequest true "Movies to import"
// @Success 200 {object} APIResponse "Import finished"
// @Failure 400 {object} APIResponse "Invalid import batch"
// @Router /admin/catalog/import [post]
func (h *Handler) ImportCatalog(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req importRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest("Invalid JSON body")
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ValidationError(apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	start := time.Now()
	imported, skipped, err := h.catalog.ImportBatch(r.Context(), req.Movies)
	if err != nil {
		rw.InternalError(err, "Catalog import failed")
		return
	}

	metrics.CatalogMoviesImported.Add(float64(imported))
	if h.wsHub != nil {
		h.wsHub.BroadcastCatalogImported(imported, time.Since(start))
	}

	rw.Success(map[string]any{
		"imported":    imported,
		"skipped":     skipped,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}
