// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/reelrank/reelrank/internal/recommend"
)

// TestGetMovie_Success tests movie lookup by path parameter
func TestGetMovie_Success(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{
		FindByIDFunc: func(_ context.Context, id string) (*recommend.Movie, error) {
			return &recommend.Movie{ID: id, Title: "Arrival", Year: 2016}, nil
		},
	}
	handler := newTestHandler(t, &mockEngine{}, catalog)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/m7", nil)
	req.SetPathValue("id", "m7")
	w := httptest.NewRecorder()

	handler.GetMovie(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := decodeResponse(t, w)
	if !resp.Success {
		t.Error("Expected success response")
	}

	data, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("Expected object data, got %T", resp.Data)
	}
	if data["title"] != "Arrival" {
		t.Errorf("title = %v, want Arrival", data["title"])
	}
}

// TestGetMovie_NotFound tests unknown movie IDs
func TestGetMovie_NotFound(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{
		FindByIDFunc: func(_ context.Context, _ string) (*recommend.Movie, error) {
			return nil, recommend.ErrNotFound
		},
	}
	handler := newTestHandler(t, &mockEngine{}, catalog)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/missing", nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()

	handler.GetMovie(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", w.Code)
	}

	resp := decodeResponse(t, w)
	if resp.Error == nil || resp.Error.Code != ErrCodeNotFound {
		t.Errorf("Expected error code %s, got %+v", ErrCodeNotFound, resp.Error)
	}
}

// TestGetMovie_MissingID tests the empty path parameter guard
func TestGetMovie_MissingID(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t, &mockEngine{}, &mockCatalog{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/", nil)
	w := httptest.NewRecorder()

	handler.GetMovie(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
}

// TestSimilarMovies_NoEmbedder tests graceful degradation without a provider
func TestSimilarMovies_NoEmbedder(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t, &mockEngine{}, &mockCatalog{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/m1/similar", nil)
	req.SetPathValue("id", "m1")
	w := httptest.NewRecorder()

	handler.SimilarMovies(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := decodeResponse(t, w)
	data, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("Expected object data, got %T", resp.Data)
	}

	similar, ok := data["similar"].([]any)
	if !ok {
		t.Fatalf("Expected similar to be a list, got %T", data["similar"])
	}
	if len(similar) != 0 {
		t.Errorf("Expected empty similar list, got %d entries", len(similar))
	}
}

// TestSimilarMovies_ResolvesNeighbors tests self-exclusion and catalog
// resolution of embedding matches
func TestSimilarMovies_ResolvesNeighbors(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{
		FindByIDFunc: func(_ context.Context, id string) (*recommend.Movie, error) {
			if id == "vanished" {
				return nil, recommend.ErrNotFound
			}
			return &recommend.Movie{ID: id, Title: "Movie " + id}, nil
		},
	}
	embedder := &mockEmbedder{
		SearchSimilarFunc: func(_ context.Context, _ string, _ float64, _ int) ([]recommend.SimilarityMatch, error) {
			return []recommend.SimilarityMatch{
				{MovieID: "m1", Similarity: 1.0}, // the source movie itself
				{MovieID: "m2", Similarity: 0.9},
				{MovieID: "vanished", Similarity: 0.8},
				{MovieID: "m3", Similarity: 0.7},
			}, nil
		},
	}

	handler := newTestHandler(t, &mockEngine{}, catalog)
	handler.SetEmbedder(embedder)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/m1/similar?limit=3", nil)
	req.SetPathValue("id", "m1")
	w := httptest.NewRecorder()

	handler.SimilarMovies(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := decodeResponse(t, w)
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("re-marshal data: %v", err)
	}

	var data struct {
		MovieID string         `json:"movie_id"`
		Similar []similarMovie `json:"similar"`
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}

	if data.MovieID != "m1" {
		t.Errorf("movie_id = %q, want m1", data.MovieID)
	}
	if len(data.Similar) != 2 {
		t.Fatalf("Expected 2 neighbors (self and vanished excluded), got %d", len(data.Similar))
	}
	if data.Similar[0].Movie.ID != "m2" || data.Similar[1].Movie.ID != "m3" {
		t.Errorf("neighbors = %s, %s, want m2, m3", data.Similar[0].Movie.ID, data.Similar[1].Movie.ID)
	}
}

// TestSimilarMovies_EmbedderFailure tests fallback to an empty list
func TestSimilarMovies_EmbedderFailure(t *testing.T) {
	t.Parallel()

	embedder := &mockEmbedder{
		SearchSimilarFunc: func(_ context.Context, _ string, _ float64, _ int) ([]recommend.SimilarityMatch, error) {
			return nil, errors.New("provider down")
		},
	}

	handler := newTestHandler(t, &mockEngine{}, &mockCatalog{})
	handler.SetEmbedder(embedder)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/m1/similar", nil)
	req.SetPathValue("id", "m1")
	w := httptest.NewRecorder()

	handler.SimilarMovies(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 on provider failure, got %d", w.Code)
	}
}

// TestSimilarMovies_UnknownSource tests that the source movie must exist
func TestSimilarMovies_UnknownSource(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{
		FindByIDFunc: func(_ context.Context, _ string) (*recommend.Movie, error) {
			return nil, recommend.ErrNotFound
		},
	}
	handler := newTestHandler(t, &mockEngine{}, catalog)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/missing/similar", nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()

	handler.SimilarMovies(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", w.Code)
	}
}

// TestSimilarMovies_LimitBounds tests the limit query parameter guard
func TestSimilarMovies_LimitBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
	}{
		{"limit zero", "?limit=0"},
		{"limit too large", "?limit=51"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t, &mockEngine{}, &mockCatalog{})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/m1/similar"+tt.query, nil)
			req.SetPathValue("id", "m1")
			w := httptest.NewRecorder()

			handler.SimilarMovies(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d", w.Code)
			}
		})
	}
}

// TestImportCatalog_Success tests batch import counts
func TestImportCatalog_Success(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{
		ImportBatchFunc: func(_ context.Context, movies []recommend.Movie) (int, int, error) {
			return len(movies) - 1, 1, nil
		},
	}
	handler := newTestHandler(t, &mockEngine{}, catalog)

	body := `{"movies":[{"id":"m1","title":"First"},{"id":"m2","title":"Second"},{"id":"","title":"No ID"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/catalog/import", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.ImportCatalog(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := decodeResponse(t, w)
	data, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("Expected object data, got %T", resp.Data)
	}
	if data["imported"] != float64(2) {
		t.Errorf("imported = %v, want 2", data["imported"])
	}
	if data["skipped"] != float64(1) {
		t.Errorf("skipped = %v, want 1", data["skipped"])
	}
}

// TestImportCatalog_Rejections tests invalid import payloads
func TestImportCatalog_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing movies", `{}`},
		{"empty movies", `{"movies":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t, &mockEngine{}, &mockCatalog{})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/catalog/import", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ImportCatalog(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

// TestImportCatalog_StoreFailure tests import error handling
func TestImportCatalog_StoreFailure(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{
		ImportBatchFunc: func(_ context.Context, _ []recommend.Movie) (int, int, error) {
			return 0, 0, errors.New("transaction failed")
		},
	}
	handler := newTestHandler(t, &mockEngine{}, catalog)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/catalog/import", strings.NewReader(`{"movies":[{"id":"m1","title":"First"}]}`))
	w := httptest.NewRecorder()

	handler.ImportCatalog(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}
}
