// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/reelrank/reelrank/internal/analytics"
	"github.com/reelrank/reelrank/internal/auth"
	"github.com/reelrank/reelrank/internal/recommend"
)

// mockEngine provides a mock recommendation engine for handler tests.
// Uses function fields to allow test-specific behavior injection.
type mockEngine struct {
	GenerateRecommendationsFunc func(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	RecordLearningSignalFunc    func(ctx context.Context, sig recommend.Signal) error
	GetWeightsFunc              func(ctx context.Context) (*recommend.WeightDocument, error)
	SetWeightsFunc              func(ctx context.Context, weights map[string]float64, updatedBy string) (*recommend.WeightDocument, error)
	StatusFunc                  func() recommend.Status
}

func (m *mockEngine) GenerateRecommendations(ctx context.Context, req recommend.Request) (*recommend.Response, error) {
	if m.GenerateRecommendationsFunc != nil {
		return m.GenerateRecommendationsFunc(ctx, req)
	}
	return &recommend.Response{}, nil
}

func (m *mockEngine) RecordLearningSignal(ctx context.Context, sig recommend.Signal) error {
	if m.RecordLearningSignalFunc != nil {
		return m.RecordLearningSignalFunc(ctx, sig)
	}
	return nil
}

func (m *mockEngine) GetWeights(ctx context.Context) (*recommend.WeightDocument, error) {
	if m.GetWeightsFunc != nil {
		return m.GetWeightsFunc(ctx)
	}
	return recommend.DefaultWeightDocument(), nil
}

func (m *mockEngine) SetWeights(ctx context.Context, weights map[string]float64, updatedBy string) (*recommend.WeightDocument, error) {
	if m.SetWeightsFunc != nil {
		return m.SetWeightsFunc(ctx, weights, updatedBy)
	}
	return recommend.DefaultWeightDocument(), nil
}

func (m *mockEngine) Status() recommend.Status {
	if m.StatusFunc != nil {
		return m.StatusFunc()
	}
	return recommend.Status{}
}

// mockCatalog provides a mock catalog store for handler tests.
type mockCatalog struct {
	FindByIDFunc           func(ctx context.Context, id string) (*recommend.Movie, error)
	FindByGenreOverlapFunc func(ctx context.Context, genres []string, limit int) ([]recommend.Movie, error)
	FindTopRatedFunc       func(ctx context.Context, limit int) ([]recommend.Movie, error)
	ImportBatchFunc        func(ctx context.Context, movies []recommend.Movie) (int, int, error)
	CountFunc              func(ctx context.Context) (int, error)
	GenresFunc             func(ctx context.Context) ([]string, error)
}

func (m *mockCatalog) FindByID(ctx context.Context, id string) (*recommend.Movie, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return &recommend.Movie{ID: id, Title: "Movie " + id}, nil
}

func (m *mockCatalog) FindByGenreOverlap(ctx context.Context, genres []string, limit int) ([]recommend.Movie, error) {
	if m.FindByGenreOverlapFunc != nil {
		return m.FindByGenreOverlapFunc(ctx, genres, limit)
	}
	return nil, nil
}

func (m *mockCatalog) FindTopRated(ctx context.Context, limit int) ([]recommend.Movie, error) {
	if m.FindTopRatedFunc != nil {
		return m.FindTopRatedFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockCatalog) ImportBatch(ctx context.Context, movies []recommend.Movie) (int, int, error) {
	if m.ImportBatchFunc != nil {
		return m.ImportBatchFunc(ctx, movies)
	}
	return len(movies), 0, nil
}

func (m *mockCatalog) Count(ctx context.Context) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

func (m *mockCatalog) Genres(ctx context.Context) ([]string, error) {
	if m.GenresFunc != nil {
		return m.GenresFunc(ctx)
	}
	return nil, nil
}

// mockAnalytics provides a mock signal analytics store for handler tests.
type mockAnalytics struct {
	SnapshotFunc func(ctx context.Context, since time.Time, topN int) (*analytics.Stats, error)
	PingFunc     func(ctx context.Context) error
}

func (m *mockAnalytics) Snapshot(ctx context.Context, since time.Time, topN int) (*analytics.Stats, error) {
	if m.SnapshotFunc != nil {
		return m.SnapshotFunc(ctx, since, topN)
	}
	return &analytics.Stats{}, nil
}

func (m *mockAnalytics) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// mockEmbedder provides a mock embedding provider for handler tests.
type mockEmbedder struct {
	SearchSimilarFunc func(ctx context.Context, text string, threshold float64, limit int) ([]recommend.SimilarityMatch, error)
}

func (m *mockEmbedder) SearchSimilar(ctx context.Context, text string, threshold float64, limit int) ([]recommend.SimilarityMatch, error) {
	if m.SearchSimilarFunc != nil {
		return m.SearchSimilarFunc(ctx, text, threshold, limit)
	}
	return nil, nil
}

// newTestHandler builds a handler with mocks, a disabled auth manager,
// and no optional infrastructure attached.
func newTestHandler(t *testing.T, engine Engine, catalog Catalog) *Handler {
	t.Helper()

	manager, err := auth.NewManager(auth.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	cfg := DefaultConfig()
	cfg.RateLimitDisabled = true

	return NewHandler(cfg, engine, catalog, nil, manager, nil, zerolog.Nop())
}

// decodeResponse decodes the standard API envelope from a recorder.
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()

	var resp APIResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

// TestNewHandler tests the NewHandler constructor
func TestNewHandler(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t, &mockEngine{}, &mockCatalog{})

	if handler == nil {
		t.Fatal("NewHandler returned nil")
	}

	if handler.perfMon == nil {
		t.Error("Expected performance monitor to be initialized")
	}

	if handler.startTime.IsZero() {
		t.Error("Expected start time to be set")
	}

	if handler.PerformanceMonitor() != handler.perfMon {
		t.Error("PerformanceMonitor() should return the internal monitor")
	}
}

// TestCheckWebSocketOrigin tests the WebSocket origin validation
func TestCheckWebSocketOrigin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		corsOrigins    []string
		requestOrigin  string
		expectedResult bool
	}{
		{
			name:           "no origin header - must reject",
			corsOrigins:    []string{"http://localhost:7335"},
			requestOrigin:  "",
			expectedResult: false,
		},
		{
			name:           "wildcard origin - allow any",
			corsOrigins:    []string{"*"},
			requestOrigin:  "http://example.com",
			expectedResult: true,
		},
		{
			name:           "exact match - allow",
			corsOrigins:    []string{"http://localhost:7335"},
			requestOrigin:  "http://localhost:7335",
			expectedResult: true,
		},
		{
			name:           "multiple origins - match second",
			corsOrigins:    []string{"http://localhost:7335", "http://example.com"},
			requestOrigin:  "http://example.com",
			expectedResult: true,
		},
		{
			name:           "origin not in list - reject",
			corsOrigins:    []string{"http://localhost:7335"},
			requestOrigin:  "http://evil.com",
			expectedResult: false,
		},
		{
			name:           "empty allowed origins - reject",
			corsOrigins:    []string{},
			requestOrigin:  "http://example.com",
			expectedResult: false,
		},
		{
			name:           "different port - reject",
			corsOrigins:    []string{"http://localhost:7335"},
			requestOrigin:  "http://localhost:8080",
			expectedResult: false,
		},
		{
			name:           "different protocol - reject",
			corsOrigins:    []string{"http://localhost:7335"},
			requestOrigin:  "https://localhost:7335",
			expectedResult: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.CORSOrigins = tt.corsOrigins

			handler := &Handler{
				config: cfg,
				logger: zerolog.Nop(),
			}

			req := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
			if tt.requestOrigin != "" {
				req.Header.Set("Origin", tt.requestOrigin)
			}

			result := handler.checkWebSocketOrigin(req)

			if result != tt.expectedResult {
				t.Errorf("checkWebSocketOrigin() = %v, want %v", result, tt.expectedResult)
			}
		})
	}
}

// TestGetUpgrader tests the WebSocket upgrader configuration
func TestGetUpgrader(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.CORSOrigins = []string{"*"}

	handler := &Handler{
		config: cfg,
		logger: zerolog.Nop(),
	}

	upgrader := handler.getUpgrader()

	if upgrader.ReadBufferSize != 1024 {
		t.Errorf("ReadBufferSize = %d, want 1024", upgrader.ReadBufferSize)
	}

	if upgrader.WriteBufferSize != 1024 {
		t.Errorf("WriteBufferSize = %d, want 1024", upgrader.WriteBufferSize)
	}

	if upgrader.CheckOrigin == nil {
		t.Error("CheckOrigin function should be set")
	}
}

// TestSanitizeLogValue tests control character escaping
func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean string", "http://example.com", "http://example.com"},
		{"newline injection", "evil\nFAKE LOG LINE", "evil\\x0aFAKE LOG LINE"},
		{"carriage return", "a\rb", "a\\x0db"},
		{"delete char", "a\x7fb", "a\\x7fb"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeLogValue(tt.input); got != tt.want {
				t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
