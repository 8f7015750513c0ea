// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/reelrank/reelrank/internal/auth"
)

// newTestRouter builds the full handler tree with mocks and a disabled
// auth manager.
func newTestRouter(t *testing.T, mutate func(*Config)) http.Handler {
	t.Helper()

	manager, err := auth.NewManager(auth.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	cfg := DefaultConfig()
	cfg.RateLimitDisabled = true
	if mutate != nil {
		mutate(&cfg)
	}

	handler := NewHandler(cfg, &mockEngine{}, &mockCatalog{}, nil, manager, nil, zerolog.Nop())
	return NewRouter(handler, manager, zerolog.Nop()).SetupChi()
}

// TestSetupChi_HealthRoute tests the liveness probe through the full stack
func TestSetupChi_HealthRoute(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	// Per-group middleware must have run
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	// Global request ID middleware must have run
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID header")
	}
}

// TestSetupChi_UnknownRoute tests the fallthrough 404
func TestSetupChi_UnknownRoute(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nonexistent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

// TestSetupChi_Metrics tests the Prometheus scrape endpoint
func TestSetupChi_Metrics(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.Len() == 0 {
		t.Error("Expected metrics exposition output")
	}
}

// TestSetupChi_SwaggerToggle tests the documentation route switch
func TestSetupChi_SwaggerToggle(t *testing.T) {
	t.Parallel()

	t.Run("enabled", func(t *testing.T) {
		router := newTestRouter(t, nil)

		req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		router := newTestRouter(t, func(c *Config) {
			c.SwaggerEnabled = false
		})

		req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})
}

// TestSetupChi_MovieByID tests path parameter routing end to end
func TestSetupChi_MovieByID(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies/m42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp APIResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	data, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("Expected object data, got %T", resp.Data)
	}
	if data["id"] != "m42" {
		t.Errorf("id = %v, want m42 (path parameter did not reach the handler)", data["id"])
	}
}

// TestSetupChi_Recommendations tests a POST through the full REST stack
func TestSetupChi_Recommendations(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, nil)

	body := `{"user_id":"u1","query":"heist"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
}

// TestSetupChi_CORSPreflight tests preflight resolution on the global stack
func TestSetupChi_CORSPreflight(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, func(c *Config) {
		c.CORSOrigins = []string{"*"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/recommendations", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK && w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 200 or 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

// TestSetupChi_AdminOpenWhenAuthDisabled tests that tuning routes stay
// reachable on an instance without authentication
func TestSetupChi_AdminOpenWhenAuthDisabled(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, nil)

	body := `{"weights":{"semantic":0.5}}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/weights", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
}

// TestSetupChi_AdminGatedWhenAuthEnabled tests role enforcement on the
// admin group
func TestSetupChi_AdminGatedWhenAuthEnabled(t *testing.T) {
	t.Parallel()

	hash, err := auth.HashPassword("correct-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	authCfg := auth.DefaultConfig()
	authCfg.Enabled = true
	authCfg.Secret = strings.Repeat("s", 32)
	authCfg.TokenTTL = time.Hour
	authCfg.AdminPasswordHash = hash

	manager, err := auth.NewManager(authCfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	cfg := DefaultConfig()
	cfg.RateLimitDisabled = true

	handler := NewHandler(cfg, &mockEngine{}, &mockCatalog{}, nil, manager, nil, zerolog.Nop())
	router := NewRouter(handler, manager, zerolog.Nop()).SetupChi()

	t.Run("no token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/weights", strings.NewReader(`{"weights":{"semantic":0.5}}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("non-admin token rejected", func(t *testing.T) {
		token, err := manager.GenerateToken("viewer", auth.RoleUser)
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}

		req := httptest.NewRequest(http.MethodPut, "/api/v1/weights", strings.NewReader(`{"weights":{"semantic":0.5}}`))
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})

	t.Run("admin token accepted", func(t *testing.T) {
		token, err := manager.ExchangeCredentials("admin", "correct-password")
		if err != nil {
			t.Fatalf("ExchangeCredentials: %v", err)
		}

		req := httptest.NewRequest(http.MethodPut, "/api/v1/weights", strings.NewReader(`{"weights":{"semantic":0.5}}`))
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200: %s", w.Code, w.Body.String())
		}
	})

	t.Run("read route stays open", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/weights", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200 for anonymous read", w.Code)
		}
	})
}
