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

	"github.com/rs/zerolog"

	"github.com/reelrank/reelrank/internal/auth"
)

// newAuthEnabledHandler builds a handler whose auth manager accepts
// admin / correct-password.
func newAuthEnabledHandler(t *testing.T) *Handler {
	t.Helper()

	hash, err := auth.HashPassword("correct-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	cfg := auth.DefaultConfig()
	cfg.Enabled = true
	cfg.Secret = strings.Repeat("s", 32)
	cfg.TokenTTL = time.Hour
	cfg.AdminPasswordHash = hash

	manager, err := auth.NewManager(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	serverCfg := DefaultConfig()
	serverCfg.RateLimitDisabled = true

	return NewHandler(serverCfg, &mockEngine{}, &mockCatalog{}, nil, manager, nil, zerolog.Nop())
}

// TestExchangeToken_Disabled tests the response when auth is off
func TestExchangeToken_Disabled(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t, &mockEngine{}, &mockCatalog{})

	body := `{"username":"admin","password":"anything"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.ExchangeToken(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected status 503, got %d", w.Code)
	}

	resp := decodeResponse(t, w)
	if resp.Error == nil || resp.Error.Code != ErrCodeServiceUnavailable {
		t.Errorf("Expected error code %s, got %+v", ErrCodeServiceUnavailable, resp.Error)
	}
}

// TestExchangeToken_InvalidCredentials tests rejection of bad credentials
func TestExchangeToken_InvalidCredentials(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"wrong password", `{"username":"admin","password":"wrong"}`},
		{"wrong username", `{"username":"root","password":"correct-password"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newAuthEnabledHandler(t)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ExchangeToken(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("Expected status 401, got %d", w.Code)
			}

			resp := decodeResponse(t, w)
			if resp.Error == nil || resp.Error.Code != ErrCodeUnauthorized {
				t.Errorf("Expected error code %s, got %+v", ErrCodeUnauthorized, resp.Error)
			}
		})
	}
}

// TestExchangeToken_Success tests token issuance and the cookie fallback
func TestExchangeToken_Success(t *testing.T) {
	t.Parallel()

	handler := newAuthEnabledHandler(t)

	body := `{"username":"admin","password":"correct-password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.ExchangeToken(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := decodeResponse(t, w)
	data, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("Expected object data, got %T", resp.Data)
	}

	token, ok := data["token"].(string)
	if !ok || token == "" {
		t.Fatal("Expected a token in the response")
	}
	if data["token_type"] != "Bearer" {
		t.Errorf("token_type = %v, want Bearer", data["token_type"])
	}
	if data["expires_in"] != float64(3600) {
		t.Errorf("expires_in = %v, want 3600", data["expires_in"])
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.TokenCookie {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("Expected token cookie to be set")
	}
	if cookie.Value != token {
		t.Error("Cookie value should match the issued token")
	}
	if !cookie.HttpOnly {
		t.Error("Cookie should be HttpOnly")
	}
	if cookie.Secure {
		t.Error("Cookie should not be Secure on a plain HTTP request")
	}
}

// TestExchangeToken_Validation tests request body validation
func TestExchangeToken_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing username", `{"password":"x"}`},
		{"missing password", `{"username":"admin"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newAuthEnabledHandler(t)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ExchangeToken(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}
