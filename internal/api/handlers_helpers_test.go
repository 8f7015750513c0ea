// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/reelrank/reelrank/internal/auth"
)

// TestEffectiveUserID tests the token-over-body precedence
func TestEffectiveUserID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		identity   *auth.Identity
		bodyUserID string
		want       string
	}{
		{"identity wins", &auth.Identity{UserID: "alice"}, "bob", "alice"},
		{"identity with empty body", &auth.Identity{UserID: "alice"}, "", "alice"},
		{"anonymous falls back to body", nil, "bob", "bob"},
		{"anonymous with empty body", nil, "", ""},
		{"identity without user id falls back", &auth.Identity{}, "bob", "bob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/signals", nil)
			if tt.identity != nil {
				req = req.WithContext(auth.WithIdentity(req.Context(), tt.identity))
			}

			if got := effectiveUserID(req, tt.bodyUserID); got != tt.want {
				t.Errorf("effectiveUserID() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestGetIntParam tests query parameter parsing with defaults
func TestGetIntParam(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		url          string
		key          string
		defaultValue int
		want         int
	}{
		{"present", "/x?limit=25", "limit", 10, 25},
		{"absent uses default", "/x", "limit", 10, 10},
		{"not a number uses default", "/x?limit=abc", "limit", 10, 10},
		{"negative parses", "/x?limit=-5", "limit", 10, -5},
		{"empty value uses default", "/x?limit=", "limit", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)

			if got := getIntParam(req, tt.key, tt.defaultValue); got != tt.want {
				t.Errorf("getIntParam() = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestValidateRequest tests the struct validation wrapper
func TestValidateRequest(t *testing.T) {
	t.Parallel()

	t.Run("valid struct returns nil", func(t *testing.T) {
		req := tokenRequest{Username: "admin", Password: "secret"}
		if apiErr := validateRequest(&req); apiErr != nil {
			t.Errorf("Expected nil for valid struct, got %+v", apiErr)
		}
	})

	t.Run("invalid struct returns details", func(t *testing.T) {
		req := tokenRequest{}
		apiErr := validateRequest(&req)
		if apiErr == nil {
			t.Fatal("Expected validation error for empty credentials")
		}
		if apiErr.Code != ErrCodeValidationError {
			t.Errorf("Code = %q, want %q", apiErr.Code, ErrCodeValidationError)
		}
		if len(apiErr.Details) == 0 {
			t.Error("Expected per-field details")
		}
	})
}
