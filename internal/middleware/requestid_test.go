// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/reelrank/reelrank/internal/logging"
)

func TestRequestIDGeneratesNewID(t *testing.T) {
	t.Parallel()

	var contextID, loggingID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contextID = GetRequestID(r.Context())
		loggingID = logging.RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	headerID := rec.Header().Get("X-Request-ID")
	if headerID == "" {
		t.Fatal("expected X-Request-ID header in response")
	}
	if _, err := uuid.Parse(headerID); err != nil {
		t.Errorf("X-Request-ID %q is not a valid UUID: %v", headerID, err)
	}
	if contextID != headerID {
		t.Errorf("context ID %q does not match header ID %q", contextID, headerID)
	}
	if loggingID != headerID {
		t.Errorf("logging context ID %q does not match header ID %q", loggingID, headerID)
	}
}

func TestRequestIDPreservesUpstreamID(t *testing.T) {
	t.Parallel()

	var contextID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contextID = GetRequestID(r.Context())
	}))

	const upstream = "upstream-id-42"
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-ID", upstream)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != upstream {
		t.Errorf("X-Request-ID = %q, want %q", got, upstream)
	}
	if contextID != upstream {
		t.Errorf("context ID = %q, want %q", contextID, upstream)
	}
}

func TestGetRequestIDMissing(t *testing.T) {
	t.Parallel()

	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID on empty context = %q, want empty", got)
	}
}
