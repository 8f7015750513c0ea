// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

//go:build integration

package testinfra

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
)

// SearchCapture represents a captured embedding search request.
type SearchCapture struct {
	Method  string
	Path    string
	Headers http.Header
	Body    []byte
}

// SearchRequest is the wire format the embedding provider sends to
// POST /search. Tests decode captured bodies into it for assertions.
type SearchRequest struct {
	Text      string  `json:"text"`
	Threshold float64 `json:"threshold"`
	Limit     int     `json:"limit"`
}

// MockEmbeddingServer provides a mock HTTP server standing in for the
// external embedding service. It captures all incoming requests for
// verification and serves configurable /search responses.
type MockEmbeddingServer struct {
	Server   *httptest.Server
	Captures []SearchCapture
	mu       sync.Mutex

	// ResponseStatus is the HTTP status code to return (default: 200).
	ResponseStatus int

	// ResponseBody is the response body to return (default: empty match
	// list).
	ResponseBody []byte

	// ResponseFunc allows custom response handling per request.
	ResponseFunc func(w http.ResponseWriter, r *http.Request)
}

// NewMockEmbeddingServer creates a new mock embedding server.
func NewMockEmbeddingServer(t *testing.T) *MockEmbeddingServer {
	t.Helper()

	mes := &MockEmbeddingServer{
		ResponseStatus: http.StatusOK,
		ResponseBody:   MockMatchesResponse(),
		Captures:       make([]SearchCapture, 0),
	}

	mes.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Read body
		body := make([]byte, 0)
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body.Close()
		}

		// Capture request
		mes.mu.Lock()
		mes.Captures = append(mes.Captures, SearchCapture{
			Method:  r.Method,
			Path:    r.URL.Path,
			Headers: r.Header.Clone(),
			Body:    body,
		})
		mes.mu.Unlock()

		// Custom response handler
		if mes.ResponseFunc != nil {
			mes.ResponseFunc(w, r)
			return
		}

		// Default response
		w.WriteHeader(mes.ResponseStatus)
		if mes.ResponseBody != nil {
			w.Write(mes.ResponseBody) //nolint:errcheck
		}
	}))

	return mes
}

// URL returns the server URL.
func (m *MockEmbeddingServer) URL() string {
	return m.Server.URL
}

// Close shuts down the server.
func (m *MockEmbeddingServer) Close() {
	m.Server.Close()
}

// GetCaptures returns all captured requests.
func (m *MockEmbeddingServer) GetCaptures() []SearchCapture {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]SearchCapture, len(m.Captures))
	copy(result, m.Captures)
	return result
}

// ClearCaptures clears all captured requests.
func (m *MockEmbeddingServer) ClearCaptures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Captures = make([]SearchCapture, 0)
}

// WaitForCaptures waits until at least n requests are captured or the
// timeout elapses.
func (m *MockEmbeddingServer) WaitForCaptures(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		count := len(m.Captures)
		m.mu.Unlock()
		if count >= n {
			return true
		}
		time.Sleep(50 * time.Millisecond)
	}
	return false
}

// DecodeSearchRequest decodes a captured body into the /search wire
// format.
func DecodeSearchRequest(capture SearchCapture) (SearchRequest, error) {
	var req SearchRequest
	err := json.Unmarshal(capture.Body, &req)
	return req, err
}

// MockMatchesResponse creates a /search response body with one match per
// movie ID, similarity descending in input order. With no IDs it returns
// an empty match list, which the provider treats as zero matches.
func MockMatchesResponse(movieIDs ...string) []byte {
	matches := make([]map[string]interface{}, 0, len(movieIDs))
	for i, id := range movieIDs {
		matches = append(matches, map[string]interface{}{
			"movieId":    id,
			"similarity": 0.99 - float64(i)*0.01,
		})
	}
	resp := map[string]interface{}{
		"matches": matches,
	}
	data, _ := json.Marshal(resp)
	return data
}

// MockErrorResponse creates a plain text error body for non-200
// responses. The provider folds a bounded slice of it into its error
// message.
func MockErrorResponse(message string) []byte {
	return []byte(message)
}
