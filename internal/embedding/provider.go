// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package embedding

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/reelrank/reelrank/internal/cache"
	"github.com/reelrank/reelrank/internal/metrics"
	"github.com/reelrank/reelrank/internal/recommend"
)

// maxErrorBodySize limits how much of a failed response body is read
// for error reporting.
const maxErrorBodySize = 64 * 1024

// consecutiveFailureTrip is how many failures in a row open the
// circuit.
const consecutiveFailureTrip = 5

// Config holds the embedding service client settings.
type Config struct {
	// Enabled toggles semantic search. When off the engine serves the
	// preference and fallback tiers only.
	// Default: false
	Enabled bool `koanf:"enabled"`

	// URL is the base URL of the embedding service.
	// Default: ""
	URL string `koanf:"url"`

	// APIKey authenticates requests via the X-API-Key header. Empty
	// sends no header.
	// Default: ""
	APIKey string `koanf:"api_key"`

	// Timeout bounds each similarity search request.
	// Default: 10s
	Timeout time.Duration `koanf:"timeout"`

	// RequestsPerSecond throttles outbound calls to the provider.
	// Default: 20
	RequestsPerSecond float64 `koanf:"requests_per_second"`

	// Burst is the rate limiter burst size.
	// Default: 40
	Burst int `koanf:"burst"`

	// MemoSize bounds the in-process response memo. Identical searches
	// within the memo window are answered without a provider call.
	// Default: 256
	MemoSize int `koanf:"memo_size"`

	// MemoTTL is how long memoized responses stay valid.
	// Default: 10m
	MemoTTL time.Duration `koanf:"memo_ttl"`
}

// DefaultConfig returns the embedding client defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:           false,
		Timeout:           10 * time.Second,
		RequestsPerSecond: 20,
		Burst:             40,
		MemoSize:          256,
		MemoTTL:           10 * time.Minute,
	}
}

// Validate checks the configuration. Only enabled configurations are
// validated in full.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.URL == "" {
		return errors.New("embedding url required when enabled")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("embedding timeout must be positive, got %s", c.Timeout)
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("embedding requests per second must be positive, got %f", c.RequestsPerSecond)
	}
	if c.Burst <= 0 {
		return fmt.Errorf("embedding burst must be positive, got %d", c.Burst)
	}
	return nil
}

// HTTPProvider queries an external embedding service for semantic
// similarity matches. Calls are rate limited and guarded by a circuit
// breaker; successful responses are memoized so repeated searches for
// the same text do not leave the process.
//
// Search results do not depend on the scoring weights, so the memo
// survives weight updates that invalidate the recommendation cache.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]recommend.SimilarityMatch]
	limiter *rate.Limiter
	memo    *cache.LRU[[]recommend.SimilarityMatch]
	logger  zerolog.Logger
}

// FromConfig builds the provider wired into the engine. A disabled
// configuration yields a nil provider, which the engine treats as
// "semantic tier off".
func FromConfig(cfg Config, logger zerolog.Logger) (recommend.EmbeddingProvider, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	return NewHTTPProvider(cfg, logger)
}

// NewHTTPProvider creates a client for the embedding service.
func NewHTTPProvider(cfg Config, logger zerolog.Logger) (*HTTPProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid embedding config: %w", err)
	}

	log := logger.With().Str("component", "embedding").Logger()
	breaker := gobreaker.NewCircuitBreaker[[]recommend.SimilarityMatch](gobreaker.Settings{
		Name:        "embedding-service",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= consecutiveFailureTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToGauge(to))
			log.Warn().
				Str("breaker", name).
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("Embedding circuit breaker state change")
		},
	})

	return &HTTPProvider{
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		memo:    cache.NewLRU[[]recommend.SimilarityMatch](cfg.MemoSize, cfg.MemoTTL),
		logger:  log,
	}, nil
}

// searchRequest is the wire format sent to the embedding service.
type searchRequest struct {
	Text      string  `json:"text"`
	Threshold float64 `json:"threshold"`
	Limit     int     `json:"limit"`
}

// searchResponse is the wire format returned by the embedding service.
type searchResponse struct {
	Matches []recommend.SimilarityMatch `json:"matches"`
}

// SearchSimilar returns catalog movies semantically similar to text,
// best match first. Errors surface when the service is unreachable,
// returns a non-200 status, or the circuit is open; the engine treats
// any of those as zero matches.
func (p *HTTPProvider) SearchSimilar(ctx context.Context, text string, threshold float64, limit int) ([]recommend.SimilarityMatch, error) {
	if text == "" {
		return nil, nil
	}

	key := cache.GenerateKey("similar", map[string]any{
		"text":      text,
		"threshold": threshold,
		"limit":     limit,
	})
	if matches, ok := p.memo.Get(key); ok {
		return matches, nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding rate limit wait: %w", err)
	}

	matches, err := p.breaker.Execute(func() ([]recommend.SimilarityMatch, error) {
		return p.search(ctx, text, threshold, limit)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("embedding service circuit open: %w", err)
		}
		return nil, err
	}

	p.memo.Add(key, matches)
	return matches, nil
}

// State reports the current circuit breaker state.
func (p *HTTPProvider) State() gobreaker.State {
	return p.breaker.State()
}

// Counts reports the circuit breaker request counts.
func (p *HTTPProvider) Counts() gobreaker.Counts {
	return p.breaker.Counts()
}

// search performs one POST /search call against the service.
func (p *HTTPProvider) search(ctx context.Context, text string, threshold float64, limit int) (matches []recommend.SimilarityMatch, err error) {
	start := time.Now()
	defer func() { metrics.RecordEmbeddingRequest(time.Since(start), err) }()

	body, err := json.Marshal(searchRequest{Text: text, Threshold: threshold, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("X-API-Key", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding search returned HTTP %d: %s",
			resp.StatusCode, readBodyForError(resp.Body))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return parsed.Matches, nil
}

// readBodyForError reads a bounded slice of the response body for error
// messages.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	return body
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// stateToGauge maps breaker states onto the gauge encoding
// 0=closed, 1=half-open, 2=open.
func stateToGauge(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
