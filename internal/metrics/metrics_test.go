// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Metrics are process-global, so these tests assert deltas rather than
// absolute values and do not run in parallel.

// --- Test: API metrics ---

func TestRecordAPIRequest(t *testing.T) {
	counter := APIRequestsTotal.WithLabelValues("GET", "/api/v1/status", "200")
	before := testutil.ToFloat64(counter)

	RecordAPIRequest("GET", "/api/v1/status", "200", 15*time.Millisecond)

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("request counter delta = %v, want 1", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests) - before; got != 1 {
		t.Errorf("active gauge delta after inc = %v, want 1", got)
	}

	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests) - before; got != 0 {
		t.Errorf("active gauge delta after dec = %v, want 0", got)
	}
}

// --- Test: recommendation metrics ---

func TestRecordRecommendation(t *testing.T) {
	counter := RecommendationsServed.WithLabelValues("semantic")
	before := testutil.ToFloat64(counter)

	RecordRecommendation("semantic", 3*time.Millisecond)

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("served counter delta = %v, want 1", got)
	}
}

// --- Test: analytics store metrics ---

func TestRecordDBQuery(t *testing.T) {
	errCounter := DBQueryErrors.WithLabelValues("insert_signal_event")
	before := testutil.ToFloat64(errCounter)

	RecordDBQuery("insert_signal_event", 2*time.Millisecond, nil)
	if got := testutil.ToFloat64(errCounter) - before; got != 0 {
		t.Errorf("error counter delta after success = %v, want 0", got)
	}

	RecordDBQuery("insert_signal_event", 2*time.Millisecond, errors.New("connection refused"))
	if got := testutil.ToFloat64(errCounter) - before; got != 1 {
		t.Errorf("error counter delta after failure = %v, want 1", got)
	}
}

// --- Test: embedding metrics ---

func TestRecordEmbeddingRequest(t *testing.T) {
	okCounter := EmbeddingRequests.WithLabelValues("ok")
	errCounter := EmbeddingRequests.WithLabelValues("error")
	okBefore := testutil.ToFloat64(okCounter)
	errBefore := testutil.ToFloat64(errCounter)

	RecordEmbeddingRequest(10*time.Millisecond, nil)
	RecordEmbeddingRequest(20*time.Millisecond, errors.New("upstream timeout"))

	if got := testutil.ToFloat64(okCounter) - okBefore; got != 1 {
		t.Errorf("ok counter delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(errCounter) - errBefore; got != 1 {
		t.Errorf("error counter delta = %v, want 1", got)
	}
}

// --- Test: registry hygiene ---

func TestMetricsLint(t *testing.T) {
	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("GatherAndLint() error: %v", err)
	}
	for _, p := range problems {
		t.Errorf("metric %s: %s", p.Metric, p.Text)
	}
}
