// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package testinfra provides test infrastructure for integration testing with containers.
//
// This package uses testcontainers-go to manage Docker containers for integration tests,
// providing realistic testing environments that closely match production.
//
// # NATS Container
//
// The NATSContainer provides a real NATS JetStream broker for testing the
// external signal transport (the path taken when the embedded server is
// disabled):
//
//	func TestSignalTransport(t *testing.T) {
//	    ctx := context.Background()
//	    natsC, err := testinfra.NewNATSContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer natsC.Terminate(ctx)
//
//	    cfg := signals.DefaultNATSConfig()
//	    nc, err := signals.Connect(cfg, natsC.URL, logger)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer nc.Close()
//
//	    // Provision the stream and exercise the real broker
//	    _, err = signals.EnsureStream(ctx, nc, cfg)
//	    // ...
//	}
//
// # Mock Embedding Server
//
// The MockEmbeddingServer stands in for the external embedding service
// without a container. It captures /search requests and serves canned
// match lists:
//
//	mes := testinfra.NewMockEmbeddingServer(t)
//	defer mes.Close()
//	mes.ResponseBody = testinfra.MockMatchesResponse("tt0111161", "tt0068646")
//
//	// Point the provider at mes.URL() and assert on mes.GetCaptures()
//
// # Benefits Over Mocks
//
// Using real containers provides several advantages:
//   - Tests validate actual broker contracts (stream provisioning, ack
//     semantics, redelivery)
//   - No mock drift (mocks getting out of sync with real behavior)
//   - Tests run against production-equivalent services
//
// # CI Considerations
//
// These tests require Docker and network access. In CI:
//   - Self-hosted runners have Docker pre-installed
//   - Container images are cached between runs
//   - Tests are skipped gracefully if Docker is unavailable
//
// # Network Requirements
//
// First run may need to download container images. Subsequent runs use cached images.
package testinfra
