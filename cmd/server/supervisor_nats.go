// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

//go:build nats

// This file provides NATS integration with the supervisor tree.
// It is only compiled when the "nats" build tag is enabled.
//
// Build with NATS support:
//
//	go build -tags nats -o reelrank ./cmd/server

package main

import (
	"github.com/reelrank/reelrank/internal/supervisor"
	"github.com/reelrank/reelrank/internal/supervisor/services"
)

// AddNATSToSupervisor adds the NATS components service to the supervisor
// tree's messaging layer for automatic lifecycle management.
//
// The NATS components include:
//   - Embedded NATS server (if configured)
//   - JetStream publisher and durable subscriber for learning signals
//   - Signal pipeline router with analytics and broadcast consumers
//
// When added to the supervisor tree:
//   - Start() is called when the supervisor starts
//   - Shutdown() is called when the supervisor stops
//   - The service is automatically restarted on failure
//
// This function is a no-op if natsComponents is nil (NATS disabled via
// config).
func AddNATSToSupervisor(tree *supervisor.SupervisorTree, natsComponents *NATSComponents) {
	if natsComponents == nil {
		return
	}
	tree.AddMessagingService(services.NewNATSComponentsService(natsComponents))
	natsComponents.logger.Info().Msg("NATS components added to supervisor tree (messaging layer)")
}
