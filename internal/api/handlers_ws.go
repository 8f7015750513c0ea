// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"net/http"

	ws "github.com/reelrank/reelrank/internal/websocket"
)

// WebSocket handles GET /api/v1/ws
// Upgrades the connection and registers the client with the hub.
//
// Connected clients receive signal, weights_updated, and
// catalog_imported events as they happen.
//
// @Summary WebSocket event stream
// @Description Upgrades to a WebSocket connection that streams recorded signals, weight updates, and catalog imports in real time. The Origin header must match a configured CORS origin.
// @Tags WebSocket
// @Success 101 {string} string "Switching Protocols"
// @Failure 400 {string} string "Bad Request"
// @Failure 503 {object} APIResponse "WebSocket hub not available"
// @Router /ws [get]
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		h.logger.Warn().Msg("WebSocket connection rejected: hub not initialized")
		NewResponseWriter(w, r).ServiceUnavailable("WebSocket service unavailable")
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the handshake error to the client.
		h.logger.Error().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	h.wsHub.Register <- client
	client.Start()
}
