// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package websocket pushes live engine activity to dashboard clients.
//
// A single Hub owns the set of connected clients and fans out recorded
// learning signals, weight configuration changes, and catalog import
// completions. Each client runs the usual gorilla pump pair: readPump
// answers application pings and detects dead peers, writePump forwards
// hub messages under a write deadline and keeps the connection alive
// with protocol pings.
//
// Broadcasting never blocks producers. A full hub queue drops the
// message, and a client whose buffer is full is evicted; receivers are
// dashboards, so losing a frame is cheaper than stalling the pipeline.
package websocket
