// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package signals is the asynchronous learning-signal pipeline.
//
// The recorder publishes every accepted signal into the pipeline,
// where a watermill router fans it out to consumers: the analytics
// sink persists events for offline analysis and the broadcast
// consumer pushes them to websocket clients. Consumers run behind
// retry and poison queue middleware so a failing sink never loses
// events silently.
//
// The default transport is an in-process channel Pub/Sub. Builds with
// the nats tag can switch to NATS JetStream, with an optional embedded
// server for single-instance deployments.
package signals
