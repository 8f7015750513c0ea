// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package auth provides the bearer-token identity layer.
//
// A single HS256 manager issues and validates tokens. The only
// credential exchange is the admin login: the configured username and
// bcrypt password hash buy an admin token for the tuning surface
// (weight updates, catalog import, signal statistics). Every other
// route stays open to anonymous callers; when a valid token is
// presented its user ID attributes learning signals to the caller.
//
// Any holder of the shared secret can mint tokens for regular users,
// so an upstream gateway may issue per-user tokens without talking to
// Reelrank. The exchange endpoint itself only issues the admin
// credential.
package auth
