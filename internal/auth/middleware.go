// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package auth

import (
	"net/http"
	"strings"
)

// TokenCookie is the cookie fallback for clients that cannot set an
// Authorization header, the browser websocket upgrade in particular.
const TokenCookie = "token"

// Identify attaches the caller's identity to the request context when
// a valid bearer token is presented. Anonymous requests pass through
// untouched. A token that is present but invalid is rejected rather
// than ignored, so a caller never operates under a silently dropped
// identity.
func (m *Manager) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled {
			next.ServeHTTP(w, r)
			return
		}

		tokenString := extractToken(r)
		if tokenString == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.ParseToken(tokenString)
		if err != nil {
			m.logger.Warn().Err(err).Msg("Token validation failed")
			http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
			return
		}

		identity := &Identity{UserID: claims.UserID, Role: claims.Role}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// RequireAdmin guards a route behind the admin role. When
// authentication is disabled the guard is a no-op, keeping the tuning
// surface reachable on a development instance.
func (m *Manager) RequireAdmin(next http.Handler) http.Handler {
	guarded := m.Identify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := IdentityFromContext(r.Context())
		if identity == nil {
			http.Error(w, "Unauthorized: authentication required", http.StatusUnauthorized)
			return
		}
		if !identity.IsAdmin() {
			http.Error(w, "Forbidden: admin role required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled {
			next.ServeHTTP(w, r)
			return
		}
		guarded.ServeHTTP(w, r)
	})
}

// extractToken pulls the bearer token from the Authorization header,
// falling back to the token cookie.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			token := strings.TrimSpace(parts[1])
			if token != "" {
				return token
			}
		}
	}

	cookie, err := r.Cookie(TokenCookie)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}
