// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"errors"
	"net/http"

	"github.com/reelrank/reelrank/internal/auth"
)

// ExchangeToken handles POST /api/v1/auth/token
// Exchanges admin credentials for a bearer token.
//
// The token is returned in the body and also set as an HttpOnly cookie
// so browser WebSocket clients can authenticate the upgrade request,
// which cannot carry an Authorization header.
//
// @Summary Exchange credentials for a token
// @Description Verifies the admin username and password and returns a signed bearer token. Responds 503 when authentication is disabled and 401 on bad credentials, without revealing which credential failed.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body tokenRequest true "Admin credentials"
// @Success 200 {object} APIResponse "Token issued"
// @Failure 401 {object} APIResponse "Invalid credentials"
// @Failure 503 {object} APIResponse "Authentication disabled"
// @Router /auth/token [post]
func (h *Handler) ExchangeToken(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest("Invalid JSON body")
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ValidationError(apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	token, err := h.auth.ExchangeCredentials(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrDisabled):
			rw.ServiceUnavailable("Authentication is disabled")
		case errors.Is(err, auth.ErrInvalidCredentials):
			rw.Unauthorized("Invalid username or password")
		default:
			rw.InternalError(err, "Token exchange failed")
		}
		return
	}

	ttl := h.auth.TokenTTL()
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https",
	})

	rw.Success(map[string]any{
		"token":      token,
		"token_type": "Bearer",
		"expires_in": int(ttl.Seconds()),
	})
}
