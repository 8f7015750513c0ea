// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"errors"
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/reelrank/reelrank/internal/auth"
	"github.com/reelrank/reelrank/internal/recommend"
	"github.com/reelrank/reelrank/internal/validation"
)

// decodeJSON decodes a JSON request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// validateRequest validates a struct using go-playground/validator.
// Returns nil if validation passes, or the API error to respond with.
//
// Example:
//
//	var req signalRequest
//	if err := decodeJSON(r, &req); err != nil {
//	    rw.BadRequest("Invalid JSON body")
//	    return
//	}
//	if apiErr := validateRequest(&req); apiErr != nil {
//	    rw.ValidationError(apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
func validateRequest(v any) *validation.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}
	return validationErr.ToAPIError()
}

// effectiveUserID resolves the user a request acts for. A verified
// token identity always wins over the request body, so a caller cannot
// write signals for someone else. Anonymous requests fall back to the
// body value, which may be empty.
func effectiveUserID(r *http.Request, bodyUserID string) string {
	if identity := auth.IdentityFromContext(r.Context()); identity != nil && identity.UserID != "" {
		return identity.UserID
	}
	return bodyUserID
}

// respondEngineError maps engine errors onto the envelope. Invalid
// input surfaces as 400, missing documents as 404, everything else is
// an internal error whose cause stays in the server log.
func respondEngineError(rw *ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, recommend.ErrInvalidInput):
		rw.BadRequest(err.Error())
	case errors.Is(err, recommend.ErrNotFound):
		rw.NotFound(message)
	default:
		rw.InternalError(err, message)
	}
}

// getIntParam extracts an integer query parameter with a default value.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}
