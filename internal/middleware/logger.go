// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/reelrank/reelrank/internal/logging"
)

// Logger installs a request-scoped child logger in the context and
// writes one access log line per request. The child logger carries the
// request ID so every entry a handler emits is correlated.
//
// Completed requests log at debug; server errors log at warn so they
// surface under the default info level without doubling the volume of
// healthy traffic.
func Logger(base zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestLogger := base.With().
				Str("request_id", GetRequestID(r.Context())).
				Logger()
			ctx := logging.ContextWithLogger(r.Context(), requestLogger)

			ww := &accessResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r.WithContext(ctx))

			evt := requestLogger.Debug()
			if ww.statusCode >= http.StatusInternalServerError {
				evt = requestLogger.Warn()
			}
			evt.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Int("status", ww.statusCode).
				Int64("bytes", ww.bytes).
				Dur("duration", time.Since(start)).
				Msg("request completed")
		})
	}
}

// accessResponseWriter wraps http.ResponseWriter to capture the status
// code and bytes written for the access log.
type accessResponseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int64
}

func (w *accessResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *accessResponseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += int64(n)
	return n, err
}

// Unwrap exposes the underlying writer so http.ResponseController can
// reach Flush and Hijack through the wrapper.
func (w *accessResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
