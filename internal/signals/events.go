// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package signals

import (
	"time"

	"github.com/google/uuid"

	"github.com/reelrank/reelrank/internal/recommend"
)

// SchemaVersion is the current signal event schema version.
// Increment this when making breaking changes to SignalEvent.
const SchemaVersion = 1

// TopicSignals is the topic recorded signals are published to. All
// signals share one subject so the in-process transport, which has no
// wildcard matching, sees every event.
const TopicSignals = "signals.recorded"

// TopicPoison receives signals that still fail after the retry
// middleware gives up.
const TopicPoison = "dlq.signals"

// SignalEvent is the pipeline envelope around a recorded learning
// signal. The envelope carries delivery metadata; the payload is the
// canonical signal exactly as the recorder accepted it.
type SignalEvent struct {
	// Schema version for forward/backward compatibility
	SchemaVersion int `json:"schema_version,omitempty"`

	EventID   string    `json:"event_id"`
	EmittedAt time.Time `json:"emitted_at"`

	Signal recommend.Signal `json:"signal"`
}

// NewSignalEvent wraps a signal in an envelope with a fresh event ID.
func NewSignalEvent(sig recommend.Signal) *SignalEvent {
	return &SignalEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.New().String(),
		EmittedAt:     time.Now().UTC(),
		Signal:        sig,
	}
}

// GetSchemaVersion returns the schema version, defaulting to 1 for
// events serialized before the field existed.
func (e *SignalEvent) GetSchemaVersion() int {
	if e.SchemaVersion == 0 {
		return 1
	}
	return e.SchemaVersion
}

// Validate checks required fields and returns an error if validation
// fails.
func (e *SignalEvent) Validate() error {
	if e.EventID == "" {
		return &ValidationError{Field: "event_id", Message: "required"}
	}
	if e.Signal.UserID == "" {
		return &ValidationError{Field: "signal.user_id", Message: "required"}
	}
	if e.Signal.MovieID == "" {
		return &ValidationError{Field: "signal.movie_id", Message: "required"}
	}
	if !e.Signal.Action.Valid() {
		return &ValidationError{Field: "signal.action", Message: "unknown action"}
	}
	return nil
}

// Topic returns the subject this event is published to.
func (e *SignalEvent) Topic() string {
	return TopicSignals
}

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
