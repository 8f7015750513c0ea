// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package signals

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/reelrank/reelrank/internal/metrics"
)

// AnalyticsSink persists signal events for offline analysis.
type AnalyticsSink interface {
	InsertSignalEvent(ctx context.Context, event *SignalEvent) error
}

// Broadcaster pushes signal activity to connected clients.
type Broadcaster interface {
	BroadcastSignal(event *SignalEvent)
}

// AnalyticsHandler writes every recorded signal to the analytics
// store. It is designed to run under the router middleware stack:
// parse failures and insert errors are returned so retry and poison
// queue routing apply.
type AnalyticsHandler struct {
	sink   AnalyticsSink
	logger watermill.LoggerAdapter

	received    atomic.Int64
	stored      atomic.Int64
	parseErrors atomic.Int64
}

// AnalyticsHandlerStats holds counters for the analytics consumer.
type AnalyticsHandlerStats struct {
	Received    int64
	Stored      int64
	ParseErrors int64
}

// NewAnalyticsHandler creates the analytics consumer.
func NewAnalyticsHandler(sink AnalyticsSink, logger watermill.LoggerAdapter) (*AnalyticsHandler, error) {
	if sink == nil {
		return nil, fmt.Errorf("analytics sink required")
	}
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}
	return &AnalyticsHandler{
		sink:   sink,
		logger: logger,
	}, nil
}

// Handle processes a single signal event message.
func (h *AnalyticsHandler) Handle(msg *message.Message) error {
	h.received.Add(1)

	event, err := DeserializeEvent(msg.Payload)
	if err != nil {
		h.parseErrors.Add(1)
		h.logger.Error("Failed to parse signal event", err, watermill.LogFields{
			"message_uuid": msg.UUID,
		})
		return err
	}

	ctx := msg.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := h.sink.InsertSignalEvent(ctx, event); err != nil {
		return fmt.Errorf("insert signal event %s: %w", event.EventID, err)
	}

	h.stored.Add(1)
	metrics.SignalsProcessed.Inc()
	return nil
}

// Stats returns current counters.
func (h *AnalyticsHandler) Stats() AnalyticsHandlerStats {
	return AnalyticsHandlerStats{
		Received:    h.received.Load(),
		Stored:      h.stored.Load(),
		ParseErrors: h.parseErrors.Load(),
	}
}

// BroadcastHandler fans signal events out to connected websocket
// clients. Broadcasting is best-effort; a slow client never nacks the
// message.
type BroadcastHandler struct {
	broadcaster Broadcaster
	logger      watermill.LoggerAdapter

	received    atomic.Int64
	broadcast   atomic.Int64
	parseErrors atomic.Int64
}

// BroadcastHandlerStats holds counters for the broadcast consumer.
type BroadcastHandlerStats struct {
	Received    int64
	Broadcast   int64
	ParseErrors int64
}

// NewBroadcastHandler creates the websocket fan-out consumer.
func NewBroadcastHandler(broadcaster Broadcaster, logger watermill.LoggerAdapter) (*BroadcastHandler, error) {
	if broadcaster == nil {
		return nil, fmt.Errorf("broadcaster required")
	}
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}
	return &BroadcastHandler{
		broadcaster: broadcaster,
		logger:      logger,
	}, nil
}

// Handle broadcasts a single signal event message.
func (h *BroadcastHandler) Handle(msg *message.Message) error {
	h.received.Add(1)

	event, err := DeserializeEvent(msg.Payload)
	if err != nil {
		h.parseErrors.Add(1)
		h.logger.Error("Failed to parse signal event", err, watermill.LogFields{
			"message_uuid": msg.UUID,
		})
		return err
	}

	h.broadcaster.BroadcastSignal(event)
	h.broadcast.Add(1)
	return nil
}

// Stats returns current counters.
func (h *BroadcastHandler) Stats() BroadcastHandlerStats {
	return BroadcastHandlerStats{
		Received:    h.received.Load(),
		Broadcast:   h.broadcast.Load(),
		ParseErrors: h.parseErrors.Load(),
	}
}
