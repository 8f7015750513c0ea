// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/reelrank/reelrank/internal/metrics"
	"github.com/reelrank/reelrank/internal/recommend"
	"github.com/reelrank/reelrank/internal/signals"
)

// Message types pushed to dashboard clients.
const (
	MessageTypeSignal          = "signal"
	MessageTypeWeightsUpdated  = "weights_updated"
	MessageTypeCatalogImported = "catalog_imported"
	MessageTypePing            = "ping"
	MessageTypePong            = "pong"
)

// Message is the envelope for every websocket frame in both directions.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub maintains the set of connected clients and fans broadcasts out to
// them. Producers never block: a full broadcast queue drops the message
// and a client that cannot keep up is evicted.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
	logger     zerolog.Logger
}

// The hub is the pipeline's broadcast consumer.
var _ signals.Broadcaster = (*Hub)(nil)

// NewHub creates a hub. Call RunWithContext to start it.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		logger:     logger.With().Str("component", "websocket-hub").Logger(),
	}
}

// RunWithContext runs the hub loop until the context is canceled, then
// closes every connected client and returns the context error. Designed
// to run under supervision: a restart begins with an empty client set.
//
// Lifecycle events are drained before broadcasts so a message is never
// delivered to a client the loop has already been asked to remove. Go's
// select picks randomly among ready channels, hence the staged selects.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()
	metrics.WebSocketConnections.Set(float64(total))
	h.logger.Info().Int("total_clients", total).Msg("Websocket client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()
	metrics.WebSocketConnections.Set(float64(total))
	h.logger.Info().Int("total_clients", total).Msg("Websocket client disconnected")
}

// broadcastToClients delivers one message to every client in ID order.
// The stable order keeps delivery reproducible under test. A client
// whose send buffer is full has stopped reading and is evicted.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	var evicted int
	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			close(client.send)
			delete(h.clients, client)
			evicted++
		}
	}
	if evicted > 0 {
		h.logger.Warn().Int("evicted", evicted).Msg("Evicted slow websocket clients")
	}
}

// shutdown closes all clients and logs the reason. Cancellation is the
// expected termination path, so it is not logged as an error.
func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	closed := len(h.clients)
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()

	reason := "context_canceled"
	if ctx.Err() == context.DeadlineExceeded {
		reason = "context_deadline"
	}
	h.logger.Info().
		Str("reason", reason).
		Int("clients_closed", closed).
		Msg("Websocket hub stopped")
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// enqueue offers a message to the broadcast queue without blocking the
// producer.
func (h *Hub) enqueue(message Message) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn().Str("message_type", message.Type).Msg("Broadcast queue full, dropping message")
	}
}

// BroadcastSignal pushes a recorded learning signal to all clients.
func (h *Hub) BroadcastSignal(event *signals.SignalEvent) {
	if event == nil {
		return
	}
	h.enqueue(Message{Type: MessageTypeSignal, Data: event})
}

// BroadcastWeightsUpdated announces a new scoring configuration.
func (h *Hub) BroadcastWeightsUpdated(doc *recommend.WeightDocument) {
	if doc == nil {
		return
	}
	h.enqueue(Message{Type: MessageTypeWeightsUpdated, Data: doc})
}

// CatalogImportData is the payload of a catalog_imported message.
type CatalogImportData struct {
	Timestamp  string `json:"timestamp"`
	Imported   int    `json:"imported"`
	DurationMs int64  `json:"duration_ms"`
}

// BroadcastCatalogImported announces a completed bulk catalog import.
func (h *Hub) BroadcastCatalogImported(imported int, duration time.Duration) {
	h.enqueue(Message{
		Type: MessageTypeCatalogImported,
		Data: CatalogImportData{
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Imported:   imported,
			DurationMs: duration.Milliseconds(),
		},
	})
}
