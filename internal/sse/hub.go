package sse

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/supplyconnect/internal/models"
)

// EventType defines the SSE event name.
type EventType string

const (
	EventPredictionStarted   EventType = "prediction.started"
	EventPredictionCompleted EventType = "prediction.completed"
	EventPredictionFailed    EventType = "prediction.failed"
	EventChartUpdated        EventType = "chart.updated"
)

// clientBuffer is the per-client event queue length.
const clientBuffer = 64

// WorkbenchEvent is the payload pushed to a shopkeeper's SSE clients.
type WorkbenchEvent struct {
	Event       EventType           `json:"event"`
	SlotID      string              `json:"slotId,omitempty"`
	FileName    string              `json:"fileName,omitempty"`
	Loading     bool                `json:"isLoading"`
	Predictions []models.Prediction `json:"predictions,omitempty"`
	Error       string              `json:"error,omitempty"`
	Chart       *models.ChartSeries `json:"chart,omitempty"`
	Timestamp   time.Time           `json:"timestamp"`
}

// Message is one encoded event queued for a client.
type Message struct {
	Event EventType
	Data  []byte
}

// Client represents a connected SSE client.
type Client struct {
	ID      string
	OwnerID uuid.UUID
	Events  chan Message
}

// Hub manages SSE client connections and routes events to their owners.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates a new SSE hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a new client for ownerID and returns it for streaming.
func (h *Hub) Register(clientID string, ownerID uuid.UUID) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := &Client{
		ID:      clientID,
		OwnerID: ownerID,
		Events:  make(chan Message, clientBuffer),
	}
	h.clients[clientID] = c
	log.Info().Str("client_id", clientID).Int("total_clients", len(h.clients)).Msg("SSE client connected")
	return c
}

// Unregister removes a client and closes its channel.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[clientID]; ok {
		close(c.Events)
		delete(h.clients, clientID)
		log.Info().Str("client_id", clientID).Int("total_clients", len(h.clients)).Msg("SSE client disconnected")
	}
}

// Publish sends an event to every client of ownerID.
// Non-blocking: drops the event for a client whose buffer is full.
func (h *Hub) Publish(ownerID uuid.UUID, event *WorkbenchEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal SSE event")
		return
	}

	msg := Message{Event: event.Event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		if c.OwnerID != ownerID {
			continue
		}
		select {
		case c.Events <- msg:
		default:
			log.Warn().Str("client_id", c.ID).Str("event", string(event.Event)).Msg("SSE client buffer full, dropping event")
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HasOwner reports whether ownerID has at least one connected client.
func (h *Hub) HasOwner(ownerID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if c.OwnerID == ownerID {
			return true
		}
	}
	return false
}
