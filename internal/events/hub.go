package events

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"zkdex-backend/internal/metrics"
	"zkdex-backend/internal/models"
)

// Client is one websocket subscriber. The transport handler owns the
// connection and the Send channel lifecycle; the hub only fans out to it.
type Client struct {
	ID   string
	Send chan []byte
}

// StreamFrame is the wire envelope pushed to websocket subscribers.
type StreamFrame struct {
	Type      string           `json:"type"`
	Kind      models.EventKind `json:"kind"`
	MessageID string           `json:"message_id"`
	Timestamp string           `json:"timestamp"`
	Data      json.RawMessage  `json:"data"`
}

// Hub broadcasts committed events to every connected websocket subscriber.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

// Register attaches a subscriber.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	metrics.WebsocketClients.Set(float64(len(h.clients)))
	log.Printf("[Hub] subscriber connected: %s (total %d)", client.ID, len(h.clients))
}

// Unregister detaches a subscriber. The Send channel stays open so the
// owning handler can drain and close it.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[id]; !ok {
		return
	}
	delete(h.clients, id)
	metrics.WebsocketClients.Set(float64(len(h.clients)))
	log.Printf("[Hub] subscriber disconnected: %s (total %d)", id, len(h.clients))
}

// ClientCount returns the number of attached subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish fans one event out to every subscriber. A subscriber whose send
// buffer is full misses the frame instead of blocking the caller.
func (h *Hub) Publish(ctx context.Context, kind models.EventKind, payload []byte) {
	frame, err := json.Marshal(StreamFrame{
		Type:      "event",
		Kind:      kind,
		MessageID: uuid.New().String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Data:      json.RawMessage(payload),
	})
	if err != nil {
		log.Printf("[Hub] marshal frame for %s failed: %v", kind, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Send <- frame:
		default:
			log.Printf("[Hub] dropping %s frame for slow subscriber %s", kind, client.ID)
		}
	}
}
