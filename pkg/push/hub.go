package push

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/apillow22-icdconnect/icd-connect-backend/pkg/logger"
)

// Hub maintains the set of active WebSocket clients grouped into rooms and
// fans events out to them. It implements Transport.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logg    *logger.Logger
}

// NewHub creates an empty hub.
func NewHub(logg *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logg:    logg,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Publish sends the event to every client subscribed to room. Clients with
// a full send buffer are skipped rather than blocked on.
func (h *Hub) Publish(ctx context.Context, room string, event Event) error {
	event.Room = room

	data, err := json.Marshal(event)
	if err != nil {
		if h.logg != nil {
			h.logg.Error(ctx, "marshal push event", err)
		}
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if !c.inRoom(room) {
			continue
		}
		select {
		case c.send <- data:
		default:
		}
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
