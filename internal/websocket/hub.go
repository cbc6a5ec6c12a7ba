package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/pawlog/internal/auth"
)

const (
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionDeleted   = "deleted"
	ActionCompleted = "completed"
	ActionRestored  = "restored"
	ActionCleared   = "cleared"
)

// Pseudo-entities for events that touch more than one collection.
const (
	EntityAll    = "all"
	EntityBackup = "backup"
)

// Message tells connected clients that a collection changed so they can
// refetch it.
type Message struct {
	Type   string    `json:"type"`
	Entity string    `json:"entity"`
	Action string    `json:"action"`
	ID     int64     `json:"id,omitempty"`
	By     string    `json:"by,omitempty"`
	At     time.Time `json:"at"`
}

// NewMessage creates a Message typed "<entity>_<action>".
func NewMessage(entity, action string, id int64) Message {
	return Message{
		Type:   entity + "_" + action,
		Entity: entity,
		Action: action,
		ID:     id,
		At:     time.Now().UTC(),
	}
}

// Hub maintains the set of active WebSocket clients and broadcasts messages.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "clients", n)
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

// Broadcast sends a message to all connected clients.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if !c.wants(msg.Entity) {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.logger.Warn("websocket client buffer full, dropping message", "type", msg.Type)
		}
	}
}

// Notify broadcasts a change made on behalf of the user in ctx.
func (h *Hub) Notify(ctx context.Context, entity, action string, id int64) {
	msg := NewMessage(entity, action, id)
	msg.By = auth.UserName(ctx)
	h.Broadcast(msg)
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
