package realtime

import (
	"log/slog"
	"sync"
	"time"
)

// Session describes one connected client.
type Session struct {
	ID          string
	UserID      string // empty for anonymous practice
	ConnectedAt time.Time
}

// Hub tracks connected sessions.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewHub creates an empty session registry.
func NewHub() *Hub {
	return &Hub{sessions: make(map[string]Session)}
}

// Register adds a session to the hub.
func (h *Hub) Register(s Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s.ID] = s
	slog.Info("realtime session opened", "session_id", s.ID, "user_id", s.UserID)
}

// Unregister removes a session from the hub.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, id)
	slog.Info("realtime session closed", "session_id", id)
}

// Has returns true if the session is registered.
func (h *Hub) Has(id string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.sessions[id]
	return ok
}

// Count returns the number of connected sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
