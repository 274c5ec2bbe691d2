// Package notify broadcasts persisted claims to WebSocket subscribers.
//
// The hub is a collaborator of the claims service, downstream of
// persistence: the workflow core never sees it. All writes to a shared
// connection are serialized here; a failed write drops the subscriber.
package notify

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Event is the broadcast envelope sent to subscribers.
type Event struct {
	// Type distinguishes event kinds, e.g. "claim_processed" or
	// "claim_updated".
	Type string `json:"type"`

	// Payload is the event body (a persisted claim).
	Payload any `json:"payload"`
}

// Hub fans events out to connected WebSocket clients.
//
// Safe for concurrent use. Broadcast never blocks on a slow client
// longer than the connection write; clients that fail a write are
// removed and closed.
type Hub struct {
	mu       sync.Mutex
	conns    map[*websocket.Conn]*sync.Mutex
	upgrader websocket.Upgrader
	log      *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		conns: make(map[*websocket.Conn]*sync.Mutex),
		upgrader: websocket.Upgrader{
			// The dashboard is served from a different origin in
			// development; claims data carries no credentials.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: log,
	}
}

// ServeHTTP upgrades the request and registers the connection until the
// client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.add(conn)
	h.log.Debug("subscriber connected", "remote", conn.RemoteAddr().String())

	// Drain control/ignored messages; returning removes the subscriber.
	defer h.remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends an event to every connected subscriber.
func (h *Hub) Broadcast(eventType string, payload any) {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		h.log.Error("marshal broadcast event", "type", eventType, "error", err)
		return
	}

	for conn, wmu := range h.snapshot() {
		wmu.Lock()
		err := conn.WriteMessage(websocket.TextMessage, data)
		wmu.Unlock()
		if err != nil {
			h.log.Debug("dropping subscriber", "remote", conn.RemoteAddr().String(), "error", err)
			h.remove(conn)
		}
	}
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = &sync.Mutex{}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, present := h.conns[conn]
	delete(h.conns, conn)
	h.mu.Unlock()
	if present {
		conn.Close()
	}
}

// snapshot copies the registry so Broadcast iterates without holding the
// hub lock across network writes.
func (h *Hub) snapshot() map[*websocket.Conn]*sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[*websocket.Conn]*sync.Mutex, len(h.conns))
	for c, m := range h.conns {
		out[c] = m
	}
	return out
}
