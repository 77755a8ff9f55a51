// Package push broadcasts snapshot-updated events to WebSocket clients.
// The hub only serves outbound events; inbound frames are drained and
// discarded.
package push

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"portsync/internal/domain"
	"portsync/internal/observability"
)

// writeWait bounds how long a broadcast write may block per client.
// Clients that miss the deadline are dropped.
const writeWait = 5 * time.Second

// EventTypeSnapshotUpdated labels the event sent after each refresh.
const EventTypeSnapshotUpdated = "snapshot_updated"

// SnapshotEvent is the message broadcast to subscribed clients after a
// snapshot refresh.
type SnapshotEvent struct {
	Type            string              `json:"type"`
	SnapshotVersion string              `json:"snapshot_version"`
	VoyageCount     int                 `json:"voyage_count"`
	GeneratedAt     time.Time           `json:"generated_at"`
	Summary         domain.FleetSummary `json:"summary"`
}

// Hub fans snapshot events out to subscribed WebSocket clients.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewHub creates a hub. A nil logger falls back to stdout.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(os.Stdout, "[push] ", log.LstdFlags)
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Dashboard clients connect from arbitrary origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*websocket.Conn]bool),
	}
}

// HandleWS upgrades the request and subscribes the client until it
// disconnects.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already sent the error response
		h.logger.Printf("websocket upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
	observability.RecordWSClientConnected()
	h.logger.Printf("websocket client connected (%d active)", h.ClientCount())

	// Drain inbound frames so close and ping frames are processed.
	go func() {
		defer func() {
			if h.remove(conn) {
				observability.RecordWSClientDisconnected()
			}
			conn.Close()
			h.logger.Printf("websocket client disconnected (%d active)", h.ClientCount())
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends the event to every connected client. A client that
// cannot keep up within the write deadline is dropped.
func (h *Hub) Broadcast(event SnapshotEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Printf("marshal snapshot event: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Printf("dropping websocket client: %v", err)
			conn.Close()
			delete(h.clients, conn)
			observability.RecordWSClientDisconnected()
		}
	}
	observability.RecordWSBroadcast()
}

// ClientCount returns the number of subscribed clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// CloseAll disconnects every client, for server shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
		observability.RecordWSClientDisconnected()
	}
}

// remove reports whether the connection was still subscribed.
func (h *Hub) remove(conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; !ok {
		return false
	}
	delete(h.clients, conn)
	return true
}
