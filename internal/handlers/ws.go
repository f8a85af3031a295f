package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

const (
	EventTaskCreated   = "task_created"
	EventTaskUpdated   = "task_updated"
	EventTaskDeleted   = "task_deleted"
	EventTaskCompleted = "task_completed"
	EventThemeChanged  = "theme_changed"
)

// Event tells connected screens that something changed and they should
// re-read. It carries no task state.
type Event struct {
	Event  string `json:"event"`
	TaskID string `json:"task_id,omitempty"`
}

type WSHub struct {
	connections map[*websocket.Conn]bool
	mutex       sync.Mutex
}

func NewWSHub() *WSHub {
	return &WSHub{connections: make(map[*websocket.Conn]bool)}
}

func (h *WSHub) register(conn *websocket.Conn) {
	h.mutex.Lock()
	h.connections[conn] = true
	h.mutex.Unlock()
}

func (h *WSHub) unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	delete(h.connections, conn)
	h.mutex.Unlock()
	conn.Close()
}

// Count returns the number of open connections.
func (h *WSHub) Count() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.connections)
}

// Broadcast sends ev to every connection, dropping the ones that fail.
func (h *WSHub) Broadcast(ev Event) {
	message, err := json.Marshal(ev)
	if err != nil {
		log.Printf("Failed to marshal event: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn := range h.connections {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("Failed to send WebSocket message: %v", err)
			delete(h.connections, conn)
			conn.Close()
		}
	}
}

// CloseAll disconnects every client; used on shutdown.
func (h *WSHub) CloseAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn := range h.connections {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		delete(h.connections, conn)
	}
}

func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.WSHub == nil {
		sendError(w, "Change notifications are disabled", http.StatusNotFound)
		return
	}
	if !h.allow(w, r) {
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(h.AllowedOrigins, r)
		},
	}
	// Upgrade writes the error response itself.
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	h.WSHub.register(conn)

	// clients only listen; reading detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			h.WSHub.unregister(conn)
			return
		}
	}
}
