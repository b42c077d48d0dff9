package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/tiltball/internal/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origin is enforced by middleware.WebSocketCORSCheck
	},
}

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = 30 * time.Second
	touchPeriod  = time.Second
	maxMsgSize   = 4096
	sendBufferSz = 256
)

// Client represents a connected WebSocket client bound to one session
type Client struct {
	conn       *websocket.Conn
	hub        *Hub
	sessionID  string
	playerName string
	runner     *game.Runner
	manager    *game.SessionManager
	send       chan []byte
	lastTouch  time.Time
}

// Hub maintains the set of active clients per session
type Hub struct {
	rooms      map[string]map[*Client]bool // sessionID -> clients
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// SessionHub is the single hub for all sessions.
var SessionHub *Hub

func init() {
	SessionHub = NewHub()
	go SessionHub.run()
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, exists := h.rooms[client.sessionID]; !exists {
				h.rooms[client.sessionID] = make(map[*Client]bool)
			}
			h.rooms[client.sessionID][client] = true
			size := len(h.rooms[client.sessionID])
			h.mu.Unlock()

			log.Printf("[WS] client connected to session %s (player=%q room_size=%d)", client.sessionID, client.playerName, size)
			go client.sendSnapshot()

		case client := <-h.unregister:
			h.mu.Lock()
			if room, exists := h.rooms[client.sessionID]; exists && room[client] {
				delete(room, client)
				if len(room) == 0 {
					delete(h.rooms, client.sessionID)
				}
				close(client.send)
				log.Printf("[WS] client disconnected from session %s", client.sessionID)
			}
			h.mu.Unlock()
		}
	}
}

// RoomSize returns the number of clients watching a session
func (h *Hub) RoomSize(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

// BroadcastToSession sends a message to every client of a session
func (h *Hub) BroadcastToSession(sessionID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[sessionID] {
		select {
		case client.send <- data:
		default:
			// Client's buffer is full
			log.Printf("[WS] send buffer full in session %s, dropping message", sessionID)
		}
	}
}

// CloseSession sends a close frame to every client of a session
func (h *Hub) CloseSession(sessionID, reason string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[sessionID] {
		if client.conn == nil {
			continue
		}
		if err := client.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason), time.Now().Add(writeWait)); err != nil {
			log.Printf("[WS] close control for session %s failed: %v", sessionID, err)
		}
	}
}

// SessionEvents implements game.EventSink.
func (h *Hub) SessionEvents(sessionID string, events []game.Event) {
	for _, e := range events {
		h.BroadcastToSession(sessionID, eventMessage(e))
	}
}

// SessionSnapshot implements game.EventSink.
func (h *Hub) SessionSnapshot(sessionID string, snap game.Snapshot) {
	h.BroadcastToSession(sessionID, stateMessage(snap))
}

func stateMessage(snap game.Snapshot) map[string]interface{} {
	return map[string]interface{}{
		"type":     "state",
		"snapshot": snap,
	}
}

// eventMessage renders a controller event in the wire shape clients expect.
func eventMessage(e game.Event) map[string]interface{} {
	msg := map[string]interface{}{"type": string(e.Type)}
	switch e.Type {
	case game.EventScoreChanged:
		msg["score"] = e.Score
	case game.EventStateChanged:
		msg["state"] = e.State
		msg["score"] = e.Score
	case game.EventPlatformSpawned:
		msg["platform"] = e.Platform
	case game.EventPlatformConsumed:
		if e.Platform != nil {
			msg["platform_id"] = e.Platform.ID
		}
		msg["score"] = e.Score
	case game.EventSessionEnded:
		msg["final_score"] = e.Score
		msg["message"] = "game over"
	}
	return msg
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed by the hub; best-effort close frame.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] write error in session %s: %v", c.sessionID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] ping error in session %s: %v", c.sessionID, err)
				return
			}
		}
	}
}

// sendJSON queues a message for this client only. The hub lock guards
// against sending after the hub has closed c.send.
func (c *Client) sendJSON(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.rooms[c.sessionID][c] {
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("[WS] send buffer full in session %s, dropping direct message", c.sessionID)
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.sendJSON(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
}

// sendSnapshot pushes the current session state to this client
func (c *Client) sendSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	snap, err := c.runner.Snapshot(ctx)
	if err != nil {
		c.sendError("session unavailable")
		return
	}
	c.sendJSON(stateMessage(snap))
}
