package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/tiltball/internal/auth"
	"github.com/playmatatu/tiltball/internal/config"
	"github.com/playmatatu/tiltball/internal/game"
)

// Inbound message data types
type MotionData struct {
	GX          float64 `json:"gx"`
	GY          float64 `json:"gy"`
	Orientation string  `json:"orientation"`
}

type TiltData struct {
	AX float64 `json:"ax"`
	AY float64 `json:"ay"`
}

// WSMessage is the inbound envelope
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// HandleWebSocket upgrades a session token holder to a live session stream.
func HandleWebSocket(sm *game.SessionManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("id")
		token := c.Query("token")
		if token == "" {
			token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if sessionID == "" || token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session id and token required"})
			return
		}

		claims, err := auth.ParseSessionToken(cfg.JWTSecret, token)
		if err != nil || claims.SessionID != sessionID {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid session token"})
			return
		}

		runner, err := sm.GetSession(sessionID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		client := &Client{
			conn:       conn,
			hub:        SessionHub,
			sessionID:  sessionID,
			playerName: claims.PlayerName,
			runner:     runner,
			manager:    sm,
			send:       make(chan []byte, sendBufferSz),
		}

		SessionHub.register <- client

		go client.writePump()
		go client.readPump()
	}
}

// readPump reads control messages and feeds them to the session runner.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] unexpected close in session %s: %v", c.sessionID, err)
			}
			break
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		// Idle tracking in Redis, at most once per second per connection
		if time.Since(c.lastTouch) >= touchPeriod {
			c.lastTouch = time.Now()
			c.manager.Touch(c.sessionID)
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}

		c.handleMessage(msg)
	}
}

// handleMessage dispatches one inbound message.
func (c *Client) handleMessage(msg WSMessage) {
	switch msg.Type {
	case "motion":
		var data MotionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid motion data")
			return
		}
		c.runner.Motion(data.GX, data.GY, game.ParseOrientation(data.Orientation))

	case "tilt":
		var data TiltData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid tilt data")
			return
		}
		c.runner.Tilt(data.AX, data.AY)

	case "reset":
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.runner.Reset(ctx); err != nil {
			c.sendError("Session unavailable")
		}

	case "get_state":
		c.sendSnapshot()

	default:
		c.sendError("Unknown message type")
	}
}
