package ws

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/playmatatu/tiltball/internal/game"
	"github.com/redis/go-redis/v9"
)

const closeDelay = 500 * time.Millisecond

// StartSessionEventSubscriber relays out-of-band session events published on
// Redis (idle expiry from any instance) to the clients connected here.
func StartSessionEventSubscriber(ctx context.Context, rdb *redis.Client, h *Hub) {
	if rdb == nil {
		log.Println("[WS] Redis client not set; session event subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, game.SessionEventsCh)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", game.SessionEventsCh)
		for msg := range ch {
			h.relay([]byte(msg.Payload))
		}
		log.Printf("[WS] %s subscriber stopped", game.SessionEventsCh)
	}()
}

// relay handles one published payload and reports whether it was delivered.
func (h *Hub) relay(payload []byte) bool {
	var event map[string]interface{}
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Printf("[WS] invalid event payload: %v", err)
		return false
	}

	typeStr, _ := event["type"].(string)
	sessionID, _ := event["session_id"].(string)
	if sessionID == "" {
		log.Printf("[WS] event %s without session_id", typeStr)
		return false
	}

	switch typeStr {
	case "session_expired":
		if size := h.RoomSize(sessionID); size == 0 {
			log.Printf("[WS] no room for session %s; expiry will not be broadcast", sessionID)
			return false
		}
		h.BroadcastToSession(sessionID, event)
		// let the write pumps flush the expiry message before the close frame
		time.AfterFunc(closeDelay, func() { h.CloseSession(sessionID, "session expired") })
		return true

	default:
		log.Printf("[WS] unknown event type: %s", typeStr)
		return false
	}
}
