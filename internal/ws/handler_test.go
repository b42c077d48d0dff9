package ws

import (
	"encoding/json"
	"testing"

	"github.com/playmatatu/tiltball/internal/game"
)

// joinRoom registers a connectionless client directly, bypassing run().
func joinRoom(h *Hub, sessionID string) *Client {
	c := &Client{hub: h, sessionID: sessionID, send: make(chan []byte, 8)}
	h.mu.Lock()
	if h.rooms[sessionID] == nil {
		h.rooms[sessionID] = make(map[*Client]bool)
	}
	h.rooms[sessionID][c] = true
	h.mu.Unlock()
	return c
}

func decode(t *testing.T, b []byte) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("decode %s: %v", b, err)
	}
	return m
}

func TestSessionEventsBroadcastOnlyToRoom(t *testing.T) {
	h := NewHub()
	a := joinRoom(h, "s1")
	b := joinRoom(h, "s2")

	h.SessionEvents("s1", []game.Event{{Type: game.EventScoreChanged, Score: 3}})

	select {
	case msg := <-a.send:
		m := decode(t, msg)
		if m["type"] != "score_changed" || m["score"] != float64(3) {
			t.Errorf("unexpected message: %v", m)
		}
	default:
		t.Fatal("expected a message in room s1")
	}
	select {
	case msg := <-b.send:
		t.Errorf("room s2 should not receive s1 events, got %s", msg)
	default:
	}
}

func TestEventMessageShapes(t *testing.T) {
	p := &game.Platform{ID: 7, Width: 100, Height: 20}

	ended := eventMessage(game.Event{Type: game.EventSessionEnded, Score: 5, State: game.StateDead})
	if ended["final_score"] != 5 {
		t.Errorf("session_ended should carry final_score=5, got %v", ended)
	}

	consumed := eventMessage(game.Event{Type: game.EventPlatformConsumed, Score: 2, Platform: p})
	if consumed["platform_id"] != uint64(7) || consumed["score"] != 2 {
		t.Errorf("unexpected platform_consumed message: %v", consumed)
	}

	state := eventMessage(game.Event{Type: game.EventStateChanged, State: game.StateRunning})
	if state["state"] != game.StateRunning {
		t.Errorf("unexpected state_changed message: %v", state)
	}
}

func TestSnapshotBroadcast(t *testing.T) {
	h := NewHub()
	a := joinRoom(h, "s1")

	h.SessionSnapshot("s1", game.Snapshot{State: game.StateRunning, Score: 1})

	m := decode(t, <-a.send)
	if m["type"] != "state" {
		t.Fatalf("expected state message, got %v", m)
	}
	snap, ok := m["snapshot"].(map[string]interface{})
	if !ok || snap["state"] != "RUNNING" || snap["score"] != float64(1) {
		t.Errorf("unexpected snapshot payload: %v", m["snapshot"])
	}
}

func TestSendJSONSkipsUnregisteredClient(t *testing.T) {
	h := NewHub()
	c := &Client{hub: h, sessionID: "gone", send: make(chan []byte, 1)}
	c.sendError("nope")
	if len(c.send) != 0 {
		t.Error("unregistered client should not receive direct messages")
	}
}

func TestRelayWithoutRoom(t *testing.T) {
	h := NewHub()
	if h.relay([]byte(`{"type":"session_expired","session_id":"nobody"}`)) {
		t.Error("relay should report no delivery without a room")
	}
	if h.relay([]byte(`not json`)) {
		t.Error("relay should reject invalid payloads")
	}
	if h.relay([]byte(`{"type":"session_expired"}`)) {
		t.Error("relay should reject events without session_id")
	}
}

func TestRelayExpiryReachesRoom(t *testing.T) {
	h := NewHub()
	a := joinRoom(h, "s1")

	if !h.relay([]byte(`{"type":"session_expired","session_id":"s1","final_score":4}`)) {
		t.Fatal("expected relay to deliver")
	}
	m := decode(t, <-a.send)
	if m["type"] != "session_expired" || m["final_score"] != float64(4) {
		t.Errorf("unexpected relayed message: %v", m)
	}
}
