package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/playmatatu/tiltball/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	idleSetKey      = "session_idle"
	SessionEventsCh = "session_events"
)

func lastActiveKey(sessionID string) string {
	return "last_active:" + sessionID
}

// Touch records activity for a session: it stores last_active and pushes the
// session's expiry in the session_idle sorted set.
func (sm *SessionManager) Touch(sessionID string) {
	if sm.rdb == nil || sm.config == nil {
		return
	}
	ctx := context.Background()
	now := time.Now().Unix()
	sm.rdb.Set(ctx, lastActiveKey(sessionID), strconv.FormatInt(now, 10), 0)
	sm.rdb.ZAdd(ctx, idleSetKey, redis.Z{Score: float64(idleDeadline(now, sm.config.IdleTimeoutSeconds)), Member: sessionID})
}

// StartIdleWorker starts a background worker that ends sessions nobody has
// touched for IdleTimeoutSeconds, using the session_idle sorted set.
func StartIdleWorker(ctx context.Context, sm *SessionManager, rdb *redis.Client, cfg *config.Config) {
	if sm == nil || rdb == nil || cfg == nil {
		log.Println("[IDLE] Redis or config missing; idle worker not started")
		return
	}

	log.Println("[IDLE] Idle worker started")
	poll := time.Duration(cfg.IdlePollSeconds) * time.Second
	if poll <= 0 {
		poll = 15 * time.Second
	}
	go func() {
		ticker := time.NewTicker(poll)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[IDLE] Idle worker stopping")
				return
			case <-ticker.C:
				n, err := reapIdleSessions(ctx, sm, rdb, cfg, time.Now())
				if err != nil {
					log.Printf("[IDLE] Failed to fetch idle sessions: %v", err)
				} else if n > 0 {
					log.Printf("[IDLE] expired %d idle session(s)", n)
				}
			}
		}
	}()
}

func reapIdleSessions(ctx context.Context, sm *SessionManager, rdb *redis.Client, cfg *config.Config, now time.Time) (int, error) {
	members, err := rdb.ZRangeByScore(ctx, idleSetKey, &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", now.Unix())}).Result()
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, id := range members {
		// ZRem decides which worker owns the member when several servers poll
		if removed, _ := rdb.ZRem(ctx, idleSetKey, id).Result(); removed == 0 {
			continue
		}
		last, _ := rdb.Get(ctx, lastActiveKey(id)).Result()
		lastTs, _ := strconv.ParseInt(last, 10, 64)
		if expire, due := reapDecision(lastTs, now.Unix(), cfg.IdleTimeoutSeconds); !expire {
			// touched after it was queued; due again at its new deadline
			if err := rdb.ZAdd(ctx, idleSetKey, redis.Z{Score: float64(due), Member: id}).Err(); err != nil {
				log.Printf("[IDLE] requeue failed: session=%s err=%v", id, err)
			}
			continue
		}

		snap, err := sm.EndSession(id)
		if err == ErrSessionNotFound {
			// hosted by another instance or already gone
			continue
		}
		expired++

		payload := map[string]interface{}{
			"type":        "session_expired",
			"session_id":  id,
			"final_score": snap.Score,
			"message":     "Session closed after inactivity",
		}
		b, _ := json.Marshal(payload)
		if n, err := rdb.Publish(ctx, SessionEventsCh, b).Result(); err != nil {
			log.Printf("[IDLE] publish expiry failed: session=%s err=%v", id, err)
		} else {
			log.Printf("[IDLE] published expiry: session=%s subscribers=%d score=%d", id, n, snap.Score)
		}
	}
	return expired, nil
}

// idleExpired reports whether a session last active at lastTs has been idle
// for at least timeoutSecs at now. A missing timestamp counts as expired.
func idleExpired(lastTs, now int64, timeoutSecs int) bool {
	if lastTs <= 0 {
		return true
	}
	return now >= idleDeadline(lastTs, timeoutSecs)
}

// reapDecision reports whether a due session should be ended, or else the
// deadline it must be requeued at.
func reapDecision(lastTs, now int64, timeoutSecs int) (expire bool, requeueAt int64) {
	if idleExpired(lastTs, now, timeoutSecs) {
		return true, 0
	}
	return false, idleDeadline(lastTs, timeoutSecs)
}

// idleDeadline is the unix time at which a session last active at lastTs
// becomes idle; it is the session's score in the session_idle set.
func idleDeadline(lastTs int64, timeoutSecs int) int64 {
	return lastTs + int64(timeoutSecs)
}
