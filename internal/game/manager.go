package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/tiltball/internal/config"
	"github.com/playmatatu/tiltball/internal/models"
	"github.com/redis/go-redis/v9"
)

// SessionManager owns every live session runner and persists their outcomes
type SessionManager struct {
	sessions map[string]*session // keyed by session ID
	sink     EventSink           // downstream fan-out (websocket hub)
	rdb      *redis.Client       // Redis client for snapshots and idle tracking
	db       *sqlx.DB            // SQL DB for session results
	config   *config.Config      // Application config
	mu       sync.RWMutex
}

type session struct {
	runner     *Runner
	arena      Arena
	playerName string
	startedAt  time.Time // start of the current run
}

// SessionInfo is the admin view of a live session
type SessionInfo struct {
	ID         string       `json:"id"`
	PlayerName string       `json:"player_name"`
	CreatedAt  time.Time    `json:"created_at"`
	State      SessionState `json:"state"`
	Score      int          `json:"score"`
}

var (
	// Global session manager instance
	Manager *SessionManager
)

// InitializeManager initializes the global session manager with Redis, DB and config
func InitializeManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	Manager = NewSessionManager(db, rdb, cfg)
}

// NewSessionManager creates a new session manager. db and rdb may be nil, in
// which case results are not persisted and idle tracking is disabled.
func NewSessionManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*session),
		rdb:      rdb,
		db:       db,
		config:   cfg,
	}
}

// SetSink registers the downstream receiver of session events and snapshots.
func (sm *SessionManager) SetSink(sink EventSink) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sink = sink
}

// CreateSession starts a new NotRunning session in arena and returns its runner.
func (sm *SessionManager) CreateSession(arena Arena, playerName string) (*Runner, error) {
	ctrl, err := NewController(arena, nil)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	tickHz, broadcastHz := 60, 20
	if sm.config != nil {
		tickHz, broadcastHz = sm.config.TickHz, sm.config.BroadcastHz
	}
	r := NewRunner(id, ctrl, sm, tickHz, broadcastHz)

	sm.mu.Lock()
	sm.sessions[id] = &session{runner: r, arena: arena, playerName: playerName, startedAt: time.Now()}
	sm.mu.Unlock()

	go r.Run()
	sm.Touch(id)

	log.Printf("[GAME] session %s created (arena=%.0fx%.0f player=%q)", id, arena.Width, arena.Height, playerName)
	return r, nil
}

// GetSession returns the runner for id.
func (sm *SessionManager) GetSession(id string) (*Runner, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	s, ok := sm.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.runner, nil
}

// EndSession stops the runner for id and forgets it. The last snapshot is
// returned so callers can report the final score.
func (sm *SessionManager) EndSession(id string) (Snapshot, error) {
	sm.mu.Lock()
	s, ok := sm.sessions[id]
	if ok {
		delete(sm.sessions, id)
	}
	sm.mu.Unlock()

	if !ok {
		return Snapshot{}, ErrSessionNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	snap, err := s.runner.Snapshot(ctx)
	if err != nil {
		log.Printf("[GAME] snapshot before ending session %s failed: %v", id, err)
	}
	s.runner.Stop()

	if sm.rdb != nil {
		bg := context.Background()
		sm.rdb.ZRem(bg, idleSetKey, id)
		sm.rdb.Del(bg, lastActiveKey(id))
	}

	log.Printf("[GAME] session %s removed (state=%s score=%d)", id, snap.State, snap.Score)
	return snap, err
}

// ActiveCount returns the number of hosted sessions.
func (sm *SessionManager) ActiveCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// ListSessions returns a summary of every hosted session.
func (sm *SessionManager) ListSessions(ctx context.Context) []SessionInfo {
	sm.mu.RLock()
	all := make(map[string]*session, len(sm.sessions))
	for id, s := range sm.sessions {
		all[id] = s
	}
	sm.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(all))
	for id, s := range all {
		info := SessionInfo{ID: id, PlayerName: s.playerName, CreatedAt: s.runner.CreatedAt}
		if snap, err := s.runner.Snapshot(ctx); err == nil {
			info.State = snap.State
			info.Score = snap.Score
		}
		infos = append(infos, info)
	}
	return infos
}

// StopAll stops every runner; used on shutdown.
func (sm *SessionManager) StopAll() {
	sm.mu.Lock()
	all := sm.sessions
	sm.sessions = make(map[string]*session)
	sm.mu.Unlock()

	for _, s := range all {
		s.runner.Stop()
	}
}

// SessionEvents implements EventSink. It runs on the session's runner goroutine.
func (sm *SessionManager) SessionEvents(sessionID string, events []Event) {
	for _, e := range events {
		switch {
		case e.Type == EventRunStarted:
			sm.markRunStarted(sessionID)
		case e.Type == EventSessionEnded:
			go sm.recordResult(sessionID, e.Score)
		}
	}

	if sink := sm.downstream(); sink != nil {
		sink.SessionEvents(sessionID, events)
	}
}

// SessionSnapshot implements EventSink.
func (sm *SessionManager) SessionSnapshot(sessionID string, snap Snapshot) {
	if snap.State == StateDead {
		go sm.saveSnapshotToRedis(sessionID, snap)
	}
	if sink := sm.downstream(); sink != nil {
		sink.SessionSnapshot(sessionID, snap)
	}
}

func (sm *SessionManager) downstream() EventSink {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sink
}

func (sm *SessionManager) markRunStarted(sessionID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if s, ok := sm.sessions[sessionID]; ok {
		s.startedAt = time.Now()
	}
}

// lookup returns a copy of the session record taken under the lock.
func (sm *SessionManager) lookup(sessionID string) (session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.sessions[sessionID]
	if !ok {
		return session{}, false
	}
	return *s, true
}

// recordResult stores a finished run in session_results.
func (sm *SessionManager) recordResult(sessionID string, score int) {
	if sm == nil || sm.db == nil {
		return
	}

	s, ok := sm.lookup(sessionID)
	if !ok {
		log.Printf("[DB] session %s vanished before its result was recorded", sessionID)
		return
	}
	_, err := sm.db.Exec(
		`INSERT INTO session_results (session_id, player_name, score, arena_width, arena_height, started_at, ended_at) VALUES ($1,$2,$3,$4,$5,$6,NOW())`,
		sessionID, s.playerName, score, s.arena.Width, s.arena.Height, s.startedAt,
	)
	if err != nil {
		log.Printf("[DB] Failed to record result for session %s: %v", sessionID, err)
		return
	}
	log.Printf("[DB] recorded session %s score=%d", sessionID, score)
}

// Leaderboard returns the best finished runs, highest score first.
func (sm *SessionManager) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if sm.db == nil {
		return []models.LeaderboardEntry{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	entries := []models.LeaderboardEntry{}
	err := sm.db.SelectContext(ctx, &entries, `
		SELECT RANK() OVER (ORDER BY score DESC) AS rank, player_name, score, ended_at
		FROM session_results
		ORDER BY score DESC, ended_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard query: %w", err)
	}
	return entries, nil
}

// PlayerResults returns a player's most recent finished runs.
func (sm *SessionManager) PlayerResults(ctx context.Context, playerName string, limit int) ([]models.SessionResult, error) {
	if sm.db == nil {
		return []models.SessionResult{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	results := []models.SessionResult{}
	err := sm.db.SelectContext(ctx, &results, `
		SELECT id, session_id, player_name, score, arena_width, arena_height, started_at, ended_at
		FROM session_results
		WHERE player_name = $1
		ORDER BY ended_at DESC
		LIMIT $2
	`, playerName, limit)
	if err != nil {
		return nil, fmt.Errorf("player results query: %w", err)
	}
	return results, nil
}

// saveSnapshotToRedis keeps the final frame of a run around for an hour so a
// reconnecting client can render the game-over overlay.
func (sm *SessionManager) saveSnapshotToRedis(sessionID string, snap Snapshot) {
	if sm.rdb == nil {
		return
	}

	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("[GAME] Failed to marshal snapshot for session %s: %v", sessionID, err)
		return
	}
	if err := sm.rdb.SetEx(context.Background(), snapshotKey(sessionID), data, time.Hour).Err(); err != nil {
		log.Printf("[GAME] Failed to save snapshot for session %s: %v", sessionID, err)
	}
}

// LoadSnapshot reads the last saved final frame of a session from Redis.
func (sm *SessionManager) LoadSnapshot(ctx context.Context, sessionID string) (Snapshot, error) {
	if sm.rdb == nil {
		return Snapshot{}, ErrSessionNotFound
	}

	data, err := sm.rdb.Get(ctx, snapshotKey(sessionID)).Bytes()
	if err == redis.Nil {
		return Snapshot{}, ErrSessionNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func snapshotKey(sessionID string) string {
	return "session:" + sessionID + ":state"
}
