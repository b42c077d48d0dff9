package models

import (
	"time"
)

// SessionResult is the persisted outcome of one finished run
type SessionResult struct {
	ID          int       `db:"id" json:"id"`
	SessionID   string    `db:"session_id" json:"session_id"`
	PlayerName  string    `db:"player_name" json:"player_name"`
	Score       int       `db:"score" json:"score"`
	ArenaWidth  float64   `db:"arena_width" json:"arena_width"`
	ArenaHeight float64   `db:"arena_height" json:"arena_height"`
	StartedAt   time.Time `db:"started_at" json:"started_at"`
	EndedAt     time.Time `db:"ended_at" json:"ended_at"`
}

// LeaderboardEntry is one row of the best-score table
type LeaderboardEntry struct {
	Rank       int       `db:"rank" json:"rank"`
	PlayerName string    `db:"player_name" json:"player_name"`
	Score      int       `db:"score" json:"score"`
	EndedAt    time.Time `db:"ended_at" json:"ended_at"`
}
