package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/tiltball/internal/auth"
	"github.com/playmatatu/tiltball/internal/config"
	"github.com/playmatatu/tiltball/internal/game"
)

// CreateSession starts a new session and hands back the token that drives it
func CreateSession(sm *game.SessionManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Width      float64 `json:"width"`
			Height     float64 `json:"height"`
			PlayerName string  `json:"player_name"`
		}
		// An empty body means "defaults"
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
				return
			}
		}

		arena := game.Arena{Width: req.Width, Height: req.Height}
		if arena.Width == 0 && arena.Height == 0 {
			arena = game.Arena{Width: cfg.DefaultArenaWidth, Height: cfg.DefaultArenaHeight}
		}
		name := normalizePlayerName(req.PlayerName)

		runner, err := sm.CreateSession(arena, name)
		if errors.Is(err, game.ErrArenaTooSmall) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      "Arena too small",
				"min_width":  game.MinArenaWidth,
				"min_height": game.MinArenaHeight,
			})
			return
		}
		if err != nil {
			log.Printf("[GAME] CreateSession failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
			return
		}

		ttl := time.Duration(cfg.SessionTokenTTLMinutes) * time.Minute
		token, exp, err := auth.IssueSessionToken(cfg.JWTSecret, runner.ID, name, ttl)
		if err != nil {
			log.Printf("[GAME] token for session %s failed: %v", runner.ID, err)
			sm.EndSession(runner.ID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
			return
		}

		snap, err := runner.Snapshot(c.Request.Context())
		if err != nil {
			log.Printf("[GAME] initial snapshot for session %s failed: %v", runner.ID, err)
		}

		c.Header("X-Session-ID", runner.ID)
		c.JSON(http.StatusCreated, gin.H{
			"session_id": runner.ID,
			"token":      token,
			"expires_at": exp.UTC().Format(time.RFC3339),
			"ws_path":    "/api/v1/sessions/" + runner.ID + "/ws",
			"snapshot":   snap,
		})
	}
}

// GetSessionState returns the live snapshot, or the saved final frame of a
// session that is no longer hosted
func GetSessionState(sm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if runner, err := sm.GetSession(id); err == nil {
			snap, err := runner.Snapshot(ctx)
			if err == nil {
				c.JSON(http.StatusOK, gin.H{"session_id": id, "live": true, "snapshot": snap})
				return
			}
			log.Printf("[GAME] snapshot for session %s failed: %v", id, err)
		}

		snap, err := sm.LoadSnapshot(ctx, id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"session_id": id, "live": false, "snapshot": snap})
	}
}

// ResetSession restarts a session; only the token holder may do it
func ResetSession(sm *game.SessionManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if !authorizeSession(c, cfg, id) {
			return
		}

		runner, err := sm.GetSession(id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := runner.Reset(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Session unavailable"})
			return
		}
		sm.Touch(id)

		snap, err := runner.Snapshot(ctx)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Session unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"session_id": id, "snapshot": snap})
	}
}
