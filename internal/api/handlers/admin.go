package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/tiltball/internal/admin"
	"github.com/playmatatu/tiltball/internal/game"
)

// AdminListSessions lists every session hosted by this instance
func AdminListSessions(sm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		sessions := sm.ListSessions(ctx)
		c.JSON(http.StatusOK, gin.H{"count": len(sessions), "sessions": sessions})
	}
}

// AdminEndSession force-closes a session
func AdminEndSession(db *sqlx.DB, sm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		snap, err := sm.EndSession(id)
		if errors.Is(err, game.ErrSessionNotFound) {
			admin.LogAdminAction(db, c.ClientIP(), c.FullPath(), "end_session", map[string]interface{}{"session_id": id}, false)
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}

		admin.LogAdminAction(db, c.ClientIP(), c.FullPath(), "end_session", map[string]interface{}{"session_id": id, "score": snap.Score}, true)
		c.JSON(http.StatusOK, gin.H{"session_id": id, "final_state": snap.State, "final_score": snap.Score})
	}
}
