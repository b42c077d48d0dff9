package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/tiltball/internal/game"
)

// GetLeaderboard returns the best recorded runs
func GetLeaderboard(sm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := parseLimit(c, 10, 100)
		entries, err := sm.Leaderboard(c.Request.Context(), limit)
		if err != nil {
			log.Printf("[DB] leaderboard failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load leaderboard"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": entries})
	}
}

// GetPlayerResults returns a player's recent runs
func GetPlayerResults(sm *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := normalizePlayerName(c.Param("name"))
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "player name required"})
			return
		}
		results, err := sm.PlayerResults(c.Request.Context(), name, parseLimit(c, 20, 100))
		if err != nil {
			log.Printf("[DB] results for %q failed: %v", name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load results"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"player_name": name, "results": results})
	}
}
