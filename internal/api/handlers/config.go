package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/tiltball/internal/config"
	"github.com/playmatatu/tiltball/internal/game"
)

// GetConfig returns the values a client needs to render and drive a session
func GetConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"tick_hz":              cfg.TickHz,
			"broadcast_hz":         cfg.BroadcastHz,
			"default_arena_width":  cfg.DefaultArenaWidth,
			"default_arena_height": cfg.DefaultArenaHeight,
			"min_arena_width":      game.MinArenaWidth,
			"min_arena_height":     game.MinArenaHeight,
			"max_speed":            game.MaxSpeed,
			"start_threshold":      game.StartThreshold,
			"tilt_gain":            game.TiltGain,
			"tilt_smoothing":       game.TiltSmoothing,
			"idle_timeout_seconds": cfg.IdleTimeoutSeconds,
		})
	}
}
