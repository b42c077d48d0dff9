package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/tiltball/internal/config"
	"github.com/playmatatu/tiltball/internal/game"
	"github.com/playmatatu/tiltball/internal/ws"
)

// HandleSessionWebSocket handles real-time session communication
func HandleSessionWebSocket(sm *game.SessionManager, cfg *config.Config) gin.HandlerFunc {
	return ws.HandleWebSocket(sm, cfg)
}
