package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/tiltball/internal/api/handlers"
	"github.com/playmatatu/tiltball/internal/config"
	"github.com/playmatatu/tiltball/internal/game"
	"github.com/playmatatu/tiltball/internal/middleware"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *sqlx.DB, sm *game.SessionManager, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(sm))
		v1.GET("/config", handlers.GetConfig(cfg))

		// Session endpoints
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", handlers.CreateSession(sm, cfg))
			sessions.GET("/:id", handlers.GetSessionState(sm))
			sessions.POST("/:id/reset", handlers.ResetSession(sm, cfg))
			sessions.GET("/:id/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleSessionWebSocket(sm, cfg))
		}

		// Results
		v1.GET("/leaderboard", handlers.GetLeaderboard(sm))
		v1.GET("/players/:name/results", handlers.GetPlayerResults(sm))

		// Admin endpoints
		adminGroup := v1.Group("/admin", middleware.RequireAdmin(cfg))
		{
			adminGroup.GET("/sessions", handlers.AdminListSessions(sm))
			adminGroup.DELETE("/sessions/:id", handlers.AdminEndSession(db, sm))
		}
	}
}
