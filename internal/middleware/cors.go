package middleware

import (
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/tiltball/internal/config"
)

// devOrigins are accepted outside production.
var devOrigins = []string{
	"http://localhost:5173", // Vite dev server
	"http://127.0.0.1:5173",
}

// CORSMiddleware returns a CORS middleware configured for the environment
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	log.Printf("[CORS] Environment: %s, FrontendURL: %s", cfg.Environment, cfg.FrontendURL)

	corsConfig := cors.Config{
		AllowMethods: []string{
			"GET", "POST", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Length", "Content-Type", "Authorization",
			"X-Admin-Token", "Accept", "Cache-Control", "X-Requested-With",
		},
		ExposeHeaders: []string{
			"Content-Length", "X-Session-ID",
		},
		AllowOrigins:     allowedOrigins(cfg),
		AllowCredentials: true,
		MaxAge:           12 * time.Hour, // Cache preflight responses
	}

	return cors.New(corsConfig)
}

func allowedOrigins(cfg *config.Config) []string {
	var origins []string
	if cfg.Environment != "production" {
		origins = append(origins, devOrigins...)
	}
	if cfg.FrontendURL != "" {
		origins = append(origins, cfg.FrontendURL)
	}
	return origins
}

// WebSocketCORSCheck validates WebSocket upgrade origins
func WebSocketCORSCheck(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only check for WebSocket upgrade requests
		if strings.ToLower(c.GetHeader("Connection")) != "upgrade" ||
			strings.ToLower(c.GetHeader("Upgrade")) != "websocket" {
			c.Next()
			return
		}

		origin := c.GetHeader("Origin")
		if origin == "" {
			// native mobile clients do not send an Origin header
			c.Next()
			return
		}

		allowed := false
		if cfg.Environment != "production" &&
			(strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")) {
			allowed = true
		}
		for _, o := range allowedOrigins(cfg) {
			if origin == o {
				allowed = true
				break
			}
		}

		if !allowed {
			c.AbortWithStatusJSON(403, gin.H{"error": "WebSocket origin not allowed"})
			return
		}

		c.Next()
	}
}
