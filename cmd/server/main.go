package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/playmatatu/tiltball/internal/api"
	"github.com/playmatatu/tiltball/internal/config"
	"github.com/playmatatu/tiltball/internal/database"
	"github.com/playmatatu/tiltball/internal/game"
	"github.com/playmatatu/tiltball/internal/migrations"
	"github.com/playmatatu/tiltball/internal/redis"
	"github.com/playmatatu/tiltball/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations on start if requested
	if cfg.MigrateOnStart {
		log.Println("↗ Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Initialize Redis
	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	// Initialize the session manager and route its output to websocket clients
	game.InitializeManager(db, rdb, cfg)
	game.Manager.SetSink(ws.SessionHub)
	defer game.Manager.StopAll()

	ctx := context.Background()

	// Relay expiry notices published by any instance to our own clients
	ws.StartSessionEventSubscriber(ctx, rdb, ws.SessionHub)

	// End sessions nobody has touched for IDLE_TIMEOUT_SECONDS
	game.StartIdleWorker(ctx, game.Manager, rdb, cfg)

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	api.SetupRoutes(router, db, game.Manager, cfg)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting tilt-ball server on port %s (tick=%dHz broadcast=%dHz)", port, cfg.TickHz, cfg.BroadcastHz)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
