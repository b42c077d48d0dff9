package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/playmatatu/tiltball/internal/admin"
)

// Prints the bcrypt hash to put in ADMIN_TOKEN_HASH for the given admin token.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	token := os.Getenv("ADMIN_TOKEN")
	if len(os.Args) > 1 {
		token = os.Args[1]
	}
	if token == "" {
		log.Fatal("usage: hash-admin-token <token> (or set ADMIN_TOKEN)")
	}
	if len(token) < 16 {
		log.Printf("WARNING: admin token is shorter than 16 characters")
	}

	hash, err := admin.HashAdminToken(token)
	if err != nil {
		log.Fatalf("Failed to hash admin token: %v", err)
	}

	log.Printf("✓ Admin token hashed. Set this in your environment:")
	fmt.Printf("ADMIN_TOKEN_HASH=%s\n", hash)
}
