package admin

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// VerifyAdminToken checks if the provided token matches the stored hash
func VerifyAdminToken(hashedToken, plainToken string) bool {
	if hashedToken == "" || plainToken == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hashedToken), []byte(plainToken))
	return err == nil
}

// HashAdminToken produces the value to put in ADMIN_TOKEN_HASH
func HashAdminToken(plainToken string) (string, error) {
	if plainToken == "" {
		return "", fmt.Errorf("admin token is empty")
	}
	hashedToken, err := bcrypt.GenerateFromPassword([]byte(plainToken), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}
	return string(hashedToken), nil
}

// LogAdminAction records an admin action in the audit log. A nil db only logs.
func LogAdminAction(db *sqlx.DB, ip, route, action string, details map[string]interface{}, success bool) error {
	log.Printf("[ADMIN] action=%s route=%s ip=%s success=%v", action, route, ip, success)
	if db == nil {
		return nil
	}

	detailsJSON, err := json.Marshal(details)
	if err != nil {
		log.Printf("Failed to marshal admin audit details: %v", err)
		detailsJSON = []byte("{}")
	}

	_, err = db.Exec(`
		INSERT INTO admin_audit (ip, route, action, details, success, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, ip, route, action, detailsJSON, success)

	if err != nil {
		log.Printf("Failed to log admin action: %v", err)
	}

	return err
}
