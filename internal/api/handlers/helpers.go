package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/tiltball/internal/auth"
	"github.com/playmatatu/tiltball/internal/config"
)

const maxPlayerNameLen = 24

// normalizePlayerName trims, drops control characters and caps the length.
// Returns "" for names with nothing printable.
func normalizePlayerName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	out := []rune(strings.TrimSpace(b.String()))
	if len(out) > maxPlayerNameLen {
		out = out[:maxPlayerNameLen]
	}
	return string(out)
}

// parseLimit reads ?limit= with a default and an upper bound
func parseLimit(c *gin.Context, def, max int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// authorizeSession checks the bearer token belongs to the session in the path.
// On failure it writes the response and returns false.
func authorizeSession(c *gin.Context, cfg *config.Config, sessionID string) bool {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return false
	}
	claims, err := auth.ParseSessionToken(cfg.JWTSecret, strings.TrimPrefix(header, "Bearer "))
	if err != nil || claims.SessionID != sessionID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid session token"})
		return false
	}
	return true
}
