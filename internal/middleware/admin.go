package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/tiltball/internal/admin"
	"github.com/playmatatu/tiltball/internal/config"
)

// RequireAdmin rejects requests whose X-Admin-Token does not match ADMIN_TOKEN_HASH.
// With no hash configured the admin API is closed.
func RequireAdmin(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.AdminTokenHash == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "admin API disabled"})
			return
		}
		if !admin.VerifyAdminToken(cfg.AdminTokenHash, c.GetHeader("X-Admin-Token")) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin token"})
			return
		}
		c.Next()
	}
}
