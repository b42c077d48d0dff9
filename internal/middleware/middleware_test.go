package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/tiltball/internal/admin"
	"github.com/playmatatu/tiltball/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.GET("/admin", RequireAdmin(cfg), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/ws", WebSocketCORSCheck(cfg), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRequireAdmin(t *testing.T) {
	hash, err := admin.HashAdminToken("letmein")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	r := newRouter(&config.Config{AdminTokenHash: hash})

	cases := []struct {
		token string
		want  int
	}{
		{"letmein", http.StatusOK},
		{"nope", http.StatusUnauthorized},
		{"", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if tc.token != "" {
			req.Header.Set("X-Admin-Token", tc.token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Errorf("token %q: got status %d, want %d", tc.token, w.Code, tc.want)
		}
	}
}

func TestRequireAdminDisabledWithoutHash(t *testing.T) {
	r := newRouter(&config.Config{})
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-Admin-Token", "anything")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("got status %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestWebSocketCORSCheck(t *testing.T) {
	cfg := &config.Config{Environment: "production", FrontendURL: "https://tilt.example"}
	r := newRouter(cfg)

	cases := []struct {
		origin string
		want   int
	}{
		{"https://tilt.example", http.StatusOK},
		{"https://evil.example", http.StatusForbidden},
		{"http://localhost:3000", http.StatusForbidden},
		{"", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		req.Header.Set("Connection", "Upgrade")
		req.Header.Set("Upgrade", "websocket")
		if tc.origin != "" {
			req.Header.Set("Origin", tc.origin)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Errorf("origin %q: got status %d, want %d", tc.origin, w.Code, tc.want)
		}
	}
}
