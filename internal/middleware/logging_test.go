package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"stockdesk/internal/logger"
)

func setupLoggingRouter(seen *string) *gin.Engine {
	logger.Init("test")
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/sectors", func(c *gin.Context) {
		*seen = RequestID(c)
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequestLogging_RequestID(t *testing.T) {
	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"valid id kept", "0190a6e2-6b7c-7d5e-8f00-aabbccddeeff", true},
		{"missing id minted", "", false},
		{"malformed id replaced", "desk-42", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			r := setupLoggingRouter(&seen)

			req := httptest.NewRequest(http.MethodGet, "/sectors", http.NoBody)
			if tt.header != "" {
				req.Header.Set("X-Request-ID", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			got := rec.Header().Get("X-Request-ID")
			if got == "" || got != seen {
				t.Fatalf("expected echoed id to match handler id, got %q and %q", got, seen)
			}
			if tt.keep && got != tt.header {
				t.Errorf("expected %q to be kept, got %q", tt.header, got)
			}
			if !tt.keep && got == tt.header {
				t.Errorf("expected %q to be replaced", tt.header)
			}
		})
	}
}
