package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func setupLoggerRouter(log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Logger(log))
	r.GET("/books", func(c *gin.Context) {
		SetRouteName(c, "books")
		c.String(http.StatusOK, "books")
	})
	r.GET("/api/v1/books/:id", func(c *gin.Context) {
		c.String(http.StatusNotFound, "missing")
	})
	r.GET("/boom", func(c *gin.Context) {
		c.String(http.StatusInternalServerError, "error")
	})
	return r
}

func TestLogger_LevelsAndRoute(t *testing.T) {
	tests := []struct {
		target    string
		wantLevel string
		wantRoute string
		status    string
	}{
		{"/books", "level=INFO", "route=books", "status=200"},
		{"/api/v1/books/7", "level=WARN", "route=/api/v1/books/:id", "status=404"},
		{"/boom", "level=ERROR", "route=/boom", "status=500"},
		{"/nowhere", "level=WARN", "route=unmatched", "status=404"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			var buf bytes.Buffer
			serve(setupLoggerRouter(newTestLogger(&buf)), http.MethodGet, tt.target, nil)

			line := buf.String()
			for _, want := range []string{tt.wantLevel, tt.wantRoute, tt.status, "msg=request", "method=GET"} {
				if !strings.Contains(line, want) {
					t.Errorf("log %q missing %q", line, want)
				}
			}
		})
	}
}

func TestLogger_NilUsesDefault(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(newTestLogger(&buf))
	defer slog.SetDefault(prev)

	r := gin.New()
	r.Use(Logger(nil))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	serve(r, http.MethodGet, "/ok", nil)

	if !strings.Contains(buf.String(), "status=204") {
		t.Errorf("default logger output = %q", buf.String())
	}
}
