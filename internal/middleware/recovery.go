package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// PanicResponder writes the response for a request whose handler panicked.
type PanicResponder func(c *gin.Context)

// Recovery turns a panic into a logged error and a 500 response. The response
// is produced by respond, which lets the application reuse its error pages;
// a nil respond writes the JSON envelope.
func Recovery(log *slog.Logger, respond PanicResponder) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	if respond == nil {
		respond = jsonPanicResponse
	}

	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			log.ErrorContext(c.Request.Context(), "panic recovered",
				slog.Any("panic", rec),
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
				slog.String("route", routeLabel(c)),
				slog.String("stack", string(debug.Stack())),
			)
			c.Abort()
			safeRespond(c, respond)
		}()
		c.Next()
	}
}

// safeRespond runs respond and falls back to plain text if it panics too,
// for example when no HTML renderer is configured.
func safeRespond(c *gin.Context, respond PanicResponder) {
	defer func() {
		if recover() != nil {
			c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("500 Internal Server Error"))
		}
	}()
	respond(c)
}

func jsonPanicResponse(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    http.StatusInternalServerError,
		"message": "internal server error",
		"data":    nil,
	})
}
