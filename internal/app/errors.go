package app

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/bookshelf/internal/pkg"
)

// errorTemplates maps HTTP status codes to their error pages. Other codes use
// the 500 page.
var errorTemplates = map[int]string{
	http.StatusBadRequest:          "errors/400.html",
	http.StatusNotFound:            "errors/404.html",
	http.StatusInternalServerError: "errors/500.html",
}

// renderError answers with an error page for browsers and the JSON envelope
// for everyone else. A client asking only for JSON gets JSON even though
// acceptsHTML would also match its wildcard.
func renderError(c *gin.Context, code int, message string) {
	accept := strings.ToLower(c.GetHeader("Accept"))
	wantsJSON := strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
	if wantsJSON || !acceptsHTML(c) {
		c.JSON(code, pkg.Response{Code: code, Message: message})
		return
	}
	renderHTMLErrorPage(c, code)
}

// renderHTMLErrorPage renders the page for code with the usual page data.
// It falls back to plain text when rendering panics, for example when the
// engine has no HTML renderer.
func renderHTMLErrorPage(c *gin.Context, code int) {
	defer func() {
		if recover() != nil {
			c.Data(code, "text/plain; charset=utf-8", []byte(fmt.Sprintf("%d %s", code, statusText(code))))
		}
	}()

	tmpl, ok := errorTemplates[code]
	if !ok {
		tmpl = errorTemplates[http.StatusInternalServerError]
	}
	c.HTML(code, tmpl, pkg.PageData(c, gin.H{"Status": code}))
}

// panicResponse is the Recovery responder: an error page or JSON 500.
func panicResponse(c *gin.Context) {
	renderError(c, http.StatusInternalServerError, "internal server error")
}

// acceptsHTML matches text/html, */* and an absent Accept header.
func acceptsHTML(c *gin.Context) bool {
	accept := strings.ToLower(strings.TrimSpace(c.GetHeader("Accept")))
	return accept == "" || strings.Contains(accept, "text/html") || strings.Contains(accept, "*/*")
}

func statusText(code int) string {
	if s := http.StatusText(code); s != "" {
		return s
	}
	return "Error"
}
