package pkg

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/bookshelf/internal/middleware"
)

const navContextKey = "nav"

// NavItem is one entry of the site navigation rendered by the layout.
type NavItem struct {
	Name   string
	Label  string
	Href   string
	Active bool
}

// SetNav stores the navigation for the current request and the name of the
// route being served. Items whose Name equals current are marked active.
func SetNav(c *gin.Context, items []NavItem, current string) {
	nav := make([]NavItem, len(items))
	for i, it := range items {
		it.Active = it.Name == current
		nav[i] = it
	}
	c.Set(navContextKey, nav)
	middleware.SetRouteName(c, current)
}

// CurrentRoute returns the route name stored by SetNav, or "".
func CurrentRoute(c *gin.Context) string {
	return middleware.RouteName(c)
}

// PageData returns data extended with the values every page template expects:
// the navigation, the current route name and the CSRF token.
func PageData(c *gin.Context, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	if nav, ok := c.Get(navContextKey); ok {
		data["Nav"] = nav
	}
	data["Route"] = CurrentRoute(c)
	data["CSRFToken"] = middleware.GetCSRFToken(c)
	return data
}
