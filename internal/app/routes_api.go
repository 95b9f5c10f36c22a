package app

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/bookshelf/internal/pkg"
	"github.com/simp-lee/bookshelf/internal/route"
)

// routeInfo is the API representation of a route table entry.
type routeInfo struct {
	Name string     `json:"name"`
	Path string     `json:"path"`
	Href string     `json:"href"`
	View route.View `json:"view"`
}

func newRouteInfo(t *route.Table, r route.Route) routeInfo {
	return routeInfo{Name: r.Name, Path: r.Path, Href: t.Join(r.Path), View: r.View}
}

// registerRouteAPI exposes the route table under api:
//
//	GET /routes                 ordered list of routes
//	GET /routes/resolve?path=   route matching a request path
func registerRouteAPI(api *gin.RouterGroup, t *route.Table) {
	api.GET("/routes", func(c *gin.Context) {
		routes := t.Routes()
		out := make([]routeInfo, len(routes))
		for i, r := range routes {
			out[i] = newRouteInfo(t, r)
		}
		pkg.Success(c, out)
	})

	api.GET("/routes/resolve", func(c *gin.Context) {
		p, ok := c.GetQuery("path")
		if !ok || strings.TrimSpace(p) == "" {
			c.JSON(http.StatusBadRequest, pkg.Response{Code: http.StatusBadRequest, Message: "path is required"})
			return
		}
		r, ok := t.Match(p)
		if !ok {
			pkg.NotFound(c, "no matching route")
			return
		}
		pkg.Success(c, newRouteInfo(t, r))
	})
}
