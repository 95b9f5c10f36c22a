package middleware

import "github.com/gin-gonic/gin"

const routeNameContextKey = "route_name"

// SetRouteName records the name of the route table entry serving the request.
// The access log and the metrics middleware label requests with it.
func SetRouteName(c *gin.Context, name string) {
	c.Set(routeNameContextKey, name)
}

// RouteName returns the name stored by SetRouteName, or "".
func RouteName(c *gin.Context) string {
	return c.GetString(routeNameContextKey)
}

// routeLabel names the request for logs and metrics: the route table name for
// pages, the gin pattern for API endpoints and "unmatched" otherwise.
func routeLabel(c *gin.Context) string {
	if name := RouteName(c); name != "" {
		return name
	}
	if p := c.FullPath(); p != "" {
		return p
	}
	return "unmatched"
}
