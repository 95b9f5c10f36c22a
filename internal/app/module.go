package app

import "github.com/gin-gonic/gin"

// Module is a catalog resource that registers its JSON API. Pages are not
// registered by modules; the route table binds them to views.
type Module interface {
	RegisterRoutes(api *gin.RouterGroup)
}
