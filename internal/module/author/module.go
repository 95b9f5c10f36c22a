package author

import "github.com/gin-gonic/gin"

// AuthorModule implements the app.Module interface for the author domain.
// Its list page is not registered here: the route table binds it to the
// Authors view.
type AuthorModule struct {
	handler     *AuthorHandler
	pageHandler *AuthorPageHandler
}

// NewModule creates a new AuthorModule with the given handlers.
// Panics if h or ph is nil.
func NewModule(h *AuthorHandler, ph *AuthorPageHandler) *AuthorModule {
	if h == nil {
		panic("author.NewModule: handler must not be nil")
	}
	if ph == nil {
		panic("author.NewModule: pageHandler must not be nil")
	}
	return &AuthorModule{handler: h, pageHandler: ph}
}

// RegisterRoutes registers the author API routes.
func (m *AuthorModule) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/authors", m.handler.Create)
	api.GET("/authors", m.handler.List)
	api.GET("/authors/:id", m.handler.Get)
	api.DELETE("/authors/:id", m.handler.Delete)
}

// ListPage is the handler for the Authors view.
func (m *AuthorModule) ListPage() gin.HandlerFunc {
	return m.pageHandler.ListPage
}
