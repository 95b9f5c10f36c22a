package genre

import "github.com/gin-gonic/gin"

// GenreModule implements the app.Module interface for the genre domain.
type GenreModule struct {
	handler     *GenreHandler
	pageHandler *GenrePageHandler
}

// NewModule creates a new GenreModule. Panics if h or ph is nil.
func NewModule(h *GenreHandler, ph *GenrePageHandler) *GenreModule {
	if h == nil {
		panic("genre.NewModule: handler must not be nil")
	}
	if ph == nil {
		panic("genre.NewModule: pageHandler must not be nil")
	}
	return &GenreModule{handler: h, pageHandler: ph}
}

// RegisterRoutes registers the genre API routes.
func (m *GenreModule) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/genres", m.handler.Create)
	api.GET("/genres", m.handler.List)
	api.GET("/genres/:id", m.handler.Get)
	api.DELETE("/genres/:id", m.handler.Delete)
}

// ListPage is the handler for the Genres view.
func (m *GenreModule) ListPage() gin.HandlerFunc {
	return m.pageHandler.ListPage
}
