package book

import "github.com/gin-gonic/gin"

// BookModule implements the app.Module interface for the book domain.
type BookModule struct {
	handler     *BookHandler
	pageHandler *BookPageHandler
}

// NewModule creates a new BookModule. Panics if h or ph is nil.
func NewModule(h *BookHandler, ph *BookPageHandler) *BookModule {
	if h == nil {
		panic("book.NewModule: handler must not be nil")
	}
	if ph == nil {
		panic("book.NewModule: pageHandler must not be nil")
	}
	return &BookModule{handler: h, pageHandler: ph}
}

// RegisterRoutes registers the book API routes.
func (m *BookModule) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/books", m.handler.Create)
	api.GET("/books", m.handler.List)
	api.GET("/books/:id", m.handler.Get)
	api.DELETE("/books/:id", m.handler.Delete)
}

// ListPage is the handler for the Books view.
func (m *BookModule) ListPage() gin.HandlerFunc {
	return m.pageHandler.ListPage
}
