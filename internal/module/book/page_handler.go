package book

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/bookshelf/internal/domain"
	"github.com/simp-lee/bookshelf/internal/pkg"
)

// BookPageHandler renders the book pages.
type BookPageHandler struct {
	svc domain.BookService
}

func NewBookPageHandler(svc domain.BookService) *BookPageHandler {
	return &BookPageHandler{svc: svc}
}

// ListPage renders the Books view with each book's author and genres.
func (h *BookPageHandler) ListPage(c *gin.Context) {
	req := pkg.ParsePageRequestWithSort(c, "title:asc")

	result, err := h.svc.ListBooks(c.Request.Context(), req)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "list books page", slog.Any("error", err))
		c.HTML(http.StatusInternalServerError, "errors/500.html", pkg.PageData(c, nil))
		return
	}

	path := c.Request.URL.Path
	c.HTML(http.StatusOK, "books/list.html", pkg.PageData(c, gin.H{
		"Books":      result.Items,
		"Pagination": result,
		"PrevURL":    pkg.PageURL(path, req, result.Page-1),
		"NextURL":    pkg.PageURL(path, req, result.Page+1),
		"Query":      req.Filter["title__like"],
	}))
}
