package author

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/bookshelf/internal/domain"
	"github.com/simp-lee/bookshelf/internal/pkg"
)

// AuthorPageHandler renders the author pages.
type AuthorPageHandler struct {
	svc domain.AuthorService
}

// NewAuthorPageHandler creates a new AuthorPageHandler with the given service.
func NewAuthorPageHandler(svc domain.AuthorService) *AuthorPageHandler {
	return &AuthorPageHandler{svc: svc}
}

// ListPage renders the Authors view: a paginated author list, alphabetical by default.
func (h *AuthorPageHandler) ListPage(c *gin.Context) {
	req := pkg.ParsePageRequestWithSort(c, "name:asc")

	result, err := h.svc.ListAuthors(c.Request.Context(), req)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "list authors page", slog.Any("error", err))
		c.HTML(http.StatusInternalServerError, "errors/500.html", pkg.PageData(c, nil))
		return
	}

	path := c.Request.URL.Path
	c.HTML(http.StatusOK, "authors/list.html", pkg.PageData(c, gin.H{
		"Authors":    result.Items,
		"Pagination": result,
		"PrevURL":    pkg.PageURL(path, req, result.Page-1),
		"NextURL":    pkg.PageURL(path, req, result.Page+1),
		"Query":      req.Filter["name__like"],
	}))
}
