package genre

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/bookshelf/internal/domain"
	"github.com/simp-lee/bookshelf/internal/pkg"
)

// GenrePageHandler renders the genre pages.
type GenrePageHandler struct {
	svc domain.GenreService
}

func NewGenrePageHandler(svc domain.GenreService) *GenrePageHandler {
	return &GenrePageHandler{svc: svc}
}

// ListPage renders the Genres view.
func (h *GenrePageHandler) ListPage(c *gin.Context) {
	req := pkg.ParsePageRequestWithSort(c, "name:asc")

	result, err := h.svc.ListGenres(c.Request.Context(), req)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "list genres page", slog.Any("error", err))
		c.HTML(http.StatusInternalServerError, "errors/500.html", pkg.PageData(c, nil))
		return
	}

	path := c.Request.URL.Path
	c.HTML(http.StatusOK, "genres/list.html", pkg.PageData(c, gin.H{
		"Genres":     result.Items,
		"Pagination": result,
		"PrevURL":    pkg.PageURL(path, req, result.Page-1),
		"NextURL":    pkg.PageURL(path, req, result.Page+1),
		"Query":      req.Filter["name__like"],
	}))
}
