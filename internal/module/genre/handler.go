package genre

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/bookshelf/internal/domain"
	"github.com/simp-lee/bookshelf/internal/pkg"
)

// GenreHandler handles REST API requests for the genre resource.
type GenreHandler struct {
	svc domain.GenreService
}

func NewGenreHandler(svc domain.GenreService) *GenreHandler {
	return &GenreHandler{svc: svc}
}

// Create handles POST /api/v1/genres.
func (h *GenreHandler) Create(c *gin.Context) {
	var req CreateGenreRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	genre, err := h.svc.CreateGenre(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, genre)
}

// Get handles GET /api/v1/genres/:id.
func (h *GenreHandler) Get(c *gin.Context) {
	id, err := pkg.ParseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	genre, err := h.svc.GetGenre(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, genre)
}

// List handles GET /api/v1/genres.
func (h *GenreHandler) List(c *gin.Context) {
	result, err := h.svc.ListGenres(c.Request.Context(), pkg.ParsePageRequest(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// Delete handles DELETE /api/v1/genres/:id.
func (h *GenreHandler) Delete(c *gin.Context) {
	id, err := pkg.ParseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	if err := h.svc.DeleteGenre(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, nil)
}
