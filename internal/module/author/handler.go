package author

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/bookshelf/internal/domain"
	"github.com/simp-lee/bookshelf/internal/pkg"
)

// AuthorHandler handles REST API requests for the author resource.
type AuthorHandler struct {
	svc domain.AuthorService
}

// NewAuthorHandler creates a new AuthorHandler with the given service.
func NewAuthorHandler(svc domain.AuthorService) *AuthorHandler {
	return &AuthorHandler{svc: svc}
}

// Create handles POST /api/v1/authors.
func (h *AuthorHandler) Create(c *gin.Context) {
	var req CreateAuthorRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	author, err := h.svc.CreateAuthor(c.Request.Context(), req.Name, req.Bio)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, author)
}

// Get handles GET /api/v1/authors/:id.
func (h *AuthorHandler) Get(c *gin.Context) {
	id, err := pkg.ParseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	author, err := h.svc.GetAuthor(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, author)
}

// List handles GET /api/v1/authors.
func (h *AuthorHandler) List(c *gin.Context) {
	result, err := h.svc.ListAuthors(c.Request.Context(), pkg.ParsePageRequest(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// Delete handles DELETE /api/v1/authors/:id.
func (h *AuthorHandler) Delete(c *gin.Context) {
	id, err := pkg.ParseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	if err := h.svc.DeleteAuthor(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, nil)
}
