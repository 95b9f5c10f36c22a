package book

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/bookshelf/internal/domain"
	"github.com/simp-lee/bookshelf/internal/pkg"
)

// BookHandler handles REST API requests for the book resource.
type BookHandler struct {
	svc domain.BookService
}

func NewBookHandler(svc domain.BookService) *BookHandler {
	return &BookHandler{svc: svc}
}

// Create handles POST /api/v1/books.
func (h *BookHandler) Create(c *gin.Context) {
	var req CreateBookRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	book, err := h.svc.CreateBook(c.Request.Context(), domain.NewBook{
		Title:         req.Title,
		ISBN:          req.ISBN,
		PublishedYear: req.PublishedYear,
		AuthorID:      req.AuthorID,
		GenreIDs:      req.GenreIDs,
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, book)
}

// Get handles GET /api/v1/books/:id.
func (h *BookHandler) Get(c *gin.Context) {
	id, err := pkg.ParseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	book, err := h.svc.GetBook(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, book)
}

// List handles GET /api/v1/books.
func (h *BookHandler) List(c *gin.Context) {
	result, err := h.svc.ListBooks(c.Request.Context(), pkg.ParsePageRequest(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// Delete handles DELETE /api/v1/books/:id.
func (h *BookHandler) Delete(c *gin.Context) {
	id, err := pkg.ParseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	if err := h.svc.DeleteBook(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, nil)
}
