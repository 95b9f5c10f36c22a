package genre

// CreateGenreRequest represents the input for creating a new genre.
type CreateGenreRequest struct {
	Name        string `json:"name" form:"name" binding:"required,min=2,max=50"`
	Description string `json:"description" form:"description" binding:"max=500"`
}
