package book

// CreateBookRequest represents the input for creating a new book.
type CreateBookRequest struct {
	Title         string `json:"title" form:"title" binding:"required,min=1,max=200"`
	ISBN          string `json:"isbn" form:"isbn" binding:"omitempty,isbn"`
	PublishedYear int    `json:"published_year" form:"published_year" binding:"omitempty,min=1"`
	AuthorID      uint   `json:"author_id" form:"author_id" binding:"required,min=1"`
	GenreIDs      []uint `json:"genre_ids" form:"genre_ids" binding:"omitempty,dive,min=1"`
}
