package domain

import "context"

// Book is a catalog entry written by one author and tagged with any number of genres.
type Book struct {
	BaseModel
	Title         string  `gorm:"size:200;not null;index" json:"title"`
	ISBN          *string `gorm:"size:13;uniqueIndex" json:"isbn,omitempty"`
	PublishedYear int     `json:"published_year,omitempty"`
	AuthorID      uint    `gorm:"not null;index" json:"author_id"`
	Author        *Author `json:"author,omitempty"`
	Genres        []Genre `gorm:"many2many:book_genres;" json:"genres"`
}

// NewBook carries the validated input for creating a book.
type NewBook struct {
	Title         string
	ISBN          string
	PublishedYear int
	AuthorID      uint
	GenreIDs      []uint
}

// BookRepository defines the data access interface for books.
type BookRepository interface {
	// Create persists the book, verifying that its author exists and
	// attaching the genres identified by genreIDs, in one transaction.
	Create(ctx context.Context, book *Book, genreIDs []uint) error
	GetByID(ctx context.Context, id uint) (*Book, error)
	List(ctx context.Context, req PageRequest) (*PageResult[Book], error)
	Delete(ctx context.Context, id uint) error
}

// BookService defines the business logic interface for books.
type BookService interface {
	CreateBook(ctx context.Context, in NewBook) (*Book, error)
	GetBook(ctx context.Context, id uint) (*Book, error)
	ListBooks(ctx context.Context, req PageRequest) (*PageResult[Book], error)
	DeleteBook(ctx context.Context, id uint) error
}
