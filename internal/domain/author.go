package domain

import "context"

// Author is a writer of one or more books in the catalog.
type Author struct {
	BaseModel
	Name  string `gorm:"size:100;not null;index" json:"name"`
	Bio   string `gorm:"size:1000" json:"bio"`
	Books []Book `json:"books,omitempty"`
}

// AuthorRepository defines the data access interface for authors.
type AuthorRepository interface {
	Create(ctx context.Context, author *Author) error
	GetByID(ctx context.Context, id uint) (*Author, error)
	List(ctx context.Context, req PageRequest) (*PageResult[Author], error)
	Delete(ctx context.Context, id uint) error
}

// AuthorService defines the business logic interface for authors.
type AuthorService interface {
	CreateAuthor(ctx context.Context, name, bio string) (*Author, error)
	GetAuthor(ctx context.Context, id uint) (*Author, error)
	ListAuthors(ctx context.Context, req PageRequest) (*PageResult[Author], error)
	DeleteAuthor(ctx context.Context, id uint) error
}
