package domain

import "context"

// Genre classifies books. Names are unique across the catalog.
type Genre struct {
	BaseModel
	Name        string `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string `gorm:"size:500" json:"description"`
}

// GenreRepository defines the data access interface for genres.
type GenreRepository interface {
	Create(ctx context.Context, genre *Genre) error
	GetByID(ctx context.Context, id uint) (*Genre, error)
	List(ctx context.Context, req PageRequest) (*PageResult[Genre], error)
	Delete(ctx context.Context, id uint) error
}

// GenreService defines the business logic interface for genres.
type GenreService interface {
	CreateGenre(ctx context.Context, name, description string) (*Genre, error)
	GetGenre(ctx context.Context, id uint) (*Genre, error)
	ListGenres(ctx context.Context, req PageRequest) (*PageResult[Genre], error)
	DeleteGenre(ctx context.Context, id uint) error
}
