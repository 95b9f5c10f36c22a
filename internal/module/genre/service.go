package genre

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/simp-lee/bookshelf/internal/domain"
)

type genreService struct {
	repo domain.GenreRepository
}

// NewGenreService creates a new GenreService with the given repository.
func NewGenreService(repo domain.GenreRepository) domain.GenreService {
	return &genreService{repo: repo}
}

// CreateGenre validates input and persists a new genre. Duplicate names are
// reported by the repository as CodeAlreadyExists.
func (s *genreService) CreateGenre(ctx context.Context, name, description string) (*domain.Genre, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)

	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		return nil, domain.NewAppError(domain.CodeValidation, "name is required", nil)
	case n < 2:
		return nil, domain.NewAppError(domain.CodeValidation, "name must be at least 2 characters", nil)
	case n > 50:
		return nil, domain.NewAppError(domain.CodeValidation, "name must be at most 50 characters", nil)
	}
	if utf8.RuneCountInString(description) > 500 {
		return nil, domain.NewAppError(domain.CodeValidation, "description must be at most 500 characters", nil)
	}

	genre := &domain.Genre{Name: name, Description: description}
	if err := s.repo.Create(ctx, genre); err != nil {
		if domain.IsAlreadyExists(err) {
			return nil, domain.NewAppError(domain.CodeAlreadyExists, "genre already exists", err)
		}
		return nil, err
	}
	return genre, nil
}

func (s *genreService) GetGenre(ctx context.Context, id uint) (*domain.Genre, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *genreService) ListGenres(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Genre], error) {
	return s.repo.List(ctx, req)
}

func (s *genreService) DeleteGenre(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}
