package author

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/simp-lee/bookshelf/internal/domain"
)

// authorService implements domain.AuthorService.
type authorService struct {
	repo domain.AuthorRepository
}

// NewAuthorService creates a new AuthorService with the given repository.
func NewAuthorService(repo domain.AuthorRepository) domain.AuthorService {
	return &authorService{repo: repo}
}

// CreateAuthor validates input, builds an Author, and persists it via the repository.
func (s *authorService) CreateAuthor(ctx context.Context, name, bio string) (*domain.Author, error) {
	name = strings.TrimSpace(name)
	bio = strings.TrimSpace(bio)

	if err := validateAuthor(name, bio); err != nil {
		return nil, err
	}

	author := &domain.Author{Name: name, Bio: bio}
	if err := s.repo.Create(ctx, author); err != nil {
		return nil, err
	}
	return author, nil
}

func (s *authorService) GetAuthor(ctx context.Context, id uint) (*domain.Author, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *authorService) ListAuthors(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Author], error) {
	return s.repo.List(ctx, req)
}

func (s *authorService) DeleteAuthor(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func validateAuthor(name, bio string) error {
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		return domain.NewAppError(domain.CodeValidation, "name is required", nil)
	case n < 2:
		return domain.NewAppError(domain.CodeValidation, "name must be at least 2 characters", nil)
	case n > 100:
		return domain.NewAppError(domain.CodeValidation, "name must be at most 100 characters", nil)
	}
	if utf8.RuneCountInString(bio) > 1000 {
		return domain.NewAppError(domain.CodeValidation, "bio must be at most 1000 characters", nil)
	}
	return nil
}
