package book

import (
	"context"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/simp-lee/bookshelf/internal/domain"
)

type bookService struct {
	repo domain.BookRepository
	now  func() time.Time
}

// NewBookService creates a new BookService with the given repository.
func NewBookService(repo domain.BookRepository) domain.BookService {
	return &bookService{repo: repo, now: time.Now}
}

// CreateBook validates and normalizes in, then persists the book.
// ISBNs are stored without hyphens or spaces; duplicate genre ids are collapsed.
func (s *bookService) CreateBook(ctx context.Context, in domain.NewBook) (*domain.Book, error) {
	title := strings.TrimSpace(in.Title)
	switch n := utf8.RuneCountInString(title); {
	case n == 0:
		return nil, domain.NewAppError(domain.CodeValidation, "title is required", nil)
	case n > 200:
		return nil, domain.NewAppError(domain.CodeValidation, "title must be at most 200 characters", nil)
	}

	if in.AuthorID == 0 {
		return nil, domain.NewAppError(domain.CodeValidation, "author_id is required", nil)
	}

	if in.PublishedYear != 0 {
		if in.PublishedYear < 0 || in.PublishedYear > s.now().Year()+1 {
			return nil, domain.NewAppError(domain.CodeValidation, "published_year is out of range", nil)
		}
	}

	book := &domain.Book{
		Title:         title,
		PublishedYear: in.PublishedYear,
		AuthorID:      in.AuthorID,
	}

	if raw := strings.TrimSpace(in.ISBN); raw != "" {
		isbn, ok := normalizeISBN(raw)
		if !ok {
			return nil, domain.NewAppError(domain.CodeValidation, "isbn must have 10 or 13 digits", nil)
		}
		book.ISBN = &isbn
	}

	genreIDs := slices.Clone(in.GenreIDs)
	slices.Sort(genreIDs)
	genreIDs = slices.Compact(genreIDs)
	if slices.Contains(genreIDs, 0) {
		return nil, domain.NewAppError(domain.CodeValidation, "genre ids must be positive", nil)
	}

	if err := s.repo.Create(ctx, book, genreIDs); err != nil {
		if domain.IsAlreadyExists(err) {
			return nil, domain.NewAppError(domain.CodeAlreadyExists, "isbn already exists", err)
		}
		return nil, err
	}
	return book, nil
}

func (s *bookService) GetBook(ctx context.Context, id uint) (*domain.Book, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *bookService) ListBooks(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Book], error) {
	return s.repo.List(ctx, req)
}

func (s *bookService) DeleteBook(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// normalizeISBN strips hyphens and spaces and checks the remaining length.
// ISBN-10 may end in X.
func normalizeISBN(s string) (string, bool) {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '-' || r == ' ':
			continue
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'x' || r == 'X':
			b.WriteByte('X')
		default:
			return "", false
		}
	}
	out := b.String()
	switch len(out) {
	case 10:
		if strings.IndexByte(out[:9], 'X') >= 0 {
			return "", false
		}
		return out, true
	case 13:
		if strings.IndexByte(out, 'X') >= 0 {
			return "", false
		}
		return out, true
	default:
		return "", false
	}
}
