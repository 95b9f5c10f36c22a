package book

import (
	"context"

	"gorm.io/gorm"

	"github.com/simp-lee/bookshelf/internal/domain"
	"github.com/simp-lee/bookshelf/internal/pkg"
)

var (
	allowedSortFields   = []string{"id", "title", "published_year", "created_at", "updated_at"}
	allowedFilterFields = []string{"title", "author_id", "published_year", "isbn"}
)

// bookRepository implements domain.BookRepository using GORM.
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new BookRepository backed by the given GORM database.
func NewBookRepository(db *gorm.DB) domain.BookRepository {
	return &bookRepository{db: db}
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").Preload("Genres", func(db *gorm.DB) *gorm.DB {
		return db.Order("name asc")
	})
}

// Create persists book in a transaction: the author must exist and every id in
// genreIDs must name an existing genre.
func (r *bookRepository) Create(ctx context.Context, book *domain.Book, genreIDs []uint) error {
	return pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		var authors int64
		if err := tx.Model(&domain.Author{}).Where("id = ?", book.AuthorID).Count(&authors).Error; err != nil {
			return pkg.MapDBError(err)
		}
		if authors == 0 {
			return domain.ErrUnknownAuthor
		}

		if len(genreIDs) > 0 {
			var genres []domain.Genre
			if err := tx.Where("id IN ?", genreIDs).Find(&genres).Error; err != nil {
				return pkg.MapDBError(err)
			}
			if len(genres) != len(genreIDs) {
				return domain.ErrUnknownGenre
			}
			book.Genres = genres
		}

		if err := tx.Create(book).Error; err != nil {
			return pkg.MapDBError(err)
		}
		return pkg.MapDBError(tx.Scopes(withRelations).First(book, book.ID).Error)
	})
}

func (r *bookRepository) GetByID(ctx context.Context, id uint) (*domain.Book, error) {
	var book domain.Book
	if err := r.db.WithContext(ctx).Scopes(withRelations).First(&book, id).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &book, nil
}

// List returns a paginated list of books with their author and genres loaded.
func (r *bookRepository) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Book], error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&domain.Book{}).
		Scopes(pkg.Filter(req, allowedFilterFields))

	if err := base.Count(&total).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}

	var books []domain.Book
	if err := base.Scopes(
		withRelations,
		pkg.Paginate(req),
		pkg.Sort(req, allowedSortFields),
	).Find(&books).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}

	return pkg.NewPage(books, total, req), nil
}

// Delete removes a book and its genre associations.
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	return pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		var book domain.Book
		if err := tx.First(&book, id).Error; err != nil {
			return pkg.MapDBError(err)
		}
		if err := tx.Model(&book).Association("Genres").Clear(); err != nil {
			return pkg.MapDBError(err)
		}
		if err := tx.Delete(&book).Error; err != nil {
			return pkg.MapDBError(err)
		}
		return nil
	})
}
