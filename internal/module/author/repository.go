package author

import (
	"context"

	"gorm.io/gorm"

	"github.com/simp-lee/bookshelf/internal/domain"
	"github.com/simp-lee/bookshelf/internal/pkg"
)

// Allowed fields for sorting and filtering in List queries.
var (
	allowedSortFields   = []string{"id", "name", "created_at", "updated_at"}
	allowedFilterFields = []string{"name"}
)

// authorRepository implements domain.AuthorRepository using GORM.
type authorRepository struct {
	db *gorm.DB
}

// NewAuthorRepository creates a new AuthorRepository backed by the given GORM database.
func NewAuthorRepository(db *gorm.DB) domain.AuthorRepository {
	return &authorRepository{db: db}
}

func (r *authorRepository) Create(ctx context.Context, author *domain.Author) error {
	if err := r.db.WithContext(ctx).Create(author).Error; err != nil {
		return pkg.MapDBError(err)
	}
	return nil
}

// GetByID retrieves an author together with their books.
func (r *authorRepository) GetByID(ctx context.Context, id uint) (*domain.Author, error) {
	var author domain.Author
	err := r.db.WithContext(ctx).
		Preload("Books", func(db *gorm.DB) *gorm.DB { return db.Order("title asc") }).
		First(&author, id).Error
	if err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &author, nil
}

// List returns a paginated, sorted, and filtered list of authors.
func (r *authorRepository) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Author], error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&domain.Author{}).
		Scopes(pkg.Filter(req, allowedFilterFields))

	if err := base.Count(&total).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}

	var authors []domain.Author
	if err := base.Scopes(
		pkg.Paginate(req),
		pkg.Sort(req, allowedSortFields),
	).Find(&authors).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}

	return pkg.NewPage(authors, total, req), nil
}

// Delete removes an author. Authors that still have books cannot be removed.
func (r *authorRepository) Delete(ctx context.Context, id uint) error {
	return pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		var books int64
		if err := tx.Model(&domain.Book{}).Where("author_id = ?", id).Count(&books).Error; err != nil {
			return pkg.MapDBError(err)
		}
		if books > 0 {
			return domain.ErrAuthorHasBooks
		}

		result := tx.Delete(&domain.Author{}, id)
		if result.Error != nil {
			return pkg.MapDBError(result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}
