package genre

import (
	"context"

	"gorm.io/gorm"

	"github.com/simp-lee/bookshelf/internal/domain"
	"github.com/simp-lee/bookshelf/internal/pkg"
)

var (
	allowedSortFields   = []string{"id", "name", "created_at", "updated_at"}
	allowedFilterFields = []string{"name"}
)

// genreRepository implements domain.GenreRepository using GORM.
type genreRepository struct {
	db *gorm.DB
}

// NewGenreRepository creates a new GenreRepository backed by the given GORM database.
func NewGenreRepository(db *gorm.DB) domain.GenreRepository {
	return &genreRepository{db: db}
}

func (r *genreRepository) Create(ctx context.Context, genre *domain.Genre) error {
	if err := r.db.WithContext(ctx).Create(genre).Error; err != nil {
		return pkg.MapDBError(err)
	}
	return nil
}

func (r *genreRepository) GetByID(ctx context.Context, id uint) (*domain.Genre, error) {
	var genre domain.Genre
	if err := r.db.WithContext(ctx).First(&genre, id).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &genre, nil
}

func (r *genreRepository) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Genre], error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&domain.Genre{}).
		Scopes(pkg.Filter(req, allowedFilterFields))

	if err := base.Count(&total).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}

	var genres []domain.Genre
	if err := base.Scopes(
		pkg.Paginate(req),
		pkg.Sort(req, allowedSortFields),
	).Find(&genres).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}

	return pkg.NewPage(genres, total, req), nil
}

// Delete removes a genre and detaches it from every book tagged with it.
func (r *genreRepository) Delete(ctx context.Context, id uint) error {
	return pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM book_genres WHERE genre_id = ?", id).Error; err != nil {
			return pkg.MapDBError(err)
		}
		result := tx.Delete(&domain.Genre{}, id)
		if result.Error != nil {
			return pkg.MapDBError(result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}
