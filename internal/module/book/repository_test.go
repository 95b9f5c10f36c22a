package book

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/simp-lee/bookshelf/internal/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(domain.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type fixture struct {
	author *domain.Author
	genres []domain.Genre
}

func seedCatalog(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	f := fixture{author: &domain.Author{Name: "Frank Herbert"}}
	if err := db.Create(f.author).Error; err != nil {
		t.Fatalf("create author: %v", err)
	}
	for _, name := range []string{"Space Opera", "Ecology"} {
		g := domain.Genre{Name: name}
		if err := db.Create(&g).Error; err != nil {
			t.Fatalf("create genre: %v", err)
		}
		f.genres = append(f.genres, g)
	}
	return f
}

func strPtr(s string) *string { return &s }

func TestCreate_LoadsRelations(t *testing.T) {
	db := setupTestDB(t)
	f := seedCatalog(t, db)
	repo := NewBookRepository(db)

	b := &domain.Book{Title: "Dune", AuthorID: f.author.ID, PublishedYear: 1965, ISBN: strPtr("9780441013593")}
	if err := repo.Create(context.Background(), b, []uint{f.genres[0].ID, f.genres[1].ID}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.ID == 0 {
		t.Fatal("expected non-zero ID")
	}
	if b.Author == nil || b.Author.Name != "Frank Herbert" {
		t.Errorf("author = %+v", b.Author)
	}
	if len(b.Genres) != 2 || b.Genres[0].Name != "Ecology" {
		t.Errorf("genres = %+v; want two, sorted by name", b.Genres)
	}

	got, err := repo.GetByID(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Author == nil || len(got.Genres) != 2 || *got.ISBN != "9780441013593" {
		t.Errorf("GetByID = %+v", got)
	}
}

func TestCreate_ValidatesReferences(t *testing.T) {
	db := setupTestDB(t)
	f := seedCatalog(t, db)
	repo := NewBookRepository(db)
	ctx := context.Background()

	err := repo.Create(ctx, &domain.Book{Title: "Orphan", AuthorID: 999}, nil)
	if !domain.IsValidation(err) || !errors.Is(err, domain.ErrUnknownAuthor) {
		t.Errorf("missing author error = %v; want ErrUnknownAuthor", err)
	}

	err = repo.Create(ctx, &domain.Book{Title: "Mislabelled", AuthorID: f.author.ID}, []uint{f.genres[0].ID, 999})
	if !domain.IsValidation(err) || !errors.Is(err, domain.ErrUnknownGenre) {
		t.Errorf("missing genre error = %v; want ErrUnknownGenre", err)
	}

	var count int64
	db.Model(&domain.Book{}).Count(&count)
	if count != 0 {
		t.Errorf("books = %d; failed creates must not persist", count)
	}
}

func TestCreate_DuplicateISBN(t *testing.T) {
	db := setupTestDB(t)
	f := seedCatalog(t, db)
	repo := NewBookRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, &domain.Book{Title: "Dune", AuthorID: f.author.ID, ISBN: strPtr("0441172717")}, nil); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	err := repo.Create(ctx, &domain.Book{Title: "Dune (reprint)", AuthorID: f.author.ID, ISBN: strPtr("0441172717")}, nil)
	if !domain.IsAlreadyExists(err) {
		t.Errorf("duplicate ISBN error = %v; want already exists", err)
	}

	// Books without an ISBN never collide.
	for _, title := range []string{"Notes A", "Notes B"} {
		if err := repo.Create(ctx, &domain.Book{Title: title, AuthorID: f.author.ID}, nil); err != nil {
			t.Errorf("Create(%s) without ISBN: %v", title, err)
		}
	}
}

func TestList_FiltersAndSort(t *testing.T) {
	db := setupTestDB(t)
	f := seedCatalog(t, db)
	repo := NewBookRepository(db)
	ctx := context.Background()

	other := &domain.Author{Name: "Isaac Asimov"}
	db.Create(other)
	books := []*domain.Book{
		{Title: "Dune Messiah", AuthorID: f.author.ID, PublishedYear: 1969},
		{Title: "Dune", AuthorID: f.author.ID, PublishedYear: 1965},
		{Title: "Foundation", AuthorID: other.ID, PublishedYear: 1951},
	}
	for _, b := range books {
		if err := repo.Create(ctx, b, []uint{f.genres[0].ID}); err != nil {
			t.Fatalf("Create(%s): %v", b.Title, err)
		}
	}

	res, err := repo.List(ctx, domain.PageRequest{
		Page: 1, PageSize: 10, Sort: "published_year:asc",
		Filter: map[string]string{"title__like": "Dune"},
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if res.Total != 2 || res.Items[0].Title != "Dune" || res.Items[1].Title != "Dune Messiah" {
		t.Errorf("items = %+v", res.Items)
	}
	if res.Items[0].Author == nil || len(res.Items[0].Genres) != 1 {
		t.Error("list should load author and genres")
	}

	res, err = repo.List(ctx, domain.PageRequest{Page: 1, PageSize: 10, Filter: map[string]string{"author_id": "2"}})
	if err != nil {
		t.Fatalf("List by author: %v", err)
	}
	if res.Total != 1 || res.Items[0].Title != "Foundation" {
		t.Errorf("author filter = %+v", res.Items)
	}
}

func TestDelete_ClearsGenres(t *testing.T) {
	db := setupTestDB(t)
	f := seedCatalog(t, db)
	repo := NewBookRepository(db)
	ctx := context.Background()

	b := &domain.Book{Title: "Children of Dune", AuthorID: f.author.ID}
	if err := repo.Create(ctx, b, []uint{f.genres[0].ID}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Delete(ctx, b.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var links int64
	db.Table("book_genres").Where("book_id = ?", b.ID).Count(&links)
	if links != 0 {
		t.Errorf("book_genres rows = %d; want 0", links)
	}
	var genres int64
	db.Model(&domain.Genre{}).Count(&genres)
	if genres != 2 {
		t.Errorf("genres = %d; deleting a book must keep its genres", genres)
	}
	if err := repo.Delete(ctx, b.ID); !domain.IsNotFound(err) {
		t.Errorf("second Delete error = %v; want not found", err)
	}
}
