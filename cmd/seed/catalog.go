package main

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/simp-lee/bookshelf/internal/domain"
)

func init() {
	registerSeeder(genreSeeder{})
	registerSeeder(authorSeeder{})
	registerSeeder(bookSeeder{})
}

var sampleGenres = []domain.Genre{
	{Name: "Fantasy", Description: "Magic, myth and other worlds."},
	{Name: "Science Fiction", Description: "Speculative futures and technology."},
	{Name: "Mystery", Description: "Crimes, puzzles and detectives."},
	{Name: "Classic", Description: "Works that have stood the test of time."},
}

var sampleAuthors = []domain.Author{
	{Name: "Ursula K. Le Guin", Bio: "American author of Earthsea and the Hainish Cycle."},
	{Name: "Isaac Asimov", Bio: "Prolific writer of science fiction and popular science."},
	{Name: "Agatha Christie", Bio: "English writer known for her detective novels."},
	{Name: "Mary Shelley", Bio: "English novelist, author of Frankenstein."},
}

type sampleBook struct {
	Title  string
	ISBN   string
	Year   int
	Author string
	Genres []string
}

var sampleBooks = []sampleBook{
	{"A Wizard of Earthsea", "9780547773742", 1968, "Ursula K. Le Guin", []string{"Fantasy", "Classic"}},
	{"The Left Hand of Darkness", "9780441478125", 1969, "Ursula K. Le Guin", []string{"Science Fiction"}},
	{"Foundation", "9780553293357", 1951, "Isaac Asimov", []string{"Science Fiction", "Classic"}},
	{"I, Robot", "9780553382563", 1950, "Isaac Asimov", []string{"Science Fiction"}},
	{"Murder on the Orient Express", "9780062693662", 1934, "Agatha Christie", []string{"Mystery", "Classic"}},
	{"Frankenstein", "9780486282114", 1818, "Mary Shelley", []string{"Science Fiction", "Classic"}},
}

type genreSeeder struct{}

func (genreSeeder) Name() string        { return "genres" }
func (genreSeeder) Description() string { return "Seeds the sample genres" }

func (genreSeeder) Seed(ctx context.Context, tx *gorm.DB) error {
	for _, g := range sampleGenres {
		g := g
		if err := tx.WithContext(ctx).Where(domain.Genre{Name: g.Name}).Attrs(domain.Genre{Description: g.Description}).FirstOrCreate(&g).Error; err != nil {
			return fmt.Errorf("genre %q: %w", g.Name, err)
		}
	}
	return nil
}

type authorSeeder struct{}

func (authorSeeder) Name() string        { return "authors" }
func (authorSeeder) Description() string { return "Seeds the sample authors" }

func (authorSeeder) Seed(ctx context.Context, tx *gorm.DB) error {
	for _, a := range sampleAuthors {
		a := a
		if err := tx.WithContext(ctx).Where(domain.Author{Name: a.Name}).Attrs(domain.Author{Bio: a.Bio}).FirstOrCreate(&a).Error; err != nil {
			return fmt.Errorf("author %q: %w", a.Name, err)
		}
	}
	return nil
}

type bookSeeder struct{}

func (bookSeeder) Name() string        { return "books" }
func (bookSeeder) Description() string { return "Seeds sample books; needs the genres and authors seeders" }

func (bookSeeder) Seed(ctx context.Context, tx *gorm.DB) error {
	tx = tx.WithContext(ctx)
	for _, sb := range sampleBooks {
		var author domain.Author
		if err := tx.Where("name = ?", sb.Author).First(&author).Error; err != nil {
			return fmt.Errorf("book %q: author %q: %w", sb.Title, sb.Author, err)
		}

		var genres []domain.Genre
		if err := tx.Where("name IN ?", sb.Genres).Find(&genres).Error; err != nil {
			return fmt.Errorf("book %q: genres: %w", sb.Title, err)
		}
		if len(genres) != len(sb.Genres) {
			return fmt.Errorf("book %q: found %d of %d genres", sb.Title, len(genres), len(sb.Genres))
		}

		isbn := sb.ISBN
		var existing int64
		if err := tx.Model(&domain.Book{}).Where("isbn = ?", isbn).Count(&existing).Error; err != nil {
			return fmt.Errorf("book %q: %w", sb.Title, err)
		}
		if existing > 0 {
			continue
		}

		book := domain.Book{
			Title:         sb.Title,
			ISBN:          &isbn,
			PublishedYear: sb.Year,
			AuthorID:      author.ID,
			Genres:        genres,
		}
		if err := tx.Create(&book).Error; err != nil {
			return fmt.Errorf("book %q: %w", sb.Title, err)
		}
	}
	return nil
}
