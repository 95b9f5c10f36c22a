// Package main is the seed command. It fills the catalog tables with sample
// data, running the selected seeders inside one transaction.
package main

import (
	"context"
	"fmt"
	"slices"

	"gorm.io/gorm"

	"github.com/simp-lee/bookshelf/internal/pkg"
)

// Seeder populates the data of one catalog entity.
type Seeder interface {
	Name() string
	Description() string
	// Seed must be idempotent: running it twice leaves the same rows.
	Seed(ctx context.Context, tx *gorm.DB) error
}

// seeders run in registration order, so later seeders may rely on rows
// written by earlier ones.
var seeders []Seeder

func registerSeeder(s Seeder) {
	seeders = append(seeders, s)
}

func getSeeder(name string) (Seeder, bool) {
	i := slices.IndexFunc(seeders, func(s Seeder) bool { return s.Name() == name })
	if i < 0 {
		return nil, false
	}
	return seeders[i], true
}

func listSeeders() []Seeder {
	return slices.Clone(seeders)
}

// runSeeders executes the named seeders, or all of them when names is empty,
// in a single transaction.
func runSeeders(ctx context.Context, db *gorm.DB, names ...string) error {
	selected := seeders
	if len(names) > 0 {
		selected = make([]Seeder, 0, len(names))
		for _, n := range names {
			s, ok := getSeeder(n)
			if !ok {
				return fmt.Errorf("seeder not found: %s", n)
			}
			selected = append(selected, s)
		}
	}

	return pkg.WithTx(ctx, db, func(tx *gorm.DB) error {
		for _, s := range selected {
			if err := s.Seed(ctx, tx); err != nil {
				return fmt.Errorf("seed %s: %w", s.Name(), err)
			}
		}
		return nil
	})
}
