package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/simp-lee/bookshelf/internal/config"
)

func main() {
	var (
		configPath = flag.String("config", "configs/config.yaml", "path to configuration file")
		envFile    = flag.String("env", ".env", "dotenv file loaded before the config; missing files are ignored")
		all        = flag.Bool("all", false, "run all seeders")
		only       = flag.String("only", "", "run a single seeder by name")
		list       = flag.Bool("list", false, "list available seeders")
	)
	flag.Parse()

	if *list {
		fmt.Println("Available seeders:")
		for _, s := range listSeeders() {
			fmt.Printf("  - %s: %s\n", s.Name(), s.Description())
		}
		return
	}

	if !*all && *only == "" {
		fmt.Println("usage: seed -config <path> [-all|-only <name>] [-list]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	var names []string
	if *only != "" {
		names = []string{*only}
	}
	if err := run(*envFile, *configPath, names); err != nil {
		log.Fatal(err)
	}
	fmt.Println("seeding completed successfully")
}

// run opens the configured database, migrates it and runs the named seeders,
// or all of them when names is empty. Deferred cleanup runs before main
// exits on error.
func run(envFile, configPath string, names []string) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	lg, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}
	defer lg.Close()

	db, err := config.SetupDatabase(&cfg.Database, lg.Logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := config.Migrate(db, lg.Logger); err != nil {
		lg.Logger.Error("migration failed", "error", err)
		return fmt.Errorf("migration failed: %w", err)
	}

	if err := runSeeders(context.Background(), db, names...); err != nil {
		lg.Logger.Error("seeding failed", "error", err)
		return fmt.Errorf("seeding failed: %w", err)
	}
	return nil
}
