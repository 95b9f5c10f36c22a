package config

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/simp-lee/bookshelf/internal/domain"
)

func discardLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: level}))
}

func sqliteConfig(t *testing.T, pool PoolConfig) *DatabaseConfig {
	t.Helper()
	return &DatabaseConfig{
		Driver: "sqlite",
		SQLite: SQLiteConfig{Path: filepath.Join(t.TempDir(), "nested", "catalog.db")},
		Pool:   pool,
	}
}

func TestSetupDatabase_SQLite(t *testing.T) {
	db, err := SetupDatabase(sqliteConfig(t, PoolConfig{MaxIdleConns: 5, MaxOpenConns: 50, ConnMaxLifetime: "30m"}), discardLogger(slog.LevelDebug))
	if err != nil {
		t.Fatalf("SetupDatabase() error = %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB() error = %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	if err := sqlDB.Ping(); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if got := sqlDB.Stats().MaxOpenConnections; got != 50 {
		t.Errorf("MaxOpenConnections = %d; want 50", got)
	}
}

func TestSetupDatabase_PoolDefaults(t *testing.T) {
	db, err := SetupDatabase(sqliteConfig(t, PoolConfig{}), discardLogger(slog.LevelInfo))
	if err != nil {
		t.Fatalf("SetupDatabase() error = %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })

	if got := sqlDB.Stats().MaxOpenConnections; got != 100 {
		t.Errorf("MaxOpenConnections = %d; want 100 (default)", got)
	}
}

func TestSetupDatabase_Errors(t *testing.T) {
	tests := []struct {
		name        string
		cfg         func(t *testing.T) *DatabaseConfig
		logger      *slog.Logger
		wantContain string
	}{
		{"nil config", func(*testing.T) *DatabaseConfig { return nil }, discardLogger(slog.LevelInfo), "database config is nil"},
		{"nil logger", func(t *testing.T) *DatabaseConfig { return sqliteConfig(t, PoolConfig{}) }, nil, "logger is nil"},
		{"unsupported driver", func(*testing.T) *DatabaseConfig { return &DatabaseConfig{Driver: "mysql"} }, discardLogger(slog.LevelInfo), "unsupported database driver: mysql"},
		{"invalid lifetime", func(t *testing.T) *DatabaseConfig {
			return sqliteConfig(t, PoolConfig{ConnMaxLifetime: "forever"})
		}, discardLogger(slog.LevelInfo), "conn_max_lifetime"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SetupDatabase(tt.cfg(t), tt.logger)
			if err == nil {
				t.Fatal("SetupDatabase() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantContain) {
				t.Errorf("error = %q; want it to contain %q", err.Error(), tt.wantContain)
			}
		})
	}
}

func TestMigrate_CreatesCatalogTables(t *testing.T) {
	db, err := SetupDatabase(sqliteConfig(t, PoolConfig{}), discardLogger(slog.LevelInfo))
	if err != nil {
		t.Fatalf("SetupDatabase() error = %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })

	if err := Migrate(db, discardLogger(slog.LevelInfo)); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	for _, model := range []any{&domain.Author{}, &domain.Genre{}, &domain.Book{}} {
		if !db.Migrator().HasTable(model) {
			t.Errorf("table for %T not created", model)
		}
	}
	if !db.Migrator().HasTable("book_genres") {
		t.Error("join table book_genres not created")
	}
}

func TestMigrate_NilDB(t *testing.T) {
	if err := Migrate(nil, nil); err == nil {
		t.Fatal("Migrate(nil) expected error")
	}
}

func TestBuildPostgresDSN(t *testing.T) {
	got := buildPostgresDSN(&PostgresConfig{
		Host: "db", Port: 5432, User: "app", Password: "p@ss", DBName: "catalog", SSLMode: "require",
	})
	want := "postgres://app:p%40ss@db:5432/catalog?sslmode=require"
	if got != want {
		t.Errorf("buildPostgresDSN() = %q; want %q", got, want)
	}
	if buildPostgresDSN(nil) != "" {
		t.Error("buildPostgresDSN(nil) should be empty")
	}
}
