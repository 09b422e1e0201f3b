package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// DB is the queue store adapter backed by SQLite.
type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection serialises writers and keeps :memory: databases coherent
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	logger.Info().Str("path", path).Msg("database initialized")

	return &DB{DB: sqlDB, logger: logger}, nil
}

func dsn(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_busy_timeout=5000"
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS clients (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            phone TEXT UNIQUE NOT NULL,
            created_at DATETIME NOT NULL,
            last_seen_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS queue_entries (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            phone TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'waiting',
            priority INTEGER DEFAULT 0,
            created_at DATETIME NOT NULL,
            notified_at DATETIME,
            completed_at DATETIME
        )`,
		`CREATE TABLE IF NOT EXISTS settings (
            id INTEGER PRIMARY KEY,
            bot_active BOOLEAN NOT NULL DEFAULT 1,
            admin_code TEXT NOT NULL DEFAULT '',
            updated_at DATETIME
        )`,

		`CREATE INDEX IF NOT EXISTS idx_queue_entries_status ON queue_entries(status)`,
		`CREATE INDEX IF NOT EXISTS idx_queue_entries_phone ON queue_entries(phone)`,
		`CREATE INDEX IF NOT EXISTS idx_queue_entries_created_at ON queue_entries(created_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// Migrate creates the schema and seeds the settings row. NewDB already creates
// tables; Migrate is the explicit entry point for the migrate command.
func (db *DB) Migrate(ctx context.Context, bootstrapAdminCode string) error {
	if err := createTables(db.DB); err != nil {
		return err
	}
	return db.SeedSettings(ctx, bootstrapAdminCode)
}

// now is the store clock. Times are kept in UTC so text comparisons in SQLite order correctly.
func now() time.Time {
	return time.Now().UTC()
}
