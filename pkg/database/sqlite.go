package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database, used by tests and demos
const MemoryPath = ":memory:"

// SQLiteDB is an embedded single-file store
type SQLiteDB struct {
	DB *sql.DB
}

// NewSQLiteDB opens (creating if needed) the SQLite database at path
func NewSQLiteDB(ctx context.Context, path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite allows one writer at a time and every :memory: connection is a
	// separate database, so everything goes through a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	if path != MemoryPath {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL", "PRAGMA synchronous = NORMAL")
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	return &SQLiteDB{DB: db}, nil
}

// Close closes the database
func (db *SQLiteDB) Close() error {
	if db.DB != nil {
		return db.DB.Close()
	}
	return nil
}

// Health checks the database connection
func (db *SQLiteDB) Health(ctx context.Context) error {
	return db.DB.PingContext(ctx)
}

// RunMigrations executes pending migrations in order, mirroring PostgresDB.RunMigrations
func (db *SQLiteDB) RunMigrations(ctx context.Context) ([]string, error) {
	_, err := db.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	migrations, err := loadMigrations("sqlite")
	if err != nil {
		return nil, err
	}

	var ran []string
	for _, m := range migrations {
		var count int
		if err := db.DB.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM schema_migrations WHERE filename = ?`, m.Filename,
		).Scan(&count); err != nil {
			return ran, fmt.Errorf("failed to check migration %s: %w", m.Filename, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.DB.BeginTx(ctx, nil)
		if err != nil {
			return ran, fmt.Errorf("failed to begin transaction for %s: %w", m.Filename, err)
		}

		if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
			_ = tx.Rollback()
			return ran, fmt.Errorf("failed to execute migration %s: %w", m.Filename, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (filename, applied_at) VALUES (?, ?)`,
			m.Filename, time.Now().UTC().Format(time.RFC3339),
		); err != nil {
			_ = tx.Rollback()
			return ran, fmt.Errorf("failed to record migration %s: %w", m.Filename, err)
		}

		if err := tx.Commit(); err != nil {
			return ran, fmt.Errorf("failed to commit migration %s: %w", m.Filename, err)
		}
		ran = append(ran, m.Filename)
	}

	return ran, nil
}

// DropAll removes every table created by the migrations
func (db *SQLiteDB) DropAll(ctx context.Context) error {
	for _, stmt := range dropStatements {
		if _, err := db.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute %q: %w", stmt, err)
		}
	}
	return nil
}
