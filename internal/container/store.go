package container

import (
	"context"
	"fmt"

	"eventshuffle/internal/config"
	"eventshuffle/internal/repository"
	"eventshuffle/pkg/database"
)

// Store is the database selected by STORE_DRIVER. Exactly one of Postgres and SQLite is set.
type Store struct {
	Driver   string
	Postgres *database.PostgresDB
	SQLite   *database.SQLiteDB
}

// OpenStore connects to the configured database
func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &Store{Driver: cfg.StoreDriver, Postgres: db}, nil
	case config.DriverSQLite:
		db, err := database.NewSQLiteDB(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Store{Driver: cfg.StoreDriver, SQLite: db}, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

// EventRepository returns the repository backed by this store
func (s *Store) EventRepository() repository.EventRepository {
	if s.Postgres != nil {
		return repository.NewEventRepository(s.Postgres)
	}
	return repository.NewSQLiteEventRepository(s.SQLite)
}

// Migrate applies pending migrations and returns the files that ran
func (s *Store) Migrate(ctx context.Context) ([]string, error) {
	if s.Postgres != nil {
		return s.Postgres.RunMigrations(ctx)
	}
	return s.SQLite.RunMigrations(ctx)
}

// Drop removes every table, including the migration history
func (s *Store) Drop(ctx context.Context) error {
	if s.Postgres != nil {
		return s.Postgres.DropAll(ctx)
	}
	return s.SQLite.DropAll(ctx)
}

// Health pings the database
func (s *Store) Health(ctx context.Context) error {
	if s.Postgres != nil {
		return s.Postgres.Health(ctx)
	}
	return s.SQLite.Health(ctx)
}

// Close releases the connection pool
func (s *Store) Close() error {
	if s.Postgres != nil {
		s.Postgres.Close()
		return nil
	}
	if s.SQLite != nil {
		return s.SQLite.Close()
	}
	return nil
}
