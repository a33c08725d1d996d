package database

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// migration is one embedded SQL file
type migration struct {
	Filename string
	SQL      string
}

// loadMigrations returns the embedded migrations for a dialect in filename order
func loadMigrations(dialect string) ([]migration, error) {
	dir := "migrations/" + dialect
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var filenames []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			filenames = append(filenames, entry.Name())
		}
	}
	sort.Strings(filenames)

	migrations := make([]migration, 0, len(filenames))
	for _, filename := range filenames {
		content, err := fs.ReadFile(migrationsFS, dir+"/"+filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", filename, err)
		}
		migrations = append(migrations, migration{Filename: filename, SQL: string(content)})
	}

	return migrations, nil
}

// dropStatements removes every table the migrations create, children first
var dropStatements = []string{
	`DROP TABLE IF EXISTS votes`,
	`DROP TABLE IF EXISTS event_participants`,
	`DROP TABLE IF EXISTS event_dates`,
	`DROP TABLE IF EXISTS events`,
	`DROP TABLE IF EXISTS schema_migrations`,
}
