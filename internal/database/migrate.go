package database

import (
	"fmt"
	"io/fs"
	"log/slog"
	"sort"

	"github.com/jmoiron/sqlx"

	"github.com/acuellar/estudiobot/schemas"
)

// Migrate applies the embedded schema migrations in filename order. All
// statements are idempotent, so running it on every startup is safe.
func Migrate(db *sqlx.DB) error {
	entries, err := fs.ReadDir(schemas.Migrations, "migrations")
	if err != nil {
		return fmt.Errorf("fs.ReadDir > %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		statement, err := fs.ReadFile(schemas.Migrations, "migrations/"+name)
		if err != nil {
			return fmt.Errorf("fs.ReadFile(%s) > %w", name, err)
		}
		if _, err := db.Exec(string(statement)); err != nil {
			return fmt.Errorf("db.Exec(%s) > %w", name, err)
		}
		slog.Debug("applied schema migration", "file", name)
	}
	return nil
}
