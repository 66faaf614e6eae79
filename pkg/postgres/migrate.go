package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // postgres:// driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // file:// source
)

// ErrDirtySchema means an earlier migration failed half way and the schema
// needs a manual `migrate force` before the server can start.
var ErrDirtySchema = errors.New("postgres: schema is dirty")

// RunMigrations applies every pending migration from source (for example
// "file://migrations") and returns the schema version now in place. An
// up-to-date schema is not an error.
func RunMigrations(dsn, source string) (uint, error) {
	m, err := migrate.New(source, dsn)
	if err != nil {
		return 0, fmt.Errorf("postgres: open migrations %s: %w", source, err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		var dirty migrate.ErrDirty
		if errors.As(err, &dirty) {
			return uint(dirty.Version), fmt.Errorf("%w at version %d", ErrDirtySchema, dirty.Version)
		}
		return 0, fmt.Errorf("postgres: migrate up: %w", err)
	}

	version, _, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("postgres: read schema version: %w", err)
	}
	return version, nil
}
