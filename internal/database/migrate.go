package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func newProvider(db *DB) (*goose.Provider, error) {
	dialect := goose.DialectSQLite3
	if db.Driver == DriverPostgres {
		dialect = goose.DialectPostgres
	}

	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db.DB, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// Migrate applies every pending schema migration embedded in the binary.
func Migrate(ctx context.Context, db *DB) error {
	provider, err := newProvider(db)
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	for _, r := range results {
		log.Printf("Applied migration %s (%s)", r.Source.Path, r.Duration)
	}

	return nil
}

// SchemaVersion reports the applied schema version and whether embedded migrations are pending.
func SchemaVersion(ctx context.Context, db *DB) (version int64, pending bool, err error) {
	provider, err := newProvider(db)
	if err != nil {
		return 0, false, err
	}

	version, err = provider.GetDBVersion(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}

	pending, err = provider.HasPending(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("failed to check pending migrations: %w", err)
	}

	return version, pending, nil
}
