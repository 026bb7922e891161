package postgres

import (
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"sort"
)

//go:embed migrations/*.up.sql
var migrationFS embed.FS

// Migrations returns the embedded schema files in apply order
func Migrations() ([]string, error) {
	names, err := fs.Glob(migrationFS, "migrations/*.up.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// WriteMigrations prints the schema without applying it
func WriteMigrations(w io.Writer) error {
	names, err := Migrations()
	if err != nil {
		return err
	}
	for _, name := range names {
		body, err := migrationFS.ReadFile(name)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "-- %s\n%s\n", name, body); err != nil {
			return err
		}
	}
	return nil
}

// Migrate applies every embedded schema file inside a single transaction.
// The files are idempotent so running it twice is harmless.
func (db *DB) Migrate(ctx context.Context) error {
	names, err := Migrations()
	if err != nil {
		return err
	}

	return db.WithTx(ctx, func(ctx context.Context) error {
		for _, name := range names {
			body, err := migrationFS.ReadFile(name)
			if err != nil {
				return err
			}
			db.logger.Infow("applying migration", "file", name)
			if _, err := db.GetQuerier(ctx).ExecContext(ctx, string(body)); err != nil {
				return fmt.Errorf("applying %s: %w", name, err)
			}
		}
		return nil
	})
}
