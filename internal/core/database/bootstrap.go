package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"
)

// schemaVersion is the row initdb.sql inserts into specta_meta. Bump both
// together when the records table changes shape.
const schemaVersion = 1

const bootstrapTimeout = 3 * time.Minute

//go:embed scripts/initdb.sql
var bootstrapFS embed.FS

// EnsureBootstrapped creates the vector extension and the users, documents and
// spec_records tables on a fresh database. It is a no-op once specta_meta
// records schemaVersion.
func EnsureBootstrapped(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
	defer cancel()

	current, err := schemaCurrent(ctx, db)
	if err != nil {
		return err
	}
	if current {
		return nil
	}
	return applySchema(ctx, db)
}

// schemaCurrent reports whether specta_meta exists and holds schemaVersion.
func schemaCurrent(ctx context.Context, db *sql.DB) (bool, error) {
	var hasMeta bool
	if err := db.QueryRowContext(ctx, `SELECT to_regclass('specta_meta') IS NOT NULL`).Scan(&hasMeta); err != nil {
		return false, fmt.Errorf("schema meta lookup: %w", err)
	}
	if !hasMeta {
		return false, nil
	}

	var hasVersion bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM specta_meta WHERE version = $1)`, schemaVersion).Scan(&hasVersion)
	if err != nil {
		return false, fmt.Errorf("schema version %d lookup: %w", schemaVersion, err)
	}
	return hasVersion, nil
}

func applySchema(ctx context.Context, db *sql.DB) error {
	script, err := bootstrapFS.ReadFile("scripts/initdb.sql")
	if err != nil {
		return fmt.Errorf("read initdb.sql: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, string(script)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("apply schema v%d: %w", schemaVersion, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema v%d: %w", schemaVersion, err)
	}
	return nil
}
