package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
)

// InitSchema creates the override and shared geocode cache tables in Postgres.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createOverridesQuery := `
	CREATE TABLE IF NOT EXISTS geocode_overrides (
		address_key TEXT PRIMARY KEY,
		original TEXT NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address_key TEXT PRIMARY KEY,
		resolved BOOLEAN NOT NULL,
		lat DOUBLE PRECISION NOT NULL DEFAULT 0,
		lon DOUBLE PRECISION NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	statements := []string{
		createOverridesQuery,
		createGeocodeCacheQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// SeedOverridesFromJSON upserts every override in a JSON override file
// (the same shape FileOverrideStore writes). It returns the number of rows.
func SeedOverridesFromJSON(ctx context.Context, store *SQLOverrideStore, jsonPath string) (int, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed overrides: read %q: %w", jsonPath, err)
	}

	overrides, err := DecodeOverrides(data)
	if err != nil {
		return 0, fmt.Errorf("seed overrides: %w", err)
	}

	if err := store.UpsertMany(ctx, overrides); err != nil {
		return 0, fmt.Errorf("seed overrides: %w", err)
	}

	return len(overrides), nil
}
