package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
	"strings"
)

// SQLOverrideStore keeps the override table in Postgres.
type SQLOverrideStore struct {
	DB *sql.DB
}

func NewSQLOverrideStore(db *sql.DB) *SQLOverrideStore {
	return &SQLOverrideStore{DB: db}
}

// Return every stored override keyed by address key.
func (s *SQLOverrideStore) LoadAll(ctx context.Context) (map[string]ports.Override, error) {
	if s.DB == nil {
		return nil, errors.New("sql override store: DB is nil")
	}

	query := `
	SELECT
		address_key,
		original,
		lat,
		lon
	FROM geocode_overrides
	ORDER BY address_key;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load overrides: query geocode_overrides table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]ports.Override)
	for rows.Next() {
		var o ports.Override
		if err := rows.Scan(&o.Key, &o.Original, &o.Coord.Lat, &o.Coord.Lon); err != nil {
			return nil, fmt.Errorf("load overrides: scan row: %w", err)
		}
		out[o.Key] = o
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load overrides: row iteration: %w", err)
	}

	return out, nil
}

// SaveAll replaces the whole table in one transaction.
func (s *SQLOverrideStore) SaveAll(ctx context.Context, overrides map[string]ports.Override) error {
	return s.write(ctx, overrides, true)
}

// UpsertMany inserts or updates the given overrides, leaving others intact.
func (s *SQLOverrideStore) UpsertMany(ctx context.Context, overrides map[string]ports.Override) error {
	return s.write(ctx, overrides, false)
}

// Upsert stores a single override.
func (s *SQLOverrideStore) Upsert(ctx context.Context, address string, coord domain.Coordinates) error {
	key := strings.ToLower(strings.TrimSpace(address))
	return s.UpsertMany(ctx, map[string]ports.Override{
		key: {Key: key, Original: strings.TrimSpace(address), Coord: coord},
	})
}

func (s *SQLOverrideStore) write(ctx context.Context, overrides map[string]ports.Override, replace bool) error {
	if s.DB == nil {
		return errors.New("sql override store: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save overrides: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM geocode_overrides;`); err != nil {
			return fmt.Errorf("save overrides: clear table: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO geocode_overrides (address_key, original, lat, lon)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (address_key) DO UPDATE
	SET original = EXCLUDED.original,
		lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		updated_at = now();
	`)
	if err != nil {
		return fmt.Errorf("save overrides: db prepare: %w", err)
	}
	defer stmt.Close()

	for key, o := range overrides {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("save overrides: empty address key")
		}

		if _, err := stmt.ExecContext(ctx, key, o.Original, o.Coord.Lat, o.Coord.Lon); err != nil {
			return fmt.Errorf("save overrides key=%q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save overrides: commit: %w", err)
	}

	return nil
}
