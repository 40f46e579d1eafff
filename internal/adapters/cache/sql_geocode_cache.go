package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"
	"strings"

	"go.uber.org/zap"
)

// SQLGeocodeCache is a SQL-backed shared geocode cache. Unresolved entries
// are stored with resolved=false so failures stay memoized across restarts.
type SQLGeocodeCache struct {
	DB     *sql.DB
	logger *zap.Logger
}

func NewSQLGeocodeCache(db *sql.DB, logger *zap.Logger) *SQLGeocodeCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLGeocodeCache{DB: db, logger: logger}
}

func (s *SQLGeocodeCache) Get(ctx context.Context, key string) (_ ports.GeocodeEntry, _ bool, err error) {
	defer obs.Time(ctx, s.logger, "geocode.cache.sql.get")(&err)

	if s.DB == nil {
		return ports.GeocodeEntry{}, false, errors.New("geocode cache: db is nil")
	}

	q := `
	SELECT resolved, lat, lon
	FROM geocode_cache
	WHERE address_key = $1;
	`

	var resolved bool
	var lat, lon float64
	err = s.DB.QueryRowContext(ctx, q, key).Scan(&resolved, &lat, &lon)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.GeocodeEntry{}, false, nil
	}
	if err != nil {
		return ports.GeocodeEntry{}, false, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}

	return ports.GeocodeEntry{Resolved: resolved, Coord: domain.Coordinates{Lat: lat, Lon: lon}}, true, nil
}

// Set stores one address key -> result mapping.
func (s *SQLGeocodeCache) Set(ctx context.Context, key string, entry ports.GeocodeEntry) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("insert geocode cache: empty address key")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO geocode_cache (address_key, resolved, lat, lon)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (address_key) DO UPDATE
	SET resolved = EXCLUDED.resolved,
		lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		updated_at = now();
	`, key, entry.Resolved, entry.Coord.Lat, entry.Coord.Lon)
	if err != nil {
		return fmt.Errorf("insert geocode cache key=%q: %w", key, err)
	}
	return nil
}

// Clear removes every cached result.
func (s *SQLGeocodeCache) Clear(ctx context.Context) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM geocode_cache;`); err != nil {
		return fmt.Errorf("clear geocode cache: %w", err)
	}
	return nil
}
