package ports

import (
	"context"
	"route-planner-service/internal/domain"
)

// GeocodeEntry is a memoized resolution; Resolved=false memoizes a failure.
type GeocodeEntry struct {
	Resolved bool
	Coord    domain.Coordinates
}

// Optional cache shared between processes, consulted after the process
// cache and before any network call.
type GeocodeCache interface {
	Get(ctx context.Context, key string) (GeocodeEntry, bool, error)
	Set(ctx context.Context, key string, entry GeocodeEntry) error
	Clear(ctx context.Context) error
}
