package ports

import (
	"context"
	"route-planner-service/internal/domain"
)

// Override is an operator-supplied coordinate for an address the cascade
// cannot reliably resolve. Key is the lower-cased, trimmed address.
type Override struct {
	Key      string
	Original string
	Coord    domain.Coordinates
}

// Durable key->coordinate storage, read fully at startup and rewritten in
// full on every addition.
type OverrideStore interface {
	LoadAll(ctx context.Context) (map[string]Override, error)
	SaveAll(ctx context.Context, overrides map[string]Override) error
}
