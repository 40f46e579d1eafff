package ports

import (
	"context"
	"route-planner-service/internal/domain"
)

// GeocodeQuery is one outbound search against the geocoding provider.
// A structured query fills Street/City/County/Country; a free-form query
// fills Text. Bounded asks the provider to reject results outside its viewbox.
type GeocodeQuery struct {
	Text       string
	Structured bool
	Street     string
	City       string
	County     string
	Country    string
	Bounded    bool
}

// Contract for text-to-coordinate search.
type Geocoder interface {
	// Search returns the best match, found=false when the provider has no result.
	// A non-nil error means the attempt itself failed (transport, status, decode).
	Search(ctx context.Context, q GeocodeQuery) (coord domain.Coordinates, found bool, err error)
}
