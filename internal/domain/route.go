package domain

type StopType string

const (
	StopTypeOrigin StopType = "origin"
	StopTypeStop   StopType = "stop"
)

// Represents a single stop in a delivery route.
// A Stop merges one or more client identities sharing a physical address.
// Stops that could not be geocoded carry GeocodeFailed and sit at the
// configured town center.
type Stop struct {
	Order          int
	Address        string
	Label          string
	ClientName     string
	ClientNames    []string
	Type           StopType
	Coordinates    Coordinates
	DistanceMeters float64
	PackageCount   int
	GeocodeFailed  bool
}

// GeoJSON LineString of the road path.
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

// One turn-by-turn instruction.
type NavigationStep struct {
	Text           string
	DistanceMeters float64
	Location       *Coordinates
}

// Represents the planned delivery route for a single vehicle.
// Stops start at the origin (Order 0). Travel durations are deliberately
// absent: dwell time at stops is not modeled.
type Route struct {
	VehicleIndex        int
	Stops               []Stop
	TotalDistanceMeters float64
	TotalPackages       int
	Geometry            Geometry
	Steps               []NavigationStep
	ComputingTimeMs     float64
}

// DeliveryStops counts the stops that are not the origin.
func (r *Route) DeliveryStops() int {
	n := 0
	for _, s := range r.Stops {
		if s.Type == StopTypeStop {
			n++
		}
	}
	return n
}

// RoutePlan is the outcome of one planning request: one route per vehicle
// that produced a detailed route, plus the groups that failed geocoding.
// PlannedRoutes counts the solver's routes, including any dropped later.
type RoutePlan struct {
	Routes        []*Route
	Failed        []AddressGroup
	Multi         bool
	PlannedRoutes int
}
