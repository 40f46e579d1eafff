package dto

import "route-planner-service/internal/domain"

// OptimizeRequest mirrors the planning form. PackageCounts with one entry
// per address marks pre-grouped input coming from validation. Coords entries
// are [lat, lon] or null.
type OptimizeRequest struct {
	Addresses      []string    `json:"addresses"`
	ClientNames    []string    `json:"client_names"`
	StartAddress   string      `json:"start_address"`
	Coords         [][]float64 `json:"coords"`
	PackageCounts  []int       `json:"package_counts"`
	AllClientNames [][]string  `json:"all_client_names"`
	NumVehicles    int         `json:"num_vehicles"`
}

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type StopResponse struct {
	Order          int      `json:"order"`
	Address        string   `json:"address"`
	Label          string   `json:"label"`
	ClientName     string   `json:"client_name"`
	ClientNames    []string `json:"client_names"`
	Type           string   `json:"type"`
	Lat            float64  `json:"lat"`
	Lon            float64  `json:"lon"`
	DistanceMeters float64  `json:"distance_meters"`
	GeocodeFailed  bool     `json:"geocode_failed"`
	PackageCount   int      `json:"package_count"`
}

type SummaryResponse struct {
	TotalStops           int     `json:"total_stops"`
	TotalPackages        int     `json:"total_packages"`
	TotalDistanceM       float64 `json:"total_distance_m"`
	TotalDistanceDisplay string  `json:"total_distance_display"`
	ComputingTimeMs      float64 `json:"computing_time_ms"`
}

type StepResponse struct {
	Text      string      `json:"text"`
	DistanceM float64     `json:"distance_m"`
	Location  *Coordinate `json:"location"`
}

// RouteResponse is one vehicle's route. RouteIndex and TotalRoutes are set
// only inside a multi-route envelope.
type RouteResponse struct {
	Success     bool            `json:"success"`
	Summary     SummaryResponse `json:"summary"`
	Stops       []StopResponse  `json:"stops"`
	Geometry    domain.Geometry `json:"geometry"`
	Steps       []StepResponse  `json:"steps"`
	RouteIndex  *int            `json:"route_index,omitempty"`
	TotalRoutes *int            `json:"total_routes,omitempty"`
}

type MultiRouteResponse struct {
	Success     bool                 `json:"success"`
	Routes      []RouteResponse      `json:"routes"`
	TotalRoutes int                  `json:"total_routes"`
	Failed      []FailedStopResponse `json:"failed"`
}

type FailedStopResponse struct {
	Address      string   `json:"address"`
	ClientNames  []string `json:"client_names"`
	PackageCount int      `json:"package_count"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Detail  string `json:"detail,omitempty"`
}
