package dto

import "route-planner-service/internal/domain"

type OverrideRequest struct {
	Address string   `json:"address"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

// OverrideResponse reports Persisted=false when the override is active in
// memory but could not be written to durable storage.
type OverrideResponse struct {
	Success   bool    `json:"success"`
	Address   string  `json:"address"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Persisted bool    `json:"persisted"`
}

type OverrideEntry struct {
	Key     string  `json:"key"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type OverrideListResponse struct {
	Count     int             `json:"count"`
	Overrides []OverrideEntry `json:"overrides"`
}

type GeocodeResponse struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type CacheClearResponse struct {
	Success bool `json:"success"`
	Cleared int  `json:"cleared"`
}

// SegmentResponse carries a null geometry and an error message when the
// routing engine could not answer.
type SegmentResponse struct {
	Geometry  *domain.Geometry `json:"geometry"`
	DistanceM float64          `json:"distance_m"`
	Error     string           `json:"error,omitempty"`
}

type ServiceStatus struct {
	URL    string `json:"url"`
	Status string `json:"status"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
