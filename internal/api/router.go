package api

import (
	"net/http"
	"route-planner-service/internal/api/handlers"
	"route-planner-service/internal/services"

	"go.uber.org/zap"
)

// Deps are the services the HTTP surface is built on.
type Deps struct {
	Planner   *services.Planner
	Validator *services.Validator
	Segments  *services.SegmentService
	Status    *services.StatusChecker
	Geocode   handlers.GeocodeAdmin
	Version   string
	Logger    *zap.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()

	system := &handlers.SystemHandler{Version: d.Version, Status: d.Status, Logger: logger}
	optimize := &handlers.OptimizeHandler{Planner: d.Planner, Logger: logger}
	validation := &handlers.ValidationHandler{Validator: d.Validator, Logger: logger}
	geocode := &handlers.GeocodeHandler{Admin: d.Geocode, Logger: logger}
	segment := &handlers.SegmentHandler{Segments: d.Segments, Logger: logger}

	mux.HandleFunc("/health", system.Health)
	mux.HandleFunc("/api/services/status", system.Services)
	mux.HandleFunc("/api/optimize", optimize.Optimize)
	mux.HandleFunc("/api/validation/start", validation.Start)
	mux.HandleFunc("/api/geocode", geocode.Lookup)
	mux.HandleFunc("/api/geocode/overrides", geocode.Overrides)
	mux.HandleFunc("/api/geocode/cache", geocode.ClearCache)
	mux.HandleFunc("/api/route-segment", segment.Segment)

	return requestMiddleware(logger, mux)
}
