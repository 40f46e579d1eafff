package handlers

import (
	"fmt"
	"net/http"
	"route-planner-service/internal/api/dto"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/services"
	"strconv"

	"go.uber.org/zap"
)

type SegmentHandler struct {
	Segments *services.SegmentService
	Logger   *zap.Logger
}

// Segment returns the road path between two points. Engine failures are
// reported inside a 200 body so the driver app can fall back to a straight line.
func (h *SegmentHandler) Segment(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.Logger, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	vals := make([]float64, 0, 4)
	for _, name := range []string{"origin_lat", "origin_lon", "dest_lat", "dest_lon"} {
		v, err := strconv.ParseFloat(q.Get(name), 64)
		if err != nil {
			writeError(w, r, h.Logger, http.StatusBadRequest, fmt.Sprintf("%s must be a number", name), "")
			return
		}
		vals = append(vals, v)
	}

	from := domain.Coordinates{Lat: vals[0], Lon: vals[1]}
	to := domain.Coordinates{Lat: vals[2], Lon: vals[3]}

	seg, err := h.Segments.Segment(r.Context(), from, to)
	if err != nil {
		writeJSON(w, r, h.Logger, http.StatusOK, dto.SegmentResponse{Error: err.Error()})
		return
	}

	geom := seg.Geometry
	writeJSON(w, r, h.Logger, http.StatusOK, dto.SegmentResponse{Geometry: &geom, DistanceM: seg.DistanceMeters})
}
