package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"route-planner-service/internal/api/dto"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// GeocodeAdmin is the operator surface of the geocoding resolver.
type GeocodeAdmin interface {
	Resolve(ctx context.Context, address string) (domain.Coordinates, bool, error)
	AddOverride(ctx context.Context, address string, coord domain.Coordinates) error
	Overrides() map[string]ports.Override
	ClearCache(ctx context.Context) (int, error)
}

type GeocodeHandler struct {
	Admin  GeocodeAdmin
	Logger *zap.Logger
}

// Lookup resolves a single address through the full cascade.
func (h *GeocodeHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.Logger, http.MethodGet) {
		return
	}

	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		writeError(w, r, h.Logger, http.StatusBadRequest, "address is required", "")
		return
	}

	coord, ok, err := h.Admin.Resolve(r.Context(), address)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	if !ok {
		writeServiceError(w, r, h.Logger, fmt.Errorf("lookup %q: %w", address, domain.ErrGeocodeUnresolved))
		return
	}

	writeJSON(w, r, h.Logger, http.StatusOK, dto.GeocodeResponse{Address: address, Lat: coord.Lat, Lon: coord.Lon})
}

// Overrides lists the override table on GET and adds one entry on POST.
func (h *GeocodeHandler) Overrides(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listOverrides(w, r)
	case http.MethodPost:
		h.addOverride(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, r, h.Logger, http.StatusMethodNotAllowed, "method not allowed", "")
	}
}

func (h *GeocodeHandler) listOverrides(w http.ResponseWriter, r *http.Request) {
	table := h.Admin.Overrides()

	entries := make([]dto.OverrideEntry, 0, len(table))
	for key, o := range table {
		entries = append(entries, dto.OverrideEntry{Key: key, Address: o.Original, Lat: o.Coord.Lat, Lon: o.Coord.Lon})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	writeJSON(w, r, h.Logger, http.StatusOK, dto.OverrideListResponse{Count: len(entries), Overrides: entries})
}

// addOverride pins an address to a manual coordinate.
func (h *GeocodeHandler) addOverride(w http.ResponseWriter, r *http.Request) {

	var req dto.OverrideRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Logger, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Lat == nil || req.Lon == nil {
		writeError(w, r, h.Logger, http.StatusBadRequest, "lat and lon are required", "")
		return
	}

	coord := domain.Coordinates{Lat: *req.Lat, Lon: *req.Lon}
	persisted := true

	if err := h.Admin.AddOverride(r.Context(), req.Address, coord); err != nil {
		if !errors.Is(err, domain.ErrOverrideStore) {
			writeServiceError(w, r, h.Logger, err)
			return
		}
		h.Logger.Error("override not persisted",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.Error(err),
		)
		persisted = false
	}

	writeJSON(w, r, h.Logger, http.StatusOK, dto.OverrideResponse{
		Success:   true,
		Address:   strings.TrimSpace(req.Address),
		Lat:       coord.Lat,
		Lon:       coord.Lon,
		Persisted: persisted,
	})
}

// ClearCache drops every memoized geocode result; overrides stay.
func (h *GeocodeHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.Logger, http.MethodDelete) {
		return
	}

	n, err := h.Admin.ClearCache(r.Context())
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}

	writeJSON(w, r, h.Logger, http.StatusOK, dto.CacheClearResponse{Success: true, Cleared: n})
}
