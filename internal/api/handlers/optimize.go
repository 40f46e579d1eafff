package handlers

import (
	"net/http"
	"route-planner-service/internal/api/dto"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/services"
	"strings"

	"go.uber.org/zap"
)

type OptimizeHandler struct {
	Planner *services.Planner
	Logger  *zap.Logger
}

// Optimize plans one route per vehicle from raw or pre-grouped addresses.
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.Logger, http.MethodPost) {
		return
	}

	var req dto.OptimizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Logger, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	plan, err := h.Planner.Plan(r.Context(), planRequestFrom(req))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}

	if !plan.Multi {
		writeJSON(w, r, h.Logger, http.StatusOK, routeResponse(plan.Routes[0]))
		return
	}

	res := dto.MultiRouteResponse{
		Success:     true,
		Routes:      make([]dto.RouteResponse, 0, len(plan.Routes)),
		TotalRoutes: len(plan.Routes),
		Failed:      failedResponses(plan.Failed),
	}
	for _, route := range plan.Routes {
		rr := routeResponse(route)
		idx, total := route.VehicleIndex, plan.PlannedRoutes
		rr.RouteIndex = &idx
		rr.TotalRoutes = &total
		res.Routes = append(res.Routes, rr)
	}

	writeJSON(w, r, h.Logger, http.StatusOK, res)
}

// planRequestFrom aligns the parallel request arrays by address index.
// PackageCounts with one entry per address selects pre-grouped mode.
func planRequestFrom(req dto.OptimizeRequest) services.PlanRequest {
	n := len(req.Addresses)
	out := services.PlanRequest{
		StartAddress: req.StartAddress,
		VehicleCount: req.NumVehicles,
	}

	name := func(i int) string {
		if i < len(req.ClientNames) {
			return strings.TrimSpace(req.ClientNames[i])
		}
		return ""
	}
	coord := func(i int) *domain.Coordinates {
		if len(req.Coords) != n || len(req.Coords[i]) != 2 {
			return nil
		}
		return &domain.Coordinates{Lat: req.Coords[i][0], Lon: req.Coords[i][1]}
	}

	if req.PackageCounts != nil && len(req.PackageCounts) == n {
		out.Groups = make([]domain.AddressGroup, 0, n)
		for i, addr := range req.Addresses {
			names := []string{}
			if len(req.AllClientNames) == n {
				names = append(names, req.AllClientNames[i]...)
			} else if cn := name(i); cn != "" {
				names = []string{cn}
			}
			out.Groups = append(out.Groups, domain.AddressGroup{
				Address:      addr,
				Primary:      name(i),
				ClientNames:  names,
				PackageCount: req.PackageCounts[i],
				Coordinates:  coord(i),
			})
		}
		return out
	}

	out.Rows = make([]domain.RawDeliveryRow, 0, n)
	for i, addr := range req.Addresses {
		out.Rows = append(out.Rows, domain.RawDeliveryRow{
			ClientName:  name(i),
			Address:     addr,
			Coordinates: coord(i),
		})
	}
	return out
}

func routeResponse(route *domain.Route) dto.RouteResponse {
	res := dto.RouteResponse{
		Success: true,
		Summary: dto.SummaryResponse{
			TotalStops:           route.DeliveryStops(),
			TotalPackages:        route.TotalPackages,
			TotalDistanceM:       route.TotalDistanceMeters,
			TotalDistanceDisplay: domain.FormatDistance(route.TotalDistanceMeters),
			ComputingTimeMs:      route.ComputingTimeMs,
		},
		Stops:    make([]dto.StopResponse, 0, len(route.Stops)),
		Geometry: route.Geometry,
		Steps:    make([]dto.StepResponse, 0, len(route.Steps)),
	}

	for _, s := range route.Stops {
		names := s.ClientNames
		if names == nil {
			names = []string{}
		}
		res.Stops = append(res.Stops, dto.StopResponse{
			Order:          s.Order,
			Address:        s.Address,
			Label:          s.Label,
			ClientName:     s.ClientName,
			ClientNames:    names,
			Type:           string(s.Type),
			Lat:            s.Coordinates.Lat,
			Lon:            s.Coordinates.Lon,
			DistanceMeters: s.DistanceMeters,
			GeocodeFailed:  s.GeocodeFailed,
			PackageCount:   s.PackageCount,
		})
	}

	for _, st := range route.Steps {
		step := dto.StepResponse{Text: st.Text, DistanceM: st.DistanceMeters}
		if st.Location != nil {
			step.Location = &dto.Coordinate{Lat: st.Location.Lat, Lon: st.Location.Lon}
		}
		res.Steps = append(res.Steps, step)
	}

	return res
}

func failedResponses(groups []domain.AddressGroup) []dto.FailedStopResponse {
	out := make([]dto.FailedStopResponse, 0, len(groups))
	for _, g := range groups {
		names := g.ClientNames
		if names == nil {
			names = []string{}
		}
		out = append(out, dto.FailedStopResponse{
			Address:      g.Address,
			ClientNames:  names,
			PackageCount: g.PackageCount,
		})
	}
	return out
}
