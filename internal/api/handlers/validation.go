package handlers

import (
	"net/http"
	"route-planner-service/internal/api/dto"
	"route-planner-service/internal/services"

	"go.uber.org/zap"
)

type ValidationHandler struct {
	Validator *services.Validator
	Logger    *zap.Logger
}

// Start groups and geocodes a delivery sheet so the caller can review
// failures before planning.
func (h *ValidationHandler) Start(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.Logger, http.MethodPost) {
		return
	}

	var req dto.ValidationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Logger, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	sheet := make([]services.SheetRow, 0, len(req.Rows))
	for _, row := range req.Rows {
		sheet = append(sheet, services.SheetRow{Client: row.Cliente, Address: row.Direccion, City: row.Ciudad})
	}

	v, err := h.Validator.Validate(r.Context(), sheet)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}

	res := dto.ValidationResponse{
		Geocoded:        make([]dto.GeocodedStopResponse, 0, len(v.Geocoded)),
		Failed:          failedResponses(v.Failed),
		TotalPackages:   v.TotalPackages,
		UniqueAddresses: v.UniqueAddresses,
	}
	for _, g := range v.Geocoded {
		res.Geocoded = append(res.Geocoded, dto.GeocodedStopResponse{
			Address:        g.Address,
			ClientName:     g.PrimaryName(),
			AllClientNames: g.ClientNames,
			PackageCount:   g.PackageCount,
			Lat:            g.Coordinates.Lat,
			Lon:            g.Coordinates.Lon,
		})
	}

	writeJSON(w, r, h.Logger, http.StatusOK, res)
}
