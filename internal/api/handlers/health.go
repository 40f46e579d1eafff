package handlers

import (
	"net/http"
	"route-planner-service/internal/api/dto"
	"route-planner-service/internal/services"

	"go.uber.org/zap"
)

type SystemHandler struct {
	Version string
	Status  *services.StatusChecker
	Logger  *zap.Logger
}

// Health provides a minimal liveness check endpoint.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.Logger, http.MethodGet) {
		return
	}
	writeJSON(w, r, h.Logger, http.StatusOK, dto.HealthResponse{Status: "ok", Version: h.Version})
}

// Services probes the routing engine and the solver. The body is keyed by
// service name with an extra all_ok flag.
func (h *SystemHandler) Services(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.Logger, http.MethodGet) {
		return
	}

	states, allOK := h.Status.Check(r.Context())

	res := make(map[string]any, len(states)+1)
	for _, s := range states {
		status := "down"
		if s.OK {
			status = "ok"
		}
		res[s.Name] = dto.ServiceStatus{URL: s.URL, Status: status}
	}
	res["all_ok"] = allOK

	writeJSON(w, r, h.Logger, http.StatusOK, res)
}
