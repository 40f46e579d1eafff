package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"route-planner-service/internal/api/dto"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"

	"go.uber.org/zap"
)

const maxBodyBytes = 4 << 20

func writeJSON(w http.ResponseWriter, r *http.Request, logger *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encode failed",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, status int, msg, detail string) {
	writeJSON(w, r, logger, status, dto.ErrorResponse{Success: false, Error: msg, Detail: detail})
}

// writeServiceError maps the error taxonomy onto HTTP statuses: caller
// mistakes are 400, an unresolvable address 404, unavailable or timed-out
// collaborators 503, anything else 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var inputErr *domain.InputError

	switch {
	case errors.As(err, &inputErr):
		writeError(w, r, logger, http.StatusBadRequest, inputErr.Msg, "")
	case errors.Is(err, domain.ErrInput):
		writeError(w, r, logger, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, domain.ErrGeocodeUnresolved):
		writeError(w, r, logger, http.StatusNotFound, "address could not be geocoded", err.Error())
	case errors.Is(err, domain.ErrSolverUnavailable):
		logger.Warn("solver unavailable", zap.String("req_id", obs.RequestID(r.Context())), zap.Error(err))
		writeError(w, r, logger, http.StatusServiceUnavailable, "route solver unavailable", err.Error())
	case errors.Is(err, domain.ErrRouteEngineUnavailable):
		logger.Warn("route engine unavailable", zap.String("req_id", obs.RequestID(r.Context())), zap.Error(err))
		writeError(w, r, logger, http.StatusServiceUnavailable, "routing engine unavailable", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("upstream timeout", zap.String("req_id", obs.RequestID(r.Context())), zap.Error(err))
		writeError(w, r, logger, http.StatusServiceUnavailable, "upstream service timed out", err.Error())
	default:
		logger.Error("request failed", zap.String("req_id", obs.RequestID(r.Context())), zap.Error(err))
		writeError(w, r, logger, http.StatusInternalServerError, "internal server error", "")
	}
}

func allowMethod(w http.ResponseWriter, r *http.Request, logger *zap.Logger, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, r, logger, http.StatusMethodNotAllowed, "method not allowed", "")
	return false
}

// decodeJSON reads exactly one JSON object from the request body.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid json body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain only one JSON object")
	}
	return nil
}
