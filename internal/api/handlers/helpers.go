package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"route-pool-service/internal/domain"
	"route-pool-service/internal/platform/obs"
	"route-pool-service/internal/ports"

	"go.uber.org/zap"
)

func writeJSON(log *zap.Logger, w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("encode failed",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
}

func writeError(log *zap.Logger, w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(log, w, r, status, map[string]string{"error": msg})
}

// writeServiceError maps domain errors to a status. Unknown errors are logged
// and reported as a bare 500.
func writeServiceError(log *zap.Logger, w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrConfiguration):
		writeError(log, w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, ports.ErrPoolNotFound):
		writeError(log, w, r, http.StatusNotFound, "candidate pool not found")
	case errors.Is(err, domain.ErrLookupMiss), errors.Is(err, domain.ErrCapacityViolation):
		writeError(log, w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Error(op+" failed", zap.String("req_id", obs.RequestID(r.Context())), zap.Error(err))
		writeError(log, w, r, http.StatusInternalServerError, "internal server error")
	}
}

func allowOnly(log *zap.Logger, w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(log, w, r, http.StatusMethodNotAllowed, "method not allowed")
	return false
}
