package handlers

import (
	"net/http"

	"go.uber.org/zap"
)

// Health provides a minimal liveness check endpoint.
func Health(log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowOnly(log, w, r, http.MethodGet) {
			return
		}
		writeJSON(log, w, r, http.StatusOK, map[string]string{"status": "ok"})
	}
}
