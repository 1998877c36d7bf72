package api

import (
	"net/http"
	"route-pool-service/internal/api/handlers"
	"route-pool-service/internal/platform/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// Handlers stay unaware of concrete adapters.
func NewRouter(log *zap.Logger, locations *handlers.LocationHandler, pools *handlers.PoolHandler, progress *handlers.ProgressHub) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", handlers.Health(log))
	mux.HandleFunc("/locations", locations.List)
	mux.HandleFunc("/candidate-pools", pools.Collection)
	mux.Handle("/candidate-pools/progress", progress)
	mux.HandleFunc("/candidate-pools/{id}", pools.Get)
	mux.HandleFunc("/candidate-pools/{id}/model.lp", pools.Model)
	mux.HandleFunc("/candidate-pools/{id}/solution", pools.Solution)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return requestMiddleware(log, mux)
}
