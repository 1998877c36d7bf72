package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated registry served on /metrics.
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// PoolTasks counts candidate-route work items by outcome (ok, failed).
	PoolTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "candidate_route_tasks_total", Help: "Candidate route tasks by status."},
		[]string{"status"},
	)
	PoolTaskDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "candidate_route_task_duration_seconds",
			Help:    "Duration of one candidate route task.",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
	)
	// PoolRoutes is the route count of the most recent generation run.
	PoolRoutes = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "candidate_pool_routes", Help: "Routes in the last generated candidate pool."},
	)

	MatrixRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "travel_matrix_requests_total", Help: "Upstream travel matrix requests by status."},
		[]string{"status"},
	)
)

var regOnce sync.Once

// RegisterDefault registers every collector on Registry. Safe to call more than once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(PoolTasks)
		Registry.MustRegister(PoolTaskDuration)
		Registry.MustRegister(PoolRoutes)
		Registry.MustRegister(MatrixRequests)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
