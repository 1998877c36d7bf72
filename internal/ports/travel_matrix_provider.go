package ports

import (
	"context"
	"route-pool-service/internal/domain"
)

// Contract for retrieving travel durations from one origin to many destinations.
type TravelMatrixProvider interface {
	// Return travel duration in seconds from origin to each destination, keyed by name.
	GetDurations(ctx context.Context, origin domain.Location, destinations []domain.Location) (map[string]float64, error)
}
