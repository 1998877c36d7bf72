package ports

import (
	"context"
	"route-pool-service/internal/domain"
)

// Port: a boundary for retrieving Location entities from a data source.
type LocationRepository interface {
	// Retrieve the depot.
	GetDepot(ctx context.Context) (domain.Location, error)
	// Retrieve all demand locations, depot excluded.
	ListLocations(ctx context.Context) ([]domain.Location, error)
}
