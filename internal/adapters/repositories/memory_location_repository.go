package repositories

import (
	"context"
	"route-pool-service/internal/domain"
	"slices"
)

// MemoryLocationRepository serves a fixed location set, e.g. one loaded from CSV.
type MemoryLocationRepository struct {
	depot     domain.Location
	locations []domain.Location
}

func NewMemoryLocationRepository(depot domain.Location, locations []domain.Location) *MemoryLocationRepository {
	return &MemoryLocationRepository{depot: depot, locations: slices.Clone(locations)}
}

func (m *MemoryLocationRepository) GetDepot(context.Context) (domain.Location, error) {
	return m.depot, nil
}

func (m *MemoryLocationRepository) ListLocations(context.Context) ([]domain.Location, error) {
	return slices.Clone(m.locations), nil
}
