package services

import (
	"fmt"
	"math/rand"
	"route-pool-service/internal/domain"
)

// CapacityRouteBuilder greedily fills a vehicle around one mandatory stop and
// orders the resulting stop set with the genetic optimizer.
type CapacityRouteBuilder struct {
	costs     domain.CostLookup
	optimizer *GeneticRouteOptimizer
}

func NewCapacityRouteBuilder(costs domain.CostLookup, optimizer *GeneticRouteOptimizer) *CapacityRouteBuilder {
	return &CapacityRouteBuilder{costs: costs, optimizer: optimizer}
}

// Build starts from depot + mandatory and walks neighbors in order, adding
// each one whose demand still fits. Candidates that do not fit are skipped,
// not treated as the end of the scan.
func (b *CapacityRouteBuilder) Build(
	rng *rand.Rand,
	depot domain.Location,
	mandatory domain.Location,
	capacity float64,
	neighbors []domain.Location,
) (domain.Route, error) {
	load := domain.NewLoad(capacity)
	if err := load.Add(mandatory); err != nil {
		return domain.Route{}, fmt.Errorf("build candidate route: %w", err)
	}

	for j := 0; load.Demand < capacity && j < len(neighbors); j++ {
		n := neighbors[j]
		if n.Name == depot.Name || load.Contains(n.Name) {
			continue
		}
		if load.Fits(n) {
			if err := load.Add(n); err != nil {
				return domain.Route{}, fmt.Errorf("build candidate route: %w", err)
			}
		}
	}

	route, err := b.optimizer.Optimize(rng, b.costs, depot, load.Stops)
	if err != nil {
		return domain.Route{}, fmt.Errorf("build candidate route for %q: %w", mandatory.Name, err)
	}

	if route.Demand() > capacity {
		return domain.Route{}, &domain.CapacityViolationError{
			Target:   mandatory.Name,
			Capacity: capacity,
			Demand:   route.Demand(),
		}
	}

	return route, nil
}
