package services

import (
	"fmt"
	"math"
	"math/rand"
	"route-pool-service/internal/domain"
)

// Tuning holds the run-wide genetic algorithm parameters.
type Tuning struct {
	PopulationSize int
	EliteCount     int
	MutationRate   float64
	Generations    int
}

func DefaultTuning() Tuning {
	return Tuning{
		PopulationSize: 20,
		EliteCount:     5,
		MutationRate:   0.05,
		Generations:    25,
	}
}

func (t Tuning) Validate() error {
	switch {
	case t.PopulationSize < 1:
		return &domain.ConfigurationError{Field: "population size", Reason: fmt.Sprintf("must be positive, got %d", t.PopulationSize)}
	case t.EliteCount < 0 || t.EliteCount >= t.PopulationSize:
		return &domain.ConfigurationError{
			Field:  "elite count",
			Reason: fmt.Sprintf("must be in [0, %d), got %d", t.PopulationSize, t.EliteCount),
		}
	case math.IsNaN(t.MutationRate) || t.MutationRate < 0 || t.MutationRate > 1:
		return &domain.ConfigurationError{Field: "mutation rate", Reason: fmt.Sprintf("must be in [0, 1], got %v", t.MutationRate)}
	case t.Generations < 0:
		return &domain.ConfigurationError{Field: "generations", Reason: fmt.Sprintf("must not be negative, got %d", t.Generations)}
	}
	return nil
}

// GeneticRouteOptimizer orders a fixed stop set for minimum cyclic travel cost.
// It is stateless apart from its tuning and may be shared across goroutines;
// each call must get its own *rand.Rand.
type GeneticRouteOptimizer struct {
	tuning Tuning
}

func NewGeneticRouteOptimizer(t Tuning) (*GeneticRouteOptimizer, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &GeneticRouteOptimizer{tuning: t}, nil
}

func (o *GeneticRouteOptimizer) Tuning() Tuning { return o.tuning }

// Optimize runs exactly Generations generations and returns the best route
// of the final population. The depot is always first; only stops are permuted.
func (o *GeneticRouteOptimizer) Optimize(
	rng *rand.Rand,
	costs domain.CostLookup,
	depot domain.Location,
	stops []domain.Location,
) (domain.Route, error) {
	if len(stops) == 0 {
		return domain.Route{}, &domain.ConfigurationError{Field: "stop set", Reason: "must not be empty"}
	}
	seen := map[string]struct{}{depot.Name: {}}
	for _, s := range stops {
		if _, dup := seen[s.Name]; dup {
			return domain.Route{}, &domain.ConfigurationError{Field: "stop set", Reason: fmt.Sprintf("duplicate stop %q", s.Name)}
		}
		seen[s.Name] = struct{}{}
	}

	model, err := NewRouteFitnessModel(costs, depot, stops)
	if err != nil {
		return domain.Route{}, fmt.Errorf("optimize route: %w", err)
	}

	pop := initialPopulation(rng, o.tuning.PopulationSize, model.StopCount())
	for g := 0; g < o.tuning.Generations; g++ {
		pop = o.nextGeneration(rng, pop, model)
	}

	best := pop[rankPopulation(pop, model)[0].index]

	route, err := domain.NewRoute(model.Locations(best), costs)
	if err != nil {
		return domain.Route{}, fmt.Errorf("optimize route: %w", err)
	}
	return route, nil
}

func (o *GeneticRouteOptimizer) nextGeneration(rng *rand.Rand, pop [][]int, model *RouteFitnessModel) [][]int {
	ranked := rankPopulation(pop, model)
	selected := selectIndices(rng, ranked, o.tuning.EliteCount)
	pool := matingPool(pop, selected)
	children := breedPopulation(rng, pool, o.tuning.EliteCount)
	return mutatePopulation(rng, children, o.tuning.MutationRate)
}
