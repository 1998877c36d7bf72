package services

import (
	"fmt"
	"math"
	"route-pool-service/internal/domain"
)

// RouteFitnessModel scores orderings of one fixed stop set.
//
// Costs between the depot and the stops are copied into a local table once,
// so the generational loop never goes back to the shared oracle. Position 0 is
// the depot; an ordering is a permutation of 1..n-1.
type RouteFitnessModel struct {
	locs []domain.Location
	cost []float64
}

func NewRouteFitnessModel(costs domain.CostLookup, depot domain.Location, stops []domain.Location) (*RouteFitnessModel, error) {
	locs := make([]domain.Location, 0, len(stops)+1)
	locs = append(locs, depot)
	locs = append(locs, stops...)

	n := len(locs)
	m := &RouteFitnessModel{locs: locs, cost: make([]float64, n*n)}
	for i := range locs {
		for j := range locs {
			if i == j {
				continue
			}
			c, err := costs.Cost(locs[i].Name, locs[j].Name)
			if err != nil {
				return nil, fmt.Errorf("fitness model: %w", err)
			}
			m.cost[i*n+j] = c
		}
	}

	return m, nil
}

// StopCount is the number of permutable stops (depot excluded).
func (m *RouteFitnessModel) StopCount() int { return len(m.locs) - 1 }

// Distance of the closed tour depot -> order... -> depot.
func (m *RouteFitnessModel) Distance(order []int) float64 {
	n := len(m.locs)
	prev := 0
	var d float64
	for _, i := range order {
		d += m.cost[prev*n+i]
		prev = i
	}
	return d + m.cost[prev*n]
}

func (m *RouteFitnessModel) Demand(order []int) float64 {
	var d float64
	for _, i := range order {
		d += m.locs[i].Demand
	}
	return d
}

func (m *RouteFitnessModel) Fitness(order []int) float64 {
	return 1 / math.Max(m.Distance(order), domain.MinDistance)
}

// Locations maps an ordering back to stops, depot first.
func (m *RouteFitnessModel) Locations(order []int) []domain.Location {
	out := make([]domain.Location, 0, len(order)+1)
	out = append(out, m.locs[0])
	for _, i := range order {
		out = append(out, m.locs[i])
	}
	return out
}
