package services

import (
	"fmt"
	"hash/fnv"
	"route-pool-service/internal/domain"
)

// WorkItem is one independent candidate-route task.
type WorkItem struct {
	Index     int
	Depot     domain.Location
	Target    domain.Location
	Capacity  int
	Variant   int
	Neighbors []domain.Location
}

func (w WorkItem) String() string {
	return fmt.Sprintf("target=%q capacity=%d variant=%d", w.Target.Name, w.Capacity, w.Variant)
}

// PlanOptions bounds the work plan.
type PlanOptions struct {
	MinCapacity   int
	MaxCapacity   int
	NeighborDepth int
}

// Upper bounds on a plan. Variants grow as depth! per target, so depth is
// capped hard and the total item count is checked before anything is built.
const (
	MaxNeighborDepth = 6
	MaxPlanCapacity  = 100
	MaxWorkItems     = 250_000
)

func DefaultPlanOptions() PlanOptions {
	return PlanOptions{MinCapacity: 1, MaxCapacity: 12, NeighborDepth: 4}
}

func (o PlanOptions) Validate() error {
	switch {
	case o.MinCapacity < 1:
		return &domain.ConfigurationError{Field: "min capacity", Reason: fmt.Sprintf("must be at least 1, got %d", o.MinCapacity)}
	case o.MaxCapacity < o.MinCapacity:
		return &domain.ConfigurationError{
			Field:  "max capacity",
			Reason: fmt.Sprintf("must be at least min capacity %d, got %d", o.MinCapacity, o.MaxCapacity),
		}
	case o.MaxCapacity > MaxPlanCapacity:
		return &domain.ConfigurationError{
			Field:  "max capacity",
			Reason: fmt.Sprintf("must be at most %d, got %d", MaxPlanCapacity, o.MaxCapacity),
		}
	case o.NeighborDepth < 0 || o.NeighborDepth > MaxNeighborDepth:
		return &domain.ConfigurationError{
			Field:  "neighbor depth",
			Reason: fmt.Sprintf("must be in [0, %d], got %d", MaxNeighborDepth, o.NeighborDepth),
		}
	}
	return nil
}

// BuildWorkPlan enumerates target x capacity x variant, in that nesting order.
//
// Capacity levels below a target's own demand cannot hold the target and are
// left out. A target whose demand exceeds MaxCapacity still gets one item at
// MaxCapacity so that its failure is reported rather than lost.
func BuildWorkPlan(
	costs domain.CostLookup,
	depot domain.Location,
	locations []domain.Location,
	opts PlanOptions,
) ([]WorkItem, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if n := planSize(depot, locations, opts); n > MaxWorkItems {
		return nil, &domain.ConfigurationError{
			Field:  "work plan",
			Reason: fmt.Sprintf("%d tasks exceed the limit of %d; lower the neighbor depth or capacity range", n, MaxWorkItems),
		}
	}

	var items []WorkItem
	for _, target := range locations {
		ranked, err := RankNeighbors(costs, target, locations, depot.Name)
		if err != nil {
			return nil, fmt.Errorf("build work plan: %w", err)
		}
		variants := ExplorationVariants(ranked, opts.NeighborDepth)

		if target.Demand > float64(opts.MaxCapacity) {
			items = append(items, WorkItem{
				Index:     len(items),
				Depot:     depot,
				Target:    target,
				Capacity:  opts.MaxCapacity,
				Neighbors: variants[0],
			})
			continue
		}

		levels := domain.Fleet{Capacity: opts.MaxCapacity}.CapacityLevels(firstLevel(target, opts))
		for _, c := range levels {
			for v, neighbors := range variants {
				items = append(items, WorkItem{
					Index:     len(items),
					Depot:     depot,
					Target:    target,
					Capacity:  c,
					Variant:   v,
					Neighbors: neighbors,
				})
			}
		}
	}

	return items, nil
}

// firstLevel is the smallest capacity level that can hold target.
func firstLevel(target domain.Location, opts PlanOptions) int {
	first := opts.MinCapacity
	for float64(first) < target.Demand {
		first++
	}
	return first
}

// planSize counts the items BuildWorkPlan would emit, without building them.
func planSize(depot domain.Location, locations []domain.Location, opts PlanOptions) int {
	total := 0
	for _, target := range locations {
		if target.Demand > float64(opts.MaxCapacity) {
			total++
			continue
		}
		neighbors := 0
		for _, l := range locations {
			if l.Name != target.Name && l.Name != depot.Name {
				neighbors++
			}
		}
		variants := 1
		for k := 2; k <= min(opts.NeighborDepth, neighbors); k++ {
			variants *= k
		}
		levels := max(opts.MaxCapacity-firstLevel(target, opts)+1, 0)
		total += levels * variants
	}
	return total
}

// itemSeed derives a per-item seed from base and the item's identity, so the
// result of one item does not depend on scheduling or on the rest of the plan.
func itemSeed(base int64, w WorkItem) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(w.Target.Name))

	s := deriveSeed(base, h.Sum64())
	s = deriveSeed(s, uint64(w.Capacity))
	return deriveSeed(s, uint64(w.Variant))
}

// deriveSeed is a SplitMix64 finalizer over parent and stream.
func deriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}
