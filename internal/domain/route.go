package domain

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// Route is a closed single-vehicle tour: it leaves the depot (always the first
// stop), visits every other stop in order and returns to the depot.
//
// Routes are immutable. Distance and demand are computed once at construction,
// so a Route can be shared freely between goroutines.
type Route struct {
	stops    []Location
	distance float64
	demand   float64
}

// NewRoute copies stops and computes the cyclic travel cost with costs.
func NewRoute(stops []Location, costs CostLookup) (Route, error) {
	if len(stops) < 2 {
		return Route{}, fmt.Errorf("new route: need the depot and at least one stop, got %d locations", len(stops))
	}
	if costs == nil {
		return Route{}, errors.New("new route: cost lookup is nil")
	}

	seen := make(map[string]struct{}, len(stops))
	for _, s := range stops {
		if _, dup := seen[s.Name]; dup {
			return Route{}, fmt.Errorf("new route: stop %q appears more than once", s.Name)
		}
		seen[s.Name] = struct{}{}
	}

	r := Route{stops: slices.Clone(stops)}

	for i := range r.stops {
		from := r.stops[i]
		to := r.stops[(i+1)%len(r.stops)]
		c, err := costs.Cost(from.Name, to.Name)
		if err != nil {
			return Route{}, fmt.Errorf("new route: %w", err)
		}
		r.distance += c
		r.demand += from.Demand
	}

	return r, nil
}

// RestoreRoute rebuilds a route from stored stops and a previously computed
// distance, without a cost lookup.
func RestoreRoute(stops []Location, distance float64) (Route, error) {
	if len(stops) < 2 {
		return Route{}, fmt.Errorf("restore route: need the depot and at least one stop, got %d locations", len(stops))
	}
	if distance < 0 || math.IsNaN(distance) || math.IsInf(distance, 0) {
		return Route{}, fmt.Errorf("restore route: invalid distance %v", distance)
	}

	r := Route{stops: slices.Clone(stops), distance: distance}
	for _, s := range r.stops {
		r.demand += s.Demand
	}
	return r, nil
}

// Distance is the total cyclic travel cost.
func (r Route) Distance() float64 { return r.distance }

// Demand is the sum of stop demands. The depot contributes nothing.
func (r Route) Demand() float64 { return r.demand }

// MinDistance floors distances when computing fitness so colocated stops
// still score finitely.
const MinDistance = 1e-9

// Fitness is the inverse of Distance; higher is better.
func (r Route) Fitness() float64 {
	return 1 / math.Max(r.distance, MinDistance)
}

// Depot returns the first stop.
func (r Route) Depot() Location { return r.stops[0] }

// Stops returns a copy of the full stop sequence, depot first.
func (r Route) Stops() []Location { return slices.Clone(r.stops) }

// Len is the number of locations including the depot.
func (r Route) Len() int { return len(r.stops) }

// Names returns stop names in visiting order, depot first.
func (r Route) Names() []string {
	out := make([]string, len(r.stops))
	for i, s := range r.stops {
		out[i] = s.Name
	}
	return out
}

// Visits reports whether the route stops at name. The depot counts.
func (r Route) Visits(name string) bool {
	for _, s := range r.stops {
		if s.Name == name {
			return true
		}
	}
	return false
}

// StopSetKey identifies the set of non-depot stops regardless of order.
func (r Route) StopSetKey() string {
	names := make([]string, 0, len(r.stops)-1)
	for _, s := range r.stops[1:] {
		names = append(names, s.Name)
	}
	slices.Sort(names)
	return strings.Join(names, "|")
}

func (r Route) String() string {
	return strings.Join(r.Names(), " -> ") + " -> " + r.stops[0].Name
}
