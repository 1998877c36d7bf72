package domain

import (
	"fmt"
	"math"
	"strings"
)

// Location is a named stop (or the depot) with its position and demand.
// Locations are immutable values shared read-only by every route visiting them.
type Location struct {
	Name        string
	Coordinates Coordinates
	Demand      float64
}

// NewLocation validates and returns a demand location.
func NewLocation(name string, coords Coordinates, demand float64) (Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Location{}, fmt.Errorf("new location: name must be non-empty")
	}
	if demand < 0 || math.IsNaN(demand) || math.IsInf(demand, 0) {
		return Location{}, fmt.Errorf("new location %q: demand must be a non-negative number, got %v", name, demand)
	}

	return Location{Name: name, Coordinates: coords, Demand: demand}, nil
}

// NewDepot returns the depot location. The depot never carries demand.
func NewDepot(name string, coords Coordinates) (Location, error) {
	return NewLocation(name, coords, 0)
}
