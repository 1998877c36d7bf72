package domain

import "fmt"

// Fleet describes the owned vehicles available to the selection stage.
type Fleet struct {
	Size     int
	Capacity int
}

func NewFleet(size, capacity int) (Fleet, error) {
	if size <= 0 {
		return Fleet{}, &ConfigurationError{Field: "fleet size", Reason: fmt.Sprintf("must be positive, got %d", size)}
	}
	if capacity <= 0 {
		return Fleet{}, &ConfigurationError{Field: "fleet capacity", Reason: fmt.Sprintf("must be positive, got %d", capacity)}
	}
	return Fleet{Size: size, Capacity: capacity}, nil
}

// CapacityLevels lists every capacity from min up to the vehicle capacity.
func (f Fleet) CapacityLevels(min int) []int {
	if min < 1 {
		min = 1
	}
	levels := make([]int, 0, f.Capacity)
	for c := min; c <= f.Capacity; c++ {
		levels = append(levels, c)
	}
	return levels
}

// Load accumulates stops onto a single vehicle without exceeding its capacity.
type Load struct {
	Capacity float64
	Stops    []Location
	Demand   float64
}

func NewLoad(capacity float64) *Load {
	return &Load{Capacity: capacity}
}

// Fits reports whether loc can be added without exceeding capacity.
func (l *Load) Fits(loc Location) bool {
	return l.Demand+loc.Demand <= l.Capacity
}

// Add a single stop to the load.
func (l *Load) Add(loc Location) error {
	if !l.Fits(loc) {
		return &CapacityViolationError{Target: loc.Name, Capacity: l.Capacity, Demand: l.Demand + loc.Demand}
	}
	l.Stops = append(l.Stops, loc)
	l.Demand += loc.Demand
	return nil
}

// Contains reports whether a stop with this name is already loaded.
func (l *Load) Contains(name string) bool {
	for _, s := range l.Stops {
		if s.Name == name {
			return true
		}
	}
	return false
}
