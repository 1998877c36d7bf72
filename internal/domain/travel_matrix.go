package domain

import (
	"fmt"
	"math"
	"strings"
)

// CostLookup answers travel-cost queries between two named locations.
// Costs are directional: Cost(a, b) need not equal Cost(b, a).
type CostLookup interface {
	Cost(from, to string) (float64, error)
}

// TravelMatrix is an immutable, fully populated cost table keyed by location name.
// It is safe for concurrent use.
type TravelMatrix struct {
	names []string
	index map[string]int
	costs []float64
}

// NewTravelMatrix copies costs into a row-major table.
// costs[i][j] is the travel cost from names[i] to names[j].
func NewTravelMatrix(names []string, costs [][]float64) (*TravelMatrix, error) {
	n := len(names)
	if n == 0 {
		return nil, &ConfigurationError{Field: "travel matrix", Reason: "no locations"}
	}
	if len(costs) != n {
		return nil, &ConfigurationError{
			Field:  "travel matrix",
			Reason: fmt.Sprintf("%d names but %d cost rows", n, len(costs)),
		}
	}

	m := &TravelMatrix{
		names: make([]string, n),
		index: make(map[string]int, n),
		costs: make([]float64, n*n),
	}

	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, &ConfigurationError{Field: "travel matrix", Reason: fmt.Sprintf("empty name at index %d", i)}
		}
		if _, dup := m.index[name]; dup {
			return nil, &ConfigurationError{Field: "travel matrix", Reason: fmt.Sprintf("duplicate name %q", name)}
		}
		m.names[i] = name
		m.index[name] = i
	}

	for i, row := range costs {
		if len(row) != n {
			return nil, &ConfigurationError{
				Field:  "travel matrix",
				Reason: fmt.Sprintf("row %q has %d columns, want %d", m.names[i], len(row), n),
			}
		}
		for j, c := range row {
			if c < 0 || math.IsNaN(c) || math.IsInf(c, 0) {
				return nil, &ConfigurationError{
					Field:  "travel matrix",
					Reason: fmt.Sprintf("invalid cost %v from %q to %q", c, m.names[i], m.names[j]),
				}
			}
			m.costs[i*n+j] = c
		}
	}

	return m, nil
}

// Cost returns the travel cost from one location to another.
func (m *TravelMatrix) Cost(from, to string) (float64, error) {
	i, ok := m.index[from]
	if !ok {
		return 0, &LookupMissError{Table: "travel matrix", From: from, To: to}
	}
	j, ok := m.index[to]
	if !ok {
		return 0, &LookupMissError{Table: "travel matrix", From: from, To: to}
	}

	return m.costs[i*len(m.names)+j], nil
}

// Has reports whether the matrix knows a location.
func (m *TravelMatrix) Has(name string) bool {
	_, ok := m.index[name]
	return ok
}

// Names returns location names in construction order.
func (m *TravelMatrix) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Len is the number of locations in the matrix.
func (m *TravelMatrix) Len() int { return len(m.names) }
