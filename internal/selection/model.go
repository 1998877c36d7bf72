package selection

import (
	"fmt"
	"route-pool-service/internal/domain"
	"strconv"
	"strings"
)

// Column is one binary decision variable: run pool route Route on an owned
// vehicle, or on a hired one.
type Column struct {
	Route int
	Hired bool
	Cost  float64
}

// Model is the set-partitioning program over a candidate pool.
//
// Columns 0..n-1 are the owned-vehicle copies of the n pool routes and
// columns n..2n-1 the hired copies, in pool order. Every demand location must
// be covered by exactly one chosen column, and at most FleetSize owned
// columns may be chosen.
type Model struct {
	pool      *domain.CandidatePool
	stops     []string
	columns   []Column
	covering  [][]int
	fleetSize int
}

func NewModel(pool *domain.CandidatePool, stops []string, fleet domain.Fleet, cost CostModel) (*Model, error) {
	if err := cost.Validate(); err != nil {
		return nil, fmt.Errorf("new selection model: %w", err)
	}
	if fleet.Size <= 0 {
		return nil, &domain.ConfigurationError{Field: "fleet size", Reason: fmt.Sprintf("must be positive, got %d", fleet.Size)}
	}
	if len(stops) == 0 {
		return nil, &domain.ConfigurationError{Field: "selection stops", Reason: "no demand locations to cover"}
	}

	n := pool.Len()
	m := &Model{
		pool:      pool,
		stops:     append([]string(nil), stops...),
		columns:   make([]Column, 2*n),
		covering:  make([][]int, len(stops)),
		fleetSize: fleet.Size,
	}
	for i, r := range pool.Routes() {
		m.columns[i] = Column{Route: i, Cost: cost.OwnCost(r)}
		m.columns[n+i] = Column{Route: i, Hired: true, Cost: cost.HiredCost(r)}
	}

	var uncovered []string
	for s, name := range stops {
		idx := pool.Covering(name)
		if len(idx) == 0 {
			uncovered = append(uncovered, name)
			continue
		}
		cols := make([]int, 0, 2*len(idx))
		cols = append(cols, idx...)
		for _, i := range idx {
			cols = append(cols, n+i)
		}
		m.covering[s] = cols
	}
	if len(uncovered) > 0 {
		return nil, &domain.ConfigurationError{
			Field:  "candidate pool",
			Reason: "no route covers " + strings.Join(uncovered, ", "),
		}
	}

	return m, nil
}

func (m *Model) Columns() []Column { return append([]Column(nil), m.columns...) }

func (m *Model) FleetSize() int { return m.fleetSize }

// VariableName is the LP name of column i.
func VariableName(i int) string { return "Route_" + strconv.Itoa(i) }

// ParseVariableName is the inverse of VariableName.
func ParseVariableName(name string) (int, error) {
	s, ok := strings.CutPrefix(name, "Route_")
	if !ok {
		return 0, fmt.Errorf("parse variable %q: missing Route_ prefix", name)
	}
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("parse variable %q: bad index", name)
	}
	return i, nil
}

// SelectedRoute is one chosen column.
type SelectedRoute struct {
	Column int
	Route  domain.Route
	Hired  bool
	Cost   float64
}

type Solution struct {
	Routes    []SelectedRoute
	TotalCost float64
	OwnCount  int
}

// Decode maps a solver's chosen column indices back to routes and checks
// the result against the model constraints.
func (m *Model) Decode(selected []int) (Solution, error) {
	var sol Solution
	chosen := make(map[int]bool, len(selected))

	for _, c := range selected {
		if c < 0 || c >= len(m.columns) {
			return Solution{}, fmt.Errorf("decode selection: column %d out of range [0, %d)", c, len(m.columns))
		}
		if chosen[c] {
			return Solution{}, fmt.Errorf("decode selection: column %d chosen twice", c)
		}
		chosen[c] = true

		col := m.columns[c]
		sol.Routes = append(sol.Routes, SelectedRoute{Column: c, Route: m.pool.Route(col.Route), Hired: col.Hired, Cost: col.Cost})
		sol.TotalCost += col.Cost
		if !col.Hired {
			sol.OwnCount++
		}
	}

	if sol.OwnCount > m.fleetSize {
		return Solution{}, fmt.Errorf("decode selection: %d owned routes exceed fleet size %d", sol.OwnCount, m.fleetSize)
	}
	for s, cols := range m.covering {
		n := 0
		for _, c := range cols {
			if chosen[c] {
				n++
			}
		}
		if n != 1 {
			return Solution{}, fmt.Errorf("decode selection: %q covered %d times, want 1", m.stops[s], n)
		}
	}

	return sol, nil
}

// DecodeVariables is Decode over LP variable names.
func (m *Model) DecodeVariables(names []string) (Solution, error) {
	idx := make([]int, 0, len(names))
	for _, n := range names {
		i, err := ParseVariableName(n)
		if err != nil {
			return Solution{}, err
		}
		idx = append(idx, i)
	}
	return m.Decode(idx)
}
