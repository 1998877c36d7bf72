package domain

import "time"

// TaskFailure records a work item that produced no route.
type TaskFailure struct {
	Target   string
	Capacity int
	Variant  int
	Reason   string
}

// PoolParams records how a pool was generated.
type PoolParams struct {
	MinCapacity   int  `json:"min_capacity" yaml:"min_capacity"`
	MaxCapacity   int  `json:"max_capacity" yaml:"max_capacity"`
	NeighborDepth int  `json:"neighbor_depth" yaml:"neighbor_depth"`
	Distinct      bool `json:"distinct" yaml:"distinct"`
}

// CandidatePool is the ordered output of one generation run. Routes are
// appended in work-plan order; failed items are listed in Failures.
type CandidatePool struct {
	ID        string
	CreatedAt time.Time
	Seed      int64
	Params    PoolParams
	Failures  []TaskFailure

	routes []Route
}

func NewCandidatePool(id string, createdAt time.Time, seed int64, routes []Route) *CandidatePool {
	out := make([]Route, len(routes))
	copy(out, routes)
	return &CandidatePool{ID: id, CreatedAt: createdAt, Seed: seed, routes: out}
}

func (p *CandidatePool) Len() int { return len(p.routes) }

// Routes returns a copy of the pool's routes.
func (p *CandidatePool) Routes() []Route {
	out := make([]Route, len(p.routes))
	copy(out, p.routes)
	return out
}

func (p *CandidatePool) Route(i int) Route { return p.routes[i] }

// Covering returns the indices of routes that stop at name.
func (p *CandidatePool) Covering(name string) []int {
	var idx []int
	for i, r := range p.routes {
		if r.Visits(name) {
			idx = append(idx, i)
		}
	}
	return idx
}

// Distinct returns a pool holding the cheapest route for each stop set,
// in the order each stop set was first seen.
func (p *CandidatePool) Distinct() *CandidatePool {
	best := make(map[string]int, len(p.routes))
	kept := make([]Route, 0, len(p.routes))

	for _, r := range p.routes {
		key := r.StopSetKey()
		i, ok := best[key]
		if !ok {
			best[key] = len(kept)
			kept = append(kept, r)
			continue
		}
		if r.Distance() < kept[i].Distance() {
			kept[i] = r
		}
	}

	return &CandidatePool{
		ID:        p.ID,
		CreatedAt: p.CreatedAt,
		Seed:      p.Seed,
		Params:    p.Params,
		Failures:  append([]TaskFailure(nil), p.Failures...),
		routes:    kept,
	}
}

func (p *CandidatePool) TotalDistance() float64 {
	var d float64
	for _, r := range p.routes {
		d += r.Distance()
	}
	return d
}

func (p *CandidatePool) TotalDemand() float64 {
	var d float64
	for _, r := range p.routes {
		d += r.Demand()
	}
	return d
}
