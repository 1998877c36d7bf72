package distance

import (
	"context"
	"route-pool-service/internal/domain"
	"sync/atomic"
)

// StaticPair is one directed entry of a StaticMatrixProvider.
type StaticPair struct {
	From, To string
	Seconds  float64
}

// StaticMatrixProvider serves durations from an in-memory table. It backs
// tests and offline runs where durations come from a file.
type StaticMatrixProvider struct {
	m     map[string]float64
	calls atomic.Int64
}

func NewStaticMatrixProvider(pairs []StaticPair) *StaticMatrixProvider {
	m := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		m[p.From+"|"+p.To] = p.Seconds
	}
	return &StaticMatrixProvider{m: m}
}

// NewStaticMatrixProviderFrom copies every off-diagonal entry of a matrix.
func NewStaticMatrixProviderFrom(tm *domain.TravelMatrix) *StaticMatrixProvider {
	names := tm.Names()
	pairs := make([]StaticPair, 0, len(names)*len(names))
	for _, from := range names {
		for _, to := range names {
			if from == to {
				continue
			}
			c, _ := tm.Cost(from, to)
			pairs = append(pairs, StaticPair{From: from, To: to, Seconds: c})
		}
	}
	return NewStaticMatrixProvider(pairs)
}

func (p *StaticMatrixProvider) GetDurations(
	ctx context.Context,
	origin domain.Location,
	destinations []domain.Location,
) (map[string]float64, error) {
	p.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(destinations))
	for _, d := range destinations {
		s, ok := p.m[origin.Name+"|"+d.Name]
		if !ok {
			return nil, &domain.LookupMissError{Table: "static matrix", From: origin.Name, To: d.Name}
		}
		out[d.Name] = s
	}
	return out, nil
}

// Calls is the number of GetDurations calls served so far.
func (p *StaticMatrixProvider) Calls() int { return int(p.calls.Load()) }
