package services

import (
	"fmt"
	"route-pool-service/internal/domain"
	"slices"
	"sort"
)

// RankNeighbors orders every other location by travel cost from target,
// nearest first. Ties keep input order. The depot is excluded.
func RankNeighbors(
	costs domain.CostLookup,
	target domain.Location,
	locations []domain.Location,
	depotName string,
) ([]domain.Location, error) {
	type scored struct {
		loc  domain.Location
		cost float64
	}

	out := make([]scored, 0, len(locations))
	for _, l := range locations {
		if l.Name == target.Name || l.Name == depotName {
			continue
		}
		c, err := costs.Cost(target.Name, l.Name)
		if err != nil {
			return nil, fmt.Errorf("rank neighbors of %q: %w", target.Name, err)
		}
		out = append(out, scored{loc: l, cost: c})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].cost < out[j].cost })

	ranked := make([]domain.Location, len(out))
	for i, s := range out {
		ranked[i] = s.loc
	}
	return ranked, nil
}

// ExplorationVariants returns one neighbor order per permutation of the
// nearest depth entries, in lexicographic order of positions. The tail beyond
// depth is left in ranked order. The first variant is ranked itself.
func ExplorationVariants(ranked []domain.Location, depth int) [][]domain.Location {
	k := min(max(depth, 0), len(ranked))

	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}

	var variants [][]domain.Location
	for {
		v := make([]domain.Location, len(ranked))
		for i, p := range idx {
			v[i] = ranked[p]
		}
		copy(v[k:], ranked[k:])
		variants = append(variants, v)

		if !nextPermutation(idx) {
			return variants
		}
	}
}

// nextPermutation advances p to its lexicographic successor in place and
// reports false once p is the last permutation.
func nextPermutation(p []int) bool {
	i := len(p) - 2
	for i >= 0 && p[i] >= p[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(p) - 1
	for p[j] <= p[i] {
		j--
	}
	p[i], p[j] = p[j], p[i]
	slices.Reverse(p[i+1:])
	return true
}
