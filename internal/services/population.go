package services

import (
	"math/rand"
	"slices"
	"sort"
)

type rankedIndividual struct {
	index   int
	fitness float64
}

// initialPopulation returns size random orderings of stops 1..n.
func initialPopulation(rng *rand.Rand, size, n int) [][]int {
	pop := make([][]int, size)
	for i := range pop {
		order := rng.Perm(n)
		for j := range order {
			order[j]++
		}
		pop[i] = order
	}
	return pop
}

// rankPopulation sorts by descending fitness. Ties keep population order.
func rankPopulation(pop [][]int, model *RouteFitnessModel) []rankedIndividual {
	ranked := make([]rankedIndividual, len(pop))
	for i, ind := range pop {
		ranked[i] = rankedIndividual{index: i, fitness: model.Fitness(ind)}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].fitness > ranked[b].fitness
	})
	return ranked
}

// selectIndices keeps the eliteCount best indices and fills the remaining
// slots by roulette-wheel sampling with replacement over the ranked order.
func selectIndices(rng *rand.Rand, ranked []rankedIndividual, eliteCount int) []int {
	cumPerc := make([]float64, len(ranked))
	var total float64
	for _, r := range ranked {
		total += r.fitness
	}
	var cum float64
	for i, r := range ranked {
		cum += r.fitness
		cumPerc[i] = 100 * cum / total
	}

	selected := make([]int, 0, len(ranked))
	for i := 0; i < eliteCount; i++ {
		selected = append(selected, ranked[i].index)
	}
	for len(selected) < len(ranked) {
		pick := 100 * rng.Float64()
		chosen := ranked[len(ranked)-1].index
		for i, p := range cumPerc {
			if pick <= p {
				chosen = ranked[i].index
				break
			}
		}
		selected = append(selected, chosen)
	}
	return selected
}

func matingPool(pop [][]int, selected []int) [][]int {
	pool := make([][]int, len(selected))
	for i, idx := range selected {
		pool[i] = pop[idx]
	}
	return pool
}

// breed performs ordered crossover: a slice of a between two random cut
// points, followed by b's remaining stops in b's order.
func breed(rng *rand.Rand, a, b []int) []int {
	geneA := int(rng.Float64() * float64(len(a)))
	geneB := int(rng.Float64() * float64(len(a)))
	lo, hi := min(geneA, geneB), max(geneA, geneB)

	child := make([]int, 0, len(a))
	child = append(child, a[lo:hi]...)

	taken := make(map[int]struct{}, hi-lo)
	for _, s := range child {
		taken[s] = struct{}{}
	}
	for _, s := range b {
		if _, ok := taken[s]; !ok {
			child = append(child, s)
		}
	}
	return child
}

// breedPopulation passes the first eliteCount entries of pool through and
// breeds the rest from a shuffled copy, pairing front with back.
func breedPopulation(rng *rand.Rand, pool [][]int, eliteCount int) [][]int {
	shuffled := slices.Clone(pool)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	children := make([][]int, 0, len(pool))
	children = append(children, pool[:eliteCount]...)

	n := len(pool)
	for i := 0; i < n-eliteCount; i++ {
		children = append(children, breed(rng, shuffled[i], shuffled[n-1-i]))
	}
	return children
}

// mutate swaps each position with a random position (possibly itself)
// with probability rate. ind is not modified.
func mutate(rng *rand.Rand, ind []int, rate float64) []int {
	out := slices.Clone(ind)
	for i := range out {
		if rng.Float64() < rate {
			j := int(rng.Float64() * float64(len(out)))
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

func mutatePopulation(rng *rand.Rand, pop [][]int, rate float64) [][]int {
	out := make([][]int, len(pop))
	for i, ind := range pop {
		out[i] = mutate(rng, ind, rate)
	}
	return out
}
