package services

import (
	"route-pool-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

// squareFixture is a depot and three stores where the cheapest tour is
// Depot-A-B-C-Depot at cost 4. A-C and Depot-B cost 10 each way.
func squareFixture(t *testing.T) (*domain.TravelMatrix, domain.Location, []domain.Location) {
	t.Helper()

	names := []string{"Depot", "A", "B", "C"}
	costs := [][]float64{
		{0, 1, 10, 1},
		{1, 0, 1, 10},
		{10, 1, 0, 1},
		{1, 10, 1, 0},
	}
	m, err := domain.NewTravelMatrix(names, costs)
	require.NoError(t, err)

	depot := domain.Location{Name: "Depot"}
	stores := []domain.Location{
		{Name: "A", Demand: 1},
		{Name: "B", Demand: 2},
		{Name: "C", Demand: 3},
	}
	return m, depot, stores
}

// lineFixture places n stores on a line at unit spacing from the depot.
func lineFixture(t *testing.T, n int) (*domain.TravelMatrix, domain.Location, []domain.Location) {
	t.Helper()

	names := []string{"Depot"}
	depot := domain.Location{Name: "Depot"}
	stores := make([]domain.Location, n)
	for i := range stores {
		stores[i] = domain.Location{Name: string(rune('A' + i)), Demand: 1}
		names = append(names, stores[i].Name)
	}

	costs := make([][]float64, len(names))
	for i := range costs {
		costs[i] = make([]float64, len(names))
		for j := range costs[i] {
			d := i - j
			if d < 0 {
				d = -d
			}
			costs[i][j] = float64(d)
		}
	}
	m, err := domain.NewTravelMatrix(names, costs)
	require.NoError(t, err)
	return m, depot, stores
}

func mustOptimizer(t *testing.T, tu Tuning) *GeneticRouteOptimizer {
	t.Helper()
	o, err := NewGeneticRouteOptimizer(tu)
	require.NoError(t, err)
	return o
}

func namesOf(locs []domain.Location) []string {
	out := make([]string, len(locs))
	for i, l := range locs {
		out[i] = l.Name
	}
	return out
}
