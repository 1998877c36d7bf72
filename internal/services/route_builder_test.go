package services

import (
	"math/rand"
	"route-pool-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_MandatoryFillsCapacity(t *testing.T) {
	m, depot, stores := squareFixture(t)
	b := NewCapacityRouteBuilder(m, mustOptimizer(t, DefaultTuning()))

	route, err := b.Build(rand.New(rand.NewSource(1)), depot, stores[0], 1, stores[1:])
	require.NoError(t, err)

	assert.Equal(t, []string{"Depot", "A"}, route.Names())
	assert.Equal(t, 1.0, route.Demand())
}

func TestBuild_SkipsNeighborsThatDoNotFit(t *testing.T) {
	m, depot, stores := squareFixture(t)
	b := NewCapacityRouteBuilder(m, mustOptimizer(t, DefaultTuning()))

	// C (3) does not fit next to A (1) at capacity 3; B (2) does.
	neighbors := []domain.Location{stores[2], stores[1]}
	route, err := b.Build(rand.New(rand.NewSource(1)), depot, stores[0], 3, neighbors)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"Depot", "A", "B"}, route.Names())
	assert.False(t, route.Visits("C"))
	assert.Equal(t, 3.0, route.Demand())
}

func TestBuild_IgnoresDepotAndMandatoryInNeighbors(t *testing.T) {
	m, depot, stores := squareFixture(t)
	b := NewCapacityRouteBuilder(m, mustOptimizer(t, DefaultTuning()))

	neighbors := []domain.Location{depot, stores[0], stores[1]}
	route, err := b.Build(rand.New(rand.NewSource(1)), depot, stores[0], 10, neighbors)
	require.NoError(t, err)

	assert.Equal(t, 3, route.Len())
}

func TestBuild_NeverExceedsCapacity(t *testing.T) {
	m, depot, stores := lineFixture(t, 8)
	b := NewCapacityRouteBuilder(m, mustOptimizer(t, DefaultTuning()))

	for capacity := 1; capacity <= 10; capacity++ {
		route, err := b.Build(rand.New(rand.NewSource(int64(capacity))), depot, stores[3], float64(capacity), stores)
		require.NoError(t, err)
		assert.LessOrEqual(t, route.Demand(), float64(capacity))
		assert.Equal(t, min(capacity, 8)+1, route.Len())
		assert.True(t, route.Visits(stores[3].Name))
	}
}

func TestBuild_MandatoryAboveCapacity(t *testing.T) {
	m, depot, stores := squareFixture(t)
	b := NewCapacityRouteBuilder(m, mustOptimizer(t, DefaultTuning()))

	_, err := b.Build(rand.New(rand.NewSource(1)), depot, stores[2], 2, stores)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCapacityViolation)

	var cv *domain.CapacityViolationError
	require.ErrorAs(t, err, &cv)
	assert.Equal(t, "C", cv.Target)
	assert.Equal(t, 3.0, cv.Demand)
}
