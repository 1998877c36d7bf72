package services

import (
	"context"
	"errors"
	"route-pool-service/internal/domain"
	"route-pool-service/internal/ports"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestGenerator(t *testing.T, m domain.CostLookup, obs ports.ProgressObserver) *CandidatePoolGenerator {
	t.Helper()
	return NewCandidatePoolGenerator(m, mustOptimizer(t, DefaultTuning()), zaptest.NewLogger(t), obs)
}

func TestGenerate_PartialFailure(t *testing.T) {
	m, depot, stores := squareFixture(t)

	var mu sync.Mutex
	var events []ports.ProgressEvent
	obs := ports.ProgressFunc(func(ev ports.ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	})

	g := newTestGenerator(t, m, obs)
	pool, err := g.Generate(context.Background(), depot, stores, GenerateOptions{
		Plan:    PlanOptions{MinCapacity: 1, MaxCapacity: 2, NeighborDepth: 4},
		Workers: 3,
		Seed:    11,
	})

	require.Error(t, err)
	require.NotNil(t, pool)
	assert.ErrorIs(t, err, domain.ErrCapacityViolation)

	var te *TaskError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "C", te.Item.Target.Name)

	assert.Equal(t, 6, pool.Len())
	require.Len(t, pool.Failures, 1)
	assert.Equal(t, "C", pool.Failures[0].Target)
	assert.Equal(t, int64(11), pool.Seed)
	assert.NotEmpty(t, pool.ID)

	require.Len(t, events, 7)
	done := map[int]bool{}
	failed := 0
	for _, ev := range events {
		assert.Equal(t, 7, ev.Total)
		done[ev.Done] = true
		if ev.Err != nil {
			failed++
		}
	}
	assert.Len(t, done, 7)
	assert.Equal(t, 1, failed)

	for _, r := range pool.Routes() {
		assert.LessOrEqual(t, r.Demand(), 2.0)
		assert.Equal(t, "Depot", r.Depot().Name)
	}
}

func TestGenerate_DeterministicAcrossWorkerCounts(t *testing.T) {
	m, depot, stores := lineFixture(t, 5)
	opts := GenerateOptions{
		Plan: PlanOptions{MinCapacity: 1, MaxCapacity: 4, NeighborDepth: 2},
		Seed: 2024,
	}

	var runs [][]string
	for _, workers := range []int{1, 4, 16} {
		opts.Workers = workers
		pool, err := newTestGenerator(t, m, nil).Generate(context.Background(), depot, stores, opts)
		require.NoError(t, err)

		var tours []string
		for _, r := range pool.Routes() {
			tours = append(tours, r.String())
		}
		runs = append(runs, tours)
	}

	assert.Equal(t, runs[0], runs[1])
	assert.Equal(t, runs[0], runs[2])
}

func TestGenerate_Distinct(t *testing.T) {
	m, depot, stores := lineFixture(t, 4)
	opts := GenerateOptions{
		Plan: PlanOptions{MinCapacity: 1, MaxCapacity: 4, NeighborDepth: 3},
		Seed: 5,
	}

	all, err := newTestGenerator(t, m, nil).Generate(context.Background(), depot, stores, opts)
	require.NoError(t, err)

	opts.Distinct = true
	distinct, err := newTestGenerator(t, m, nil).Generate(context.Background(), depot, stores, opts)
	require.NoError(t, err)

	assert.Less(t, distinct.Len(), all.Len())
	assert.True(t, distinct.Params.Distinct)

	keys := map[string]bool{}
	for _, r := range distinct.Routes() {
		assert.False(t, keys[r.StopSetKey()], "duplicate stop set %s", r.StopSetKey())
		keys[r.StopSetKey()] = true
	}
	for _, s := range stores {
		assert.NotEmpty(t, distinct.Covering(s.Name))
	}
}

func TestGenerate_Canceled(t *testing.T) {
	m, depot, stores := lineFixture(t, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool, err := newTestGenerator(t, m, nil).Generate(ctx, depot, stores, GenerateOptions{Plan: DefaultPlanOptions(), Seed: 1})

	assert.Nil(t, pool)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestGenerate_TimeSeedIsRecorded(t *testing.T) {
	m, depot, stores := squareFixture(t)
	g := newTestGenerator(t, m, nil)

	pool, err := g.Generate(context.Background(), depot, stores, GenerateOptions{
		Plan: PlanOptions{MinCapacity: 6, MaxCapacity: 6, NeighborDepth: 1},
	})
	require.NoError(t, err)
	assert.NotZero(t, pool.Seed)
	assert.Equal(t, 3, pool.Len())
}
