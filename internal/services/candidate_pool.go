package services

import (
	"context"
	"fmt"
	"math/rand"
	"route-pool-service/internal/domain"
	"route-pool-service/internal/platform/metrics"
	"route-pool-service/internal/platform/obs"
	"route-pool-service/internal/ports"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TaskError is the failure of a single work item.
type TaskError struct {
	Item WorkItem
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("candidate route task %s: %v", e.Item, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

// GenerateOptions configures one generation run.
type GenerateOptions struct {
	Plan    PlanOptions
	Workers int
	// Seed 0 picks a time-based seed, recorded on the returned pool.
	Seed     int64
	Distinct bool
}

// CandidatePoolGenerator runs the capacity route builder over the full work
// plan on a bounded worker pool.
type CandidatePoolGenerator struct {
	costs    ports.DistanceOracle
	builder  *CapacityRouteBuilder
	log      *zap.Logger
	observer ports.ProgressObserver

	now   func() time.Time
	newID func() string
}

func NewCandidatePoolGenerator(
	costs ports.DistanceOracle,
	optimizer *GeneticRouteOptimizer,
	log *zap.Logger,
	observer ports.ProgressObserver,
) *CandidatePoolGenerator {
	if log == nil {
		log = zap.NewNop()
	}
	if observer == nil {
		observer = ports.NopProgress{}
	}
	return &CandidatePoolGenerator{
		costs:    costs,
		builder:  NewCapacityRouteBuilder(costs, optimizer),
		log:      log,
		observer: observer,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Generate builds one candidate route per work item.
//
// Failed items do not stop the others. The returned pool holds every route
// that was built, in work-plan order, and the returned error aggregates each
// *TaskError. Both are non-nil when only some items failed.
func (g *CandidatePoolGenerator) Generate(
	ctx context.Context,
	depot domain.Location,
	locations []domain.Location,
	opts GenerateOptions,
) (pool *domain.CandidatePool, err error) {
	defer obs.Time(ctx, g.log, "generate_candidate_pool")(&err)

	items, err := BuildWorkPlan(g.costs, depot, locations, opts.Plan)
	if err != nil {
		return nil, fmt.Errorf("generate candidate pool: %w", err)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = g.now().UnixNano()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g.log.Info("candidate pool generation started",
		zap.Int("locations", len(locations)),
		zap.Int("tasks", len(items)),
		zap.Int("workers", workers),
		zap.Int64("seed", seed),
		zap.Int("generations", g.builder.optimizer.Tuning().Generations),
	)
	started := g.now()

	routes := make([]domain.Route, len(items))
	errs := make([]error, len(items))
	var done atomic.Int64

	var eg errgroup.Group
	eg.SetLimit(workers)

	for i := range items {
		if ctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			item := items[i]
			if cerr := ctx.Err(); cerr != nil {
				errs[i] = cerr
			} else {
				routes[i], errs[i] = g.runItem(seed, item)
			}

			g.observer.OnTaskDone(ports.ProgressEvent{
				Done:     int(done.Add(1)),
				Total:    len(items),
				Target:   item.Target.Name,
				Capacity: item.Capacity,
				Variant:  item.Variant,
				Err:      errs[i],
			})
			return nil
		})
	}
	_ = eg.Wait()

	if cerr := ctx.Err(); cerr != nil {
		return nil, fmt.Errorf("generate candidate pool: %w", cerr)
	}

	built := make([]domain.Route, 0, len(items))
	var failures []domain.TaskFailure
	var taskErrs error
	for i, item := range items {
		if errs[i] != nil {
			failures = append(failures, domain.TaskFailure{
				Target:   item.Target.Name,
				Capacity: item.Capacity,
				Variant:  item.Variant,
				Reason:   errs[i].Error(),
			})
			taskErrs = multierr.Append(taskErrs, &TaskError{Item: item, Err: errs[i]})
			continue
		}
		built = append(built, routes[i])
	}

	pool = domain.NewCandidatePool(g.newID(), started, seed, built)
	pool.Failures = failures
	pool.Params = domain.PoolParams{
		MinCapacity:   opts.Plan.MinCapacity,
		MaxCapacity:   opts.Plan.MaxCapacity,
		NeighborDepth: opts.Plan.NeighborDepth,
		Distinct:      opts.Distinct,
	}
	if opts.Distinct {
		pool = pool.Distinct()
	}
	metrics.PoolRoutes.Set(float64(pool.Len()))

	g.log.Info("candidate pool generation finished",
		zap.String("pool_id", pool.ID),
		zap.Int("routes", pool.Len()),
		zap.Int("failed", len(failures)),
		zap.Duration("elapsed", g.now().Sub(started)),
	)

	return pool, taskErrs
}

func (g *CandidatePoolGenerator) runItem(seed int64, item WorkItem) (domain.Route, error) {
	start := time.Now()
	rng := rand.New(rand.NewSource(itemSeed(seed, item)))

	route, err := g.builder.Build(rng, item.Depot, item.Target, float64(item.Capacity), item.Neighbors)

	metrics.PoolTaskDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PoolTasks.WithLabelValues("failed").Inc()
		return domain.Route{}, err
	}
	metrics.PoolTasks.WithLabelValues("ok").Inc()
	return route, nil
}
