package services

import (
	"context"
	"fmt"
	"route-pool-service/internal/domain"
	"route-pool-service/internal/platform/obs"
	"route-pool-service/internal/ports"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultMatrixFetchLimit = 5

// MatrixOptions bounds concurrent row fetches. Zero means the default of 5.
type MatrixOptions struct {
	Concurrency int
}

// BuildTravelMatrix fetches one row per origin from provider and assembles an
// immutable matrix over depot followed by locations. The first failed row
// cancels the remaining fetches.
func BuildTravelMatrix(
	ctx context.Context,
	log *zap.Logger,
	depot domain.Location,
	locations []domain.Location,
	provider ports.TravelMatrixProvider,
	opts MatrixOptions,
) (m *domain.TravelMatrix, err error) {
	defer obs.Time(ctx, log, "build_travel_matrix")(&err)

	all := make([]domain.Location, 0, len(locations)+1)
	all = append(all, depot)
	all = append(all, locations...)

	limit := opts.Concurrency
	if limit <= 0 {
		limit = defaultMatrixFetchLimit
	}

	rows := make([]map[string]float64, len(all))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	for i, origin := range all {
		targets := make([]domain.Location, 0, len(all)-1)
		for j, t := range all {
			if j != i {
				targets = append(targets, t)
			}
		}

		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			res, err := provider.GetDurations(egCtx, origin, targets)
			if err != nil {
				return fmt.Errorf("build travel matrix: row %q: %w", origin.Name, err)
			}
			rows[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	names := make([]string, len(all))
	for i, l := range all {
		names[i] = l.Name
	}

	costs := make([][]float64, len(all))
	for i, row := range rows {
		r := make([]float64, len(all))
		for j, t := range all {
			if j == i {
				continue
			}
			c, ok := row[t.Name]
			if !ok {
				return nil, fmt.Errorf("build travel matrix: %w", &domain.LookupMissError{
					Table: "travel matrix provider",
					From:  all[i].Name,
					To:    t.Name,
				})
			}
			r[j] = c
		}
		costs[i] = r
	}

	m, err = domain.NewTravelMatrix(names, costs)
	if err != nil {
		return nil, fmt.Errorf("build travel matrix: %w", err)
	}

	log.Info("travel matrix built", zap.Int("locations", len(all)))
	return m, nil
}
