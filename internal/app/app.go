// Package app holds the wiring shared by the server and the command-line tools.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"route-pool-service/internal/adapters/cache"
	"route-pool-service/internal/adapters/distance"
	"route-pool-service/internal/adapters/tabular"
	"route-pool-service/internal/config"
	"route-pool-service/internal/domain"
	"route-pool-service/internal/platform/db"
	"route-pool-service/internal/ports"
	"route-pool-service/internal/selection"
	"route-pool-service/internal/services"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const redisDurationTTL = 30 * 24 * time.Hour

// OpenDB opens the configured database.
func OpenDB(cfg *config.Settings) (*sql.DB, error) {
	if cfg.DB.Driver == db.DriverPostgres {
		return db.OpenDriver(cfg.DB.Driver, cfg.DB.URL)
	}
	return db.OpenDriver(cfg.DB.Driver, cfg.DB.Path)
}

// LoadDataset reads the travel-time, location and demand tables.
func LoadDataset(cfg *config.Settings) (ds *tabular.Dataset, err error) {
	open := func(path string) io.ReadCloser {
		if err != nil {
			return nil
		}
		f, ferr := os.Open(path)
		if ferr != nil {
			err = fmt.Errorf("load dataset: %w", ferr)
			return nil
		}
		return f
	}

	tt := open(cfg.Data.TravelTimesCSV)
	locs := open(cfg.Data.LocationsCSV)
	demand := open(cfg.Data.DemandCSV)
	defer func() {
		for _, c := range []io.Closer{tt, locs, demand} {
			if c != nil {
				err = multierr.Append(err, c.Close())
			}
		}
	}()
	if err != nil {
		return nil, err
	}

	return tabular.LoadDataset(tt, locs, demand, cfg.Data.DepotName)
}

// DurationCache picks Redis when configured, otherwise the SQL table of the
// open database. The returned func releases the cache.
func DurationCache(cfg *config.Settings, conn *sql.DB, log *zap.Logger) (ports.DurationCache, func() error, error) {
	if cfg.RedisURL != "" {
		c, err := cache.NewRedisDurationCacheFromURL(cfg.RedisURL, redisDurationTTL, log)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	}

	nop := func() error { return nil }
	if cfg.DB.Driver == db.DriverPostgres {
		return cache.NewPostgresDurationCache(conn, log), nop, nil
	}
	return cache.NewSqliteDurationCache(conn, log), nop, nil
}

// TravelMatrix returns the dataset matrix, or a fresh one fetched from
// OpenRouteService when an API key is configured.
func TravelMatrix(
	ctx context.Context,
	cfg *config.Settings,
	conn *sql.DB,
	log *zap.Logger,
	ds *tabular.Dataset,
) (*domain.TravelMatrix, error) {
	if cfg.ORS.APIKey == "" {
		log.Info("using tabular travel times", zap.Int("locations", ds.Matrix.Len()))
		return ds.Matrix, nil
	}

	dc, release, err := DurationCache(cfg, conn, log)
	if err != nil {
		return nil, fmt.Errorf("travel matrix: %w", err)
	}
	defer func() {
		if cerr := release(); cerr != nil {
			log.Warn("close duration cache", zap.Error(cerr))
		}
	}()

	provider, err := distance.NewORSMatrixProvider(cfg.ORS.APIKey, dc, log, distance.ORSOptions{RatePerSec: cfg.ORS.RatePerSec})
	if err != nil {
		return nil, fmt.Errorf("travel matrix: %w", err)
	}
	return services.BuildTravelMatrix(ctx, log, ds.Depot, ds.Locations, provider, services.MatrixOptions{})
}

func Tuning(cfg *config.Settings) services.Tuning {
	return services.Tuning{
		PopulationSize: cfg.GA.PopulationSize,
		EliteCount:     cfg.GA.EliteCount,
		MutationRate:   cfg.GA.MutationRate,
		Generations:    cfg.GA.Generations,
	}
}

func GenerateOptions(cfg *config.Settings) services.GenerateOptions {
	return services.GenerateOptions{
		Plan: services.PlanOptions{
			MinCapacity:   cfg.Pool.MinCapacity,
			MaxCapacity:   cfg.Pool.MaxCapacity,
			NeighborDepth: cfg.Pool.NeighborDepth,
		},
		Workers:  cfg.Pool.Workers,
		Seed:     cfg.Pool.Seed,
		Distinct: cfg.Pool.Distinct,
	}
}

func CostModel(cfg *config.Settings) (selection.CostModel, error) {
	c := selection.CostModel{
		ServiceSecondsPerUnit: cfg.Cost.ServiceSecondsPerUnit,
		ShiftHours:            cfg.Cost.ShiftHours,
		HourlyRate:            cfg.Cost.HourlyRate,
		ShiftBlockCost:        cfg.Cost.ShiftBlockCost,
		RentedRouteCost:       cfg.Cost.RentedRouteCost,
		ForbiddenRouteCost:    cfg.Cost.ForbiddenRouteCost,
	}
	return c, c.Validate()
}

func Fleet(cfg *config.Settings) (domain.Fleet, error) {
	return domain.NewFleet(cfg.Cost.FleetSize, cfg.Pool.MaxCapacity)
}
