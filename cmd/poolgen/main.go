package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"route-pool-service/internal/adapters/export"
	"route-pool-service/internal/app"
	"route-pool-service/internal/config"
	"route-pool-service/internal/platform/logging"
	"route-pool-service/internal/selection"
	"route-pool-service/internal/services"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// poolgen generates one candidate pool from the CSV tables and writes it,
// plus optionally its LP model, to files.
func main() {
	out := flag.String("out", "candidate_pool.json", "pool output file (.json, .yaml or .yml)")
	lpOut := flag.String("lp", "", "write the set-partitioning model to this file")
	seed := flag.Int64("seed", 0, "random seed (0 picks one from the clock)")
	workers := flag.Int("workers", 0, "concurrent tasks (0 uses GOMAXPROCS)")
	distinct := flag.Bool("distinct", false, "keep only the cheapest route per stop set")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	opts := app.GenerateOptions(cfg)
	if *seed != 0 {
		opts.Seed = *seed
	}
	if *workers != 0 {
		opts.Workers = *workers
	}
	if *distinct {
		opts.Distinct = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, logger, opts, *out, *lpOut); err != nil {
		logger.Fatal("poolgen failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Settings, logger *zap.Logger, opts services.GenerateOptions, out, lpOut string) error {
	ds, err := app.LoadDataset(cfg)
	if err != nil {
		return err
	}

	matrix := ds.Matrix
	if cfg.ORS.APIKey != "" {
		conn, err := app.OpenDB(cfg)
		if err != nil {
			return err
		}
		defer conn.Close()
		if matrix, err = app.TravelMatrix(ctx, cfg, conn, logger, ds); err != nil {
			return err
		}
	}

	optimizer, err := services.NewGeneticRouteOptimizer(app.Tuning(cfg))
	if err != nil {
		return err
	}
	gen := services.NewCandidatePoolGenerator(matrix, optimizer, logger, services.ProgressLogger{Log: logger, Every: 500})

	pool, err := gen.Generate(ctx, ds.Depot, ds.Locations, opts)
	if pool == nil {
		return err
	}
	for _, e := range multierr.Errors(err) {
		var te *services.TaskError
		if errors.As(e, &te) {
			logger.Warn("task failed", zap.Stringer("task", te.Item), zap.Error(te.Err))
		}
	}

	if err := writeFile(out, func(w io.Writer) error {
		return export.Write(w, pool, export.FormatFromPath(out))
	}); err != nil {
		return err
	}
	logger.Info("candidate pool written", zap.String("path", out), zap.Int("routes", pool.Len()))

	if lpOut == "" {
		return nil
	}

	fleet, err := app.Fleet(cfg)
	if err != nil {
		return err
	}
	cost, err := app.CostModel(cfg)
	if err != nil {
		return err
	}
	stops := make([]string, len(ds.Locations))
	for i, l := range ds.Locations {
		stops[i] = l.Name
	}
	model, err := selection.NewModel(pool, stops, fleet, cost)
	if err != nil {
		return err
	}
	if err := writeFile(lpOut, model.WriteLP); err != nil {
		return err
	}
	logger.Info("selection model written", zap.String("path", lpOut), zap.Int("columns", len(model.Columns())))
	return nil
}

func writeFile(path string, write func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	return write(f)
}
