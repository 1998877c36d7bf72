package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"route-pool-service/internal/adapters/repositories"
	"route-pool-service/internal/api"
	"route-pool-service/internal/api/handlers"
	"route-pool-service/internal/app"
	"route-pool-service/internal/config"
	"route-pool-service/internal/platform/logging"
	"route-pool-service/internal/platform/metrics"
	"route-pool-service/internal/ports"
	"route-pool-service/internal/services"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const progressLogEvery = 100

// main is the application composition root.
// It wires concrete adapters (SQL, CSV, ORS) behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Settings, logger *zap.Logger) error {
	if !cfg.EnvFileLoaded {
		logger.Info("no .env file found (using environment variables)")
	}
	metrics.RegisterDefault()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := app.OpenDB(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := repositories.InitSchema(ctx, conn); err != nil {
		return err
	}

	// Load the CSV tables and mirror the locations into the database on startup.
	ds, err := app.LoadDataset(cfg)
	if err != nil {
		return err
	}
	if err := repositories.SeedLocations(ctx, conn, cfg.DB.Driver, ds.Depot, ds.Locations); err != nil {
		return err
	}

	matrix, err := app.TravelMatrix(ctx, cfg, conn, logger, ds)
	if err != nil {
		return err
	}

	optimizer, err := services.NewGeneticRouteOptimizer(app.Tuning(cfg))
	if err != nil {
		return err
	}
	fleet, err := app.Fleet(cfg)
	if err != nil {
		return err
	}
	cost, err := app.CostModel(cfg)
	if err != nil {
		return err
	}

	hub := handlers.NewProgressHub(logger)
	progress := ports.MultiProgress{hub, services.ProgressLogger{Log: logger, Every: progressLogEvery}}
	locRepo := repositories.NewSQLLocationRepository(conn, cfg.DB.Driver)

	router := api.NewRouter(
		logger,
		&handlers.LocationHandler{Repo: locRepo, Log: logger},
		&handlers.PoolHandler{
			Locations: locRepo,
			Store:     repositories.NewSQLPoolStore(conn, cfg.DB.Driver),
			Generator: services.NewCandidatePoolGenerator(matrix, optimizer, logger, progress),
			Defaults:  app.GenerateOptions(cfg),
			Fleet:     fleet,
			Cost:      cost,
			Log:       logger,
		},
		hub,
	)

	// Timeouts are tuned for synchronous pool generation on large location sets.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
