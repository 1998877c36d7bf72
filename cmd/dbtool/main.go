package main

import (
	"context"
	"database/sql"
	"log"
	"route-pool-service/internal/adapters/repositories"
	"route-pool-service/internal/app"
	"route-pool-service/internal/config"
	"route-pool-service/internal/platform/logging"

	"go.uber.org/zap"
)

// dbtool creates the schema and loads the CSV location tables into the
// configured database.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(config.Get("DBTOOL_LOG_LEVEL", cfg.LogLevel), cfg.LogDev)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if !cfg.EnvFileLoaded {
		logger.Info("no .env file found (using environment variables)")
	}

	conn, err := app.OpenDB(cfg)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	if err := initAndSeed(context.Background(), logger, conn, cfg); err != nil {
		logger.Fatal("dbtool failed", zap.Error(err))
	}
}

func initAndSeed(ctx context.Context, logger *zap.Logger, conn *sql.DB, cfg *config.Settings) error {
	logger.Info("initializing database schema", zap.String("driver", cfg.DB.Driver))
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return err
	}
	logger.Info("schema ready")

	ds, err := app.LoadDataset(cfg)
	if err != nil {
		return err
	}

	logger.Info("seeding locations", zap.Int("locations", len(ds.Locations)))
	if err := repositories.SeedLocations(ctx, conn, cfg.DB.Driver, ds.Depot, ds.Locations); err != nil {
		return err
	}
	logger.Info("seeding complete")
	return nil
}
