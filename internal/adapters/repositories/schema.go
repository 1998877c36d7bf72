package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"route-pool-service/internal/domain"
	"route-pool-service/internal/platform/db"
)

// Initialize the database schema. The statements are valid for both
// SQLite and Postgres.
func InitSchema(ctx context.Context, conn *sql.DB) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createLocationsQuery := `
	CREATE TABLE IF NOT EXISTS locations (
		name TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		position INTEGER NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		demand DOUBLE PRECISION NOT NULL
	);
	`

	createDurationCacheQuery := `
	CREATE TABLE IF NOT EXISTS duration_cache (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		duration_seconds DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (origin, destination)
	);
	`

	createPoolsQuery := `
	CREATE TABLE IF NOT EXISTS candidate_pools (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		seed BIGINT NOT NULL,
		route_count INTEGER NOT NULL,
		params TEXT NOT NULL,
		failures TEXT NOT NULL
	);
	`

	createRoutesQuery := `
	CREATE TABLE IF NOT EXISTS candidate_routes (
		pool_id TEXT NOT NULL REFERENCES candidate_pools(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		stops TEXT NOT NULL,
		distance DOUBLE PRECISION NOT NULL,
		demand DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (pool_id, position)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_duration_cache_destination_origin
	ON duration_cache(destination, origin);
	`

	statements := []string{
		createLocationsQuery,
		createDurationCacheQuery,
		createPoolsQuery,
		createRoutesQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

const (
	kindDepot = "depot"
	kindStore = "store"
)

// SeedLocations replaces the depot and demand locations. Demand locations keep
// their slice order through the position column.
func SeedLocations(
	ctx context.Context,
	conn *sql.DB,
	driver string,
	depot domain.Location,
	locations []domain.Location,
) error {
	if conn == nil {
		return errors.New("seed locations: DB is nil")
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed locations: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM locations`); err != nil {
		return fmt.Errorf("seed locations: clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, db.Rebind(driver, `
	INSERT INTO locations (name, kind, position, lat, lon, demand)
	VALUES (?, ?, ?, ?, ?, ?)
	`))
	if err != nil {
		return fmt.Errorf("seed locations: prepare insert: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, depot.Name, kindDepot, 0, depot.Coordinates.Lat, depot.Coordinates.Lon, 0.0); err != nil {
		return fmt.Errorf("seed locations: insert depot %q: %w", depot.Name, err)
	}
	for i, l := range locations {
		if l.Name == depot.Name {
			return fmt.Errorf("seed locations: %q is both depot and demand location", l.Name)
		}
		if _, err := stmt.ExecContext(ctx, l.Name, kindStore, i+1, l.Coordinates.Lat, l.Coordinates.Lon, l.Demand); err != nil {
			return fmt.Errorf("seed locations: insert %q: %w", l.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed locations: commit tx: %w", err)
	}

	return nil
}
