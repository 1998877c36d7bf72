package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"route-pool-service/internal/domain"
	"route-pool-service/internal/platform/db"
	"route-pool-service/internal/ports"
	"time"
)

// Fixed width so created_at sorts chronologically as text.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

type storedStop struct {
	Name   string  `json:"name"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Demand float64 `json:"demand"`
}

type storedFailure struct {
	Target   string `json:"target"`
	Capacity int    `json:"capacity"`
	Variant  int    `json:"variant"`
	Reason   string `json:"reason"`
}

// SQLPoolStore persists candidate pools in candidate_pools/candidate_routes.
// Stops are stored inline as JSON so a pool can be read back without the
// travel matrix it was built from.
type SQLPoolStore struct {
	DB     *sql.DB
	Driver string
}

func NewSQLPoolStore(conn *sql.DB, driver string) *SQLPoolStore {
	return &SQLPoolStore{DB: conn, Driver: driver}
}

func (s *SQLPoolStore) SavePool(ctx context.Context, pool *domain.CandidatePool) error {
	if s.DB == nil {
		return errors.New("save pool: DB is nil")
	}
	if pool == nil || pool.ID == "" {
		return errors.New("save pool: pool must have an id")
	}

	params, err := json.Marshal(pool.Params)
	if err != nil {
		return fmt.Errorf("save pool: marshal params: %w", err)
	}
	failures := make([]storedFailure, len(pool.Failures))
	for i, f := range pool.Failures {
		failures[i] = storedFailure(f)
	}
	failuresJSON, err := json.Marshal(failures)
	if err != nil {
		return fmt.Errorf("save pool: marshal failures: %w", err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save pool: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, db.Rebind(s.Driver, `
	INSERT INTO candidate_pools (id, created_at, seed, route_count, params, failures)
	VALUES (?, ?, ?, ?, ?, ?)
	`), pool.ID, pool.CreatedAt.UTC().Format(createdAtLayout), pool.Seed, pool.Len(), string(params), string(failuresJSON)); err != nil {
		return fmt.Errorf("save pool %s: insert pool: %w", pool.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, db.Rebind(s.Driver, `
	INSERT INTO candidate_routes (pool_id, position, stops, distance, demand)
	VALUES (?, ?, ?, ?, ?)
	`))
	if err != nil {
		return fmt.Errorf("save pool %s: prepare routes: %w", pool.ID, err)
	}
	defer stmt.Close()

	for i, r := range pool.Routes() {
		stops := make([]storedStop, 0, r.Len())
		for _, l := range r.Stops() {
			stops = append(stops, storedStop{Name: l.Name, Lat: l.Coordinates.Lat, Lon: l.Coordinates.Lon, Demand: l.Demand})
		}
		b, err := json.Marshal(stops)
		if err != nil {
			return fmt.Errorf("save pool %s: marshal route %d: %w", pool.ID, i, err)
		}
		if _, err := stmt.ExecContext(ctx, pool.ID, i, string(b), r.Distance(), r.Demand()); err != nil {
			return fmt.Errorf("save pool %s: insert route %d: %w", pool.ID, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save pool %s: commit tx: %w", pool.ID, err)
	}
	return nil
}

func (s *SQLPoolStore) GetPool(ctx context.Context, id string) (*domain.CandidatePool, error) {
	if s.DB == nil {
		return nil, errors.New("get pool: DB is nil")
	}

	var (
		createdAt    string
		seed         int64
		count        int
		paramsJSON   string
		failuresJSON string
	)
	err := s.DB.QueryRowContext(ctx, db.Rebind(s.Driver, `
	SELECT created_at, seed, route_count, params, failures
	FROM candidate_pools
	WHERE id = ?
	`), id).Scan(&createdAt, &seed, &count, &paramsJSON, &failuresJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrPoolNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pool %s: %w", id, err)
	}

	created, err := time.Parse(createdAtLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("get pool %s: parse created_at: %w", id, err)
	}

	rows, err := s.DB.QueryContext(ctx, db.Rebind(s.Driver, `
	SELECT stops, distance
	FROM candidate_routes
	WHERE pool_id = ?
	ORDER BY position
	`), id)
	if err != nil {
		return nil, fmt.Errorf("get pool %s: query routes: %w", id, err)
	}
	defer rows.Close()

	routes := make([]domain.Route, 0, count)
	for rows.Next() {
		var stopsJSON string
		var distance float64
		if err := rows.Scan(&stopsJSON, &distance); err != nil {
			return nil, fmt.Errorf("get pool %s: scan route: %w", id, err)
		}

		var stored []storedStop
		if err := json.Unmarshal([]byte(stopsJSON), &stored); err != nil {
			return nil, fmt.Errorf("get pool %s: decode route stops: %w", id, err)
		}
		stops := make([]domain.Location, len(stored))
		for i, st := range stored {
			stops[i] = domain.Location{Name: st.Name, Coordinates: domain.Coordinates{Lon: st.Lon, Lat: st.Lat}, Demand: st.Demand}
		}

		r, err := domain.RestoreRoute(stops, distance)
		if err != nil {
			return nil, fmt.Errorf("get pool %s: %w", id, err)
		}
		routes = append(routes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get pool %s: row iteration: %w", id, err)
	}

	pool := domain.NewCandidatePool(id, created, seed, routes)
	if err := json.Unmarshal([]byte(paramsJSON), &pool.Params); err != nil {
		return nil, fmt.Errorf("get pool %s: decode params: %w", id, err)
	}
	var failures []storedFailure
	if err := json.Unmarshal([]byte(failuresJSON), &failures); err != nil {
		return nil, fmt.Errorf("get pool %s: decode failures: %w", id, err)
	}
	for _, f := range failures {
		pool.Failures = append(pool.Failures, domain.TaskFailure(f))
	}

	return pool, nil
}

func (s *SQLPoolStore) ListPools(ctx context.Context, limit int) ([]ports.PoolSummary, error) {
	if s.DB == nil {
		return nil, errors.New("list pools: DB is nil")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.DB.QueryContext(ctx, db.Rebind(s.Driver, `
	SELECT id, created_at, seed, route_count, failures
	FROM candidate_pools
	ORDER BY created_at DESC
	LIMIT ?
	`), limit)
	if err != nil {
		return nil, fmt.Errorf("list pools: query: %w", err)
	}
	defer rows.Close()

	var out []ports.PoolSummary
	for rows.Next() {
		var (
			sum          ports.PoolSummary
			createdAt    string
			failuresJSON string
		)
		if err := rows.Scan(&sum.ID, &createdAt, &sum.Seed, &sum.RouteCount, &failuresJSON); err != nil {
			return nil, fmt.Errorf("list pools: scan row: %w", err)
		}
		if sum.CreatedAt, err = time.Parse(createdAtLayout, createdAt); err != nil {
			return nil, fmt.Errorf("list pools: parse created_at: %w", err)
		}
		var failures []storedFailure
		if err := json.Unmarshal([]byte(failuresJSON), &failures); err != nil {
			return nil, fmt.Errorf("list pools: decode failures: %w", err)
		}
		sum.Failures = len(failures)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pools: row iteration: %w", err)
	}
	return out, nil
}
