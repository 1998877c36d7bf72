package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"route-pool-service/internal/domain"
	"route-pool-service/internal/platform/db"
)

// SQL-backed implementation of the LocationRepository port.
type SQLLocationRepository struct {
	DB     *sql.DB
	Driver string
}

func NewSQLLocationRepository(conn *sql.DB, driver string) *SQLLocationRepository {
	return &SQLLocationRepository{DB: conn, Driver: driver}
}

func (s *SQLLocationRepository) GetDepot(ctx context.Context) (domain.Location, error) {
	locs, err := s.query(ctx, kindDepot)
	if err != nil {
		return domain.Location{}, fmt.Errorf("get depot: %w", err)
	}
	if len(locs) != 1 {
		return domain.Location{}, fmt.Errorf("get depot: expected exactly one depot, found %d", len(locs))
	}
	return locs[0], nil
}

// Return all demand locations in seeded order.
func (s *SQLLocationRepository) ListLocations(ctx context.Context) ([]domain.Location, error) {
	locs, err := s.query(ctx, kindStore)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locs, nil
}

func (s *SQLLocationRepository) query(ctx context.Context, kind string) ([]domain.Location, error) {
	if s.DB == nil {
		return nil, errors.New("sql location repository: DB is nil")
	}

	query := db.Rebind(s.Driver, `
	SELECT
		name,
		lat,
		lon,
		demand
	FROM locations
	WHERE kind = ?
	ORDER BY position;
	`)
	rows, err := s.DB.QueryContext(ctx, query, kind)
	if err != nil {
		return nil, fmt.Errorf("query locations table: %w", err)
	}
	defer rows.Close()

	locs := make([]domain.Location, 0, 64)
	for rows.Next() {
		var name string
		var lat, lon, demand float64
		if err := rows.Scan(&name, &lat, &lon, &demand); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		loc, err := domain.NewLocation(name, domain.Coordinates{Lon: lon, Lat: lat}, demand)
		if err != nil {
			return nil, err
		}
		locs = append(locs, loc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}

	return locs, nil
}
