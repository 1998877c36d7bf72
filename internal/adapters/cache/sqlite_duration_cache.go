package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"route-pool-service/internal/platform/obs"
	"strings"

	"go.uber.org/zap"
)

// SQLite backed cache for origin->destination durations.
// Keys are expected to be consistent location names.
type SqliteDurationCache struct {
	DB  *sql.DB
	Log *zap.Logger
}

func NewSqliteDurationCache(db *sql.DB, log *zap.Logger) *SqliteDurationCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &SqliteDurationCache{DB: db, Log: log}
}

// Fetch cached durations for one origin and multiple destinations.
func (s *SqliteDurationCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]float64, err error) {
	defer obs.Time(ctx, s.Log, "duration.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("duration cache: db is nil")
	}
	if origin == "" {
		return nil, errors.New("get duration cache: origin must not be empty")
	}

	uniq := uniqueNames(destinations)
	if len(uniq) == 0 {
		return map[string]float64{}, nil
	}

	args := make([]any, 0, 1+len(uniq))
	args = append(args, origin)
	for _, d := range uniq {
		args = append(args, d)
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT destination, duration_seconds
	FROM duration_cache
	WHERE origin = ?
		AND destination IN (%s);
	`, strings.TrimSuffix(strings.Repeat("?,", len(uniq)), ","))

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get duration cache: query duration_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64, len(uniq))
	for rows.Next() {
		var dest string
		var seconds float64
		if err := rows.Scan(&dest, &seconds); err != nil {
			return nil, fmt.Errorf("get duration cache: scan rows: %w", err)
		}
		out[dest] = seconds
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get duration cache: row iteration: %w", err)
	}

	return out, nil
}

// Store many cached durations for a single origin.
func (s *SqliteDurationCache) PutMany(ctx context.Context, origin string, durations map[string]float64) error {
	if s.DB == nil {
		return errors.New("duration cache: db is nil")
	}
	if origin == "" {
		return errors.New("insert duration cache: origin must not be empty")
	}
	if len(durations) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert duration cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO duration_cache (
		origin,
		destination,
		duration_seconds
	)
	VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("insert duration cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for dest, seconds := range durations {
		if strings.TrimSpace(dest) == "" {
			return errors.New("insert duration cache: empty destination key")
		}
		if _, err := stmt.ExecContext(ctx, origin, dest, seconds); err != nil {
			return fmt.Errorf("insert duration cache dest=%q: %w", dest, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert duration cache commit: %w", err)
	}

	return nil
}
