package ports

import (
	"context"
	"errors"
	"route-pool-service/internal/domain"
	"time"
)

var ErrPoolNotFound = errors.New("candidate pool not found")

// PoolSummary is the listing view of a stored pool.
type PoolSummary struct {
	ID         string
	CreatedAt  time.Time
	Seed       int64
	RouteCount int
	Failures   int
}

// Persistence for generated candidate pools.
type CandidatePoolStore interface {
	SavePool(ctx context.Context, pool *domain.CandidatePool) error
	// Return ErrPoolNotFound when id is unknown.
	GetPool(ctx context.Context, id string) (*domain.CandidatePool, error)
	// Return the most recent pools first.
	ListPools(ctx context.Context, limit int) ([]PoolSummary, error)
}
