package repositories

import (
	"context"
	"errors"
	"route-pool-service/internal/domain"
	"route-pool-service/internal/ports"
	"sort"
	"sync"
)

// MemoryPoolStore keeps pools in process. It is safe for concurrent use.
type MemoryPoolStore struct {
	mu    sync.RWMutex
	pools map[string]*domain.CandidatePool
}

func NewMemoryPoolStore() *MemoryPoolStore {
	return &MemoryPoolStore{pools: make(map[string]*domain.CandidatePool)}
}

func (m *MemoryPoolStore) SavePool(_ context.Context, pool *domain.CandidatePool) error {
	if pool == nil || pool.ID == "" {
		return errors.New("save pool: pool must have an id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pools[pool.ID] = pool
	return nil
}

func (m *MemoryPoolStore) GetPool(_ context.Context, id string) (*domain.CandidatePool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.pools[id]
	if !ok {
		return nil, ports.ErrPoolNotFound
	}
	return p, nil
}

func (m *MemoryPoolStore) ListPools(_ context.Context, limit int) ([]ports.PoolSummary, error) {
	m.mu.RLock()
	out := make([]ports.PoolSummary, 0, len(m.pools))
	for _, p := range m.pools {
		out = append(out, ports.PoolSummary{
			ID:         p.ID,
			CreatedAt:  p.CreatedAt,
			Seed:       p.Seed,
			RouteCount: p.Len(),
			Failures:   len(p.Failures),
		})
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
