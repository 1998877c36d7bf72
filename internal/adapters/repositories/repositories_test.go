package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"route-pool-service/internal/domain"
	"route-pool-service/internal/platform/db"
	"route-pool-service/internal/ports"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, InitSchema(context.Background(), conn))
	return conn
}

func testLocations() (domain.Location, []domain.Location) {
	depot := domain.Location{Name: "Warehouse", Coordinates: domain.Coordinates{Lon: 174.8, Lat: -36.9}}
	return depot, []domain.Location{
		{Name: "Store B", Coordinates: domain.Coordinates{Lon: 174.7, Lat: -36.8}, Demand: 4},
		{Name: "Store A", Coordinates: domain.Coordinates{Lon: 174.6, Lat: -36.7}, Demand: 6},
	}
}

func TestInitSchemaIsIdempotent(t *testing.T) {
	conn := openTestDB(t)
	require.NoError(t, InitSchema(context.Background(), conn))
}

func TestSeedAndListLocations(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	depot, locs := testLocations()

	require.NoError(t, SeedLocations(ctx, conn, db.DriverSQLite, depot, locs))
	// Re-seeding replaces rather than duplicates.
	require.NoError(t, SeedLocations(ctx, conn, db.DriverSQLite, depot, locs))

	repo := NewSQLLocationRepository(conn, db.DriverSQLite)

	gotDepot, err := repo.GetDepot(ctx)
	require.NoError(t, err)
	assert.Equal(t, depot, gotDepot)

	got, err := repo.ListLocations(ctx)
	require.NoError(t, err)
	assert.Equal(t, locs, got, "seeded order is preserved")
}

func TestSeedLocationsRejectsDepotAsStore(t *testing.T) {
	conn := openTestDB(t)
	depot, locs := testLocations()
	locs = append(locs, depot)

	err := SeedLocations(context.Background(), conn, db.DriverSQLite, depot, locs)
	assert.Error(t, err)
}

func testPool(t *testing.T, id string, created time.Time) *domain.CandidatePool {
	t.Helper()
	depot, locs := testLocations()

	r1, err := domain.RestoreRoute([]domain.Location{depot, locs[0]}, 120)
	require.NoError(t, err)
	r2, err := domain.RestoreRoute([]domain.Location{depot, locs[1], locs[0]}, 300.5)
	require.NoError(t, err)

	p := domain.NewCandidatePool(id, created, 42, []domain.Route{r1, r2})
	p.Params = domain.PoolParams{MinCapacity: 1, MaxCapacity: 12, NeighborDepth: 4}
	p.Failures = []domain.TaskFailure{{Target: "Store C", Capacity: 12, Reason: "capacity violation"}}
	return p
}

func poolStores(t *testing.T) map[string]ports.CandidatePoolStore {
	return map[string]ports.CandidatePoolStore{
		"sql":    NewSQLPoolStore(openTestDB(t), db.DriverSQLite),
		"memory": NewMemoryPoolStore(),
	}
}

func TestPoolStoreRoundTrip(t *testing.T) {
	for name, store := range poolStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
			want := testPool(t, "pool-1", created)

			require.NoError(t, store.SavePool(ctx, want))

			got, err := store.GetPool(ctx, "pool-1")
			require.NoError(t, err)

			assert.Equal(t, want.ID, got.ID)
			assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
			assert.Equal(t, want.Seed, got.Seed)
			assert.Equal(t, want.Params, got.Params)
			assert.Equal(t, want.Failures, got.Failures)
			require.Equal(t, want.Len(), got.Len())
			for i := range want.Routes() {
				assert.Equal(t, want.Route(i).Names(), got.Route(i).Names())
				assert.Equal(t, want.Route(i).Distance(), got.Route(i).Distance())
				assert.Equal(t, want.Route(i).Demand(), got.Route(i).Demand())
			}
		})
	}
}

func TestPoolStoreNotFound(t *testing.T) {
	for name, store := range poolStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.GetPool(context.Background(), "missing")
			assert.ErrorIs(t, err, ports.ErrPoolNotFound)
		})
	}
}

func TestPoolStoreListNewestFirst(t *testing.T) {
	for name, store := range poolStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
			for i := 0; i < 3; i++ {
				require.NoError(t, store.SavePool(ctx, testPool(t, fmt.Sprintf("p%d", i), base.Add(time.Duration(i)*time.Minute))))
			}

			got, err := store.ListPools(ctx, 2)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "p2", got[0].ID)
			assert.Equal(t, "p1", got[1].ID)
			assert.Equal(t, 2, got[0].RouteCount)
			assert.Equal(t, 1, got[0].Failures)
		})
	}
}
