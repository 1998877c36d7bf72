package cache

import (
	"context"
	"route-pool-service/internal/adapters/repositories"
	"route-pool-service/internal/platform/db"
	"route-pool-service/internal/ports"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSqliteCache(t *testing.T) *SqliteDurationCache {
	t.Helper()
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, repositories.InitSchema(context.Background(), conn))
	return NewSqliteDurationCache(conn, nil)
}

func newRedisCache(t *testing.T, ttl time.Duration) (*RedisDurationCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedisDurationCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), ttl, nil)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestDurationCaches(t *testing.T) {
	redisCache, _ := newRedisCache(t, 0)
	caches := map[string]ports.DurationCache{
		"sqlite": newSqliteCache(t),
		"redis":  redisCache,
	}

	for name, c := range caches {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			got, err := c.GetMany(ctx, "Warehouse", []string{"A", "B"})
			require.NoError(t, err)
			assert.Empty(t, got)

			require.NoError(t, c.PutMany(ctx, "Warehouse", map[string]float64{"A": 61.5, "B": 720}))
			require.NoError(t, c.PutMany(ctx, "Warehouse", map[string]float64{"A": 62}))

			got, err = c.GetMany(ctx, "Warehouse", []string{"A", " B ", "A", "C", ""})
			require.NoError(t, err)
			assert.Equal(t, map[string]float64{"A": 62, "B": 720}, got)

			other, err := c.GetMany(ctx, "A", []string{"Warehouse"})
			require.NoError(t, err)
			assert.Empty(t, other, "entries are directional")
		})
	}
}

func TestDurationCacheValidation(t *testing.T) {
	c := newSqliteCache(t)
	ctx := context.Background()

	_, err := c.GetMany(ctx, "", []string{"A"})
	assert.Error(t, err)
	assert.Error(t, c.PutMany(ctx, "W", map[string]float64{"": 1}))
	assert.NoError(t, c.PutMany(ctx, "W", nil))
}

func TestRedisDurationCacheExpires(t *testing.T) {
	c, mr := newRedisCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.PutMany(ctx, "W", map[string]float64{"A": 10}))
	assert.Equal(t, time.Minute, mr.TTL("duration:W"))

	mr.FastForward(2 * time.Minute)

	got, err := c.GetMany(ctx, "W", []string{"A"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUniqueNames(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, uniqueNames([]string{" A", "B", "", "A "}))
}
