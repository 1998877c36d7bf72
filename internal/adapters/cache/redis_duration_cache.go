package cache

import (
	"context"
	"errors"
	"fmt"
	"route-pool-service/internal/platform/obs"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisDurationCache stores one hash per origin: field = destination,
// value = seconds. A positive TTL expires the whole origin row.
type RedisDurationCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisDurationCache(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *RedisDurationCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisDurationCache{rdb: rdb, prefix: "duration:", ttl: ttl, log: log}
}

// NewRedisDurationCacheFromURL parses a redis:// URL.
func NewRedisDurationCacheFromURL(url string, ttl time.Duration, log *zap.Logger) (*RedisDurationCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis duration cache: parse url: %w", err)
	}
	return NewRedisDurationCache(redis.NewClient(opt), ttl, log), nil
}

func (c *RedisDurationCache) key(origin string) string { return c.prefix + origin }

func (c *RedisDurationCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]float64, err error) {
	defer obs.Time(ctx, c.log, "duration.cache.redis.GetMany")(&err)

	if origin == "" {
		return nil, errors.New("get duration cache: origin must not be empty")
	}
	uniq := uniqueNames(destinations)
	if len(uniq) == 0 {
		return map[string]float64{}, nil
	}

	vals, err := c.rdb.HMGet(ctx, c.key(origin), uniq...).Result()
	if err != nil {
		return nil, fmt.Errorf("get duration cache: hmget %q: %w", origin, err)
	}

	out := make(map[string]float64, len(uniq))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		seconds, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("get duration cache: parse %q -> %q: %w", origin, uniq[i], err)
		}
		out[uniq[i]] = seconds
	}
	return out, nil
}

func (c *RedisDurationCache) PutMany(ctx context.Context, origin string, durations map[string]float64) error {
	if origin == "" {
		return errors.New("insert duration cache: origin must not be empty")
	}
	if len(durations) == 0 {
		return nil
	}

	fields := make(map[string]any, len(durations))
	for dest, seconds := range durations {
		if dest == "" {
			return errors.New("insert duration cache: empty destination key")
		}
		fields[dest] = strconv.FormatFloat(seconds, 'f', -1, 64)
	}

	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, c.key(origin), fields)
	if c.ttl > 0 {
		pipe.Expire(ctx, c.key(origin), c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert duration cache %q: %w", origin, err)
	}
	return nil
}

func (c *RedisDurationCache) Close() error { return c.rdb.Close() }
