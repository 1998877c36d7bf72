package ports

import "context"

// Cache of origin -> destination travel durations in seconds.
type DurationCache interface {
	// Return the cached subset of destinations; misses are simply absent.
	GetMany(ctx context.Context, origin string, destinations []string) (map[string]float64, error)
	PutMany(ctx context.Context, origin string, durations map[string]float64) error
}
