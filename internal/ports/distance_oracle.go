package ports

import "route-pool-service/internal/domain"

// DistanceOracle is a read-only, synchronous travel-cost lookup between named
// locations. Implementations must be safe for concurrent use.
type DistanceOracle interface {
	domain.CostLookup
}
