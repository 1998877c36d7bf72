package dto

import "time"

// GeneratePoolRequest overrides the server's pool defaults. Every field is
// optional.
type GeneratePoolRequest struct {
	MinCapacity   *int   `json:"min_capacity"`
	MaxCapacity   *int   `json:"max_capacity"`
	NeighborDepth *int   `json:"neighbor_depth"`
	Workers       *int   `json:"workers"`
	Seed          *int64 `json:"seed"`
	Distinct      *bool  `json:"distinct"`
}

type PoolSummaryResponse struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Seed       int64     `json:"seed"`
	RouteCount int       `json:"route_count"`
	Failures   int       `json:"failures"`
}

type ListPoolsResponse struct {
	Pools []PoolSummaryResponse `json:"pools"`
}

// ProgressMessage is one websocket progress frame.
type ProgressMessage struct {
	Done     int    `json:"done"`
	Total    int    `json:"total"`
	Target   string `json:"target"`
	Capacity int    `json:"capacity"`
	Variant  int    `json:"variant"`
	Error    string `json:"error,omitempty"`
}

type SolutionRequest struct {
	Variables []string `json:"variables"`
}

type SelectedRouteResponse struct {
	Variable string   `json:"variable"`
	Stops    []string `json:"stops"`
	Distance float64  `json:"distance"`
	Demand   float64  `json:"demand"`
	Hired    bool     `json:"hired"`
	Cost     float64  `json:"cost"`
}

type SolutionResponse struct {
	TotalCost  float64                 `json:"total_cost"`
	OwnCount   int                     `json:"own_count"`
	HiredCount int                     `json:"hired_count"`
	Routes     []SelectedRouteResponse `json:"routes"`
}
