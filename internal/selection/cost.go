// Package selection turns a candidate pool into the set-partitioning model
// solved by an external integer-programming solver, and decodes the solver's
// chosen columns back into routes.
package selection

import (
	"fmt"
	"math"
	"route-pool-service/internal/domain"
)

// CostModel prices a route from its travel time plus per-unit unloading time.
type CostModel struct {
	ServiceSecondsPerUnit float64
	ShiftHours            float64
	HourlyRate            float64
	// ShiftBlockCost is charged per started shift once a route overruns one shift.
	ShiftBlockCost float64
	// RentedRouteCost is the flat price of a hired vehicle doing a route within one shift.
	RentedRouteCost float64
	// ForbiddenRouteCost prices hired routes that overrun a shift out of any solution.
	ForbiddenRouteCost float64
}

func DefaultCostModel() CostModel {
	return CostModel{
		ServiceSecondsPerUnit: 300,
		ShiftHours:            4,
		HourlyRate:            150,
		ShiftBlockCost:        1200,
		RentedRouteCost:       1200,
		ForbiddenRouteCost:    1_000_000,
	}
}

func (c CostModel) Validate() error {
	checks := []struct {
		field string
		v     float64
	}{
		{"service seconds per unit", c.ServiceSecondsPerUnit},
		{"hourly rate", c.HourlyRate},
		{"shift block cost", c.ShiftBlockCost},
		{"rented route cost", c.RentedRouteCost},
		{"forbidden route cost", c.ForbiddenRouteCost},
	}
	for _, ch := range checks {
		if ch.v < 0 || math.IsNaN(ch.v) || math.IsInf(ch.v, 0) {
			return &domain.ConfigurationError{Field: ch.field, Reason: fmt.Sprintf("must be a non-negative number, got %v", ch.v)}
		}
	}
	if !(c.ShiftHours > 0) {
		return &domain.ConfigurationError{Field: "shift hours", Reason: fmt.Sprintf("must be positive, got %v", c.ShiftHours)}
	}
	return nil
}

// RouteHours is travel plus service time in hours. Travel costs are seconds.
func (c CostModel) RouteHours(r domain.Route) float64 {
	return (r.Distance() + r.Demand()*c.ServiceSecondsPerUnit) / 3600
}

// OwnCost prices the route on an owned vehicle: hourly, rounded to a tenth
// of an hour, within a shift; per started shift block beyond it.
func (c CostModel) OwnCost(r domain.Route) float64 {
	h := c.RouteHours(r)
	if h > c.ShiftHours {
		return c.ShiftBlockCost * (math.Floor(h/c.ShiftHours) + 1)
	}
	return math.Round(h*10) * c.HourlyRate / 10
}

// HiredCost prices the route on a hired vehicle.
func (c CostModel) HiredCost(r domain.Route) float64 {
	if c.RouteHours(r) > c.ShiftHours {
		return c.ForbiddenRouteCost
	}
	return c.RentedRouteCost
}
