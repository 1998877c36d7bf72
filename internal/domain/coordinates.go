package domain

import (
	"fmt"
	"math"
)

// Coordinates is a WGS84 position in degrees.
type Coordinates struct {
	Lon float64
	Lat float64
}

// Valid reports an error for positions outside [-180, 180] x [-90, 90].
func (c Coordinates) Valid() error {
	if math.IsNaN(c.Lon) || c.Lon < -180 || c.Lon > 180 {
		return &ConfigurationError{Field: "longitude", Reason: fmt.Sprintf("%v is outside [-180, 180]", c.Lon)}
	}
	if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return &ConfigurationError{Field: "latitude", Reason: fmt.Sprintf("%v is outside [-90, 90]", c.Lat)}
	}
	return nil
}

// CoordsToList is the [lon, lat] pair ORS expects.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }
