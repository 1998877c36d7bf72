package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"route-pool-service/internal/domain"
	"strings"
)

type matrixRequest struct {
	Locations    [][]float64 `json:"locations"`
	Destinations []int       `json:"destinations"`
	Metrics      []string    `json:"metrics"`
	Sources      []int       `json:"sources"`
}

type matrixResponse struct {
	Durations [][]*float64 `json:"durations"`
}

// fetchMatrixRow retrieves durations from one origin to many destinations
// using the OpenRouteService matrix endpoint.
func (o *ORSMatrixProvider) fetchMatrixRow(
	ctx context.Context,
	origin domain.Location,
	destinations []domain.Location,
) (map[string]float64, error) {
	if len(destinations) == 0 {
		return map[string]float64{}, nil
	}

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	locations := make([][]float64, 0, 1+len(destinations))
	locations = append(locations, origin.Coordinates.CoordsToList())
	destIdx := make([]int, 0, len(destinations))
	for i, d := range destinations {
		locations = append(locations, d.Coordinates.CoordsToList())
		destIdx = append(destIdx, i+1)
	}

	payload, err := json.Marshal(matrixRequest{
		Locations:    locations,
		Destinations: destIdx,
		Metrics:      []string{"duration"},
		Sources:      []int{0},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decode matrix response: %w", err)
	}

	if len(mr.Durations) != 1 {
		return nil, fmt.Errorf("expected 1 source row; got durations=%d", len(mr.Durations))
	}
	row := mr.Durations[0]
	if len(row) != len(destinations) {
		return nil, fmt.Errorf("row length %d does not match %d destinations", len(row), len(destinations))
	}

	out := make(map[string]float64, len(destinations))
	var unroutable []string
	for i, d := range destinations {
		// ORS reports null for pairs it cannot route.
		if row[i] == nil {
			unroutable = append(unroutable, d.Name)
			continue
		}
		out[d.Name] = *row[i]
	}
	if len(unroutable) > 0 {
		return nil, fmt.Errorf("ORS matrix service returned no duration for: %s", strings.Join(unroutable, ", "))
	}

	return out, nil
}
