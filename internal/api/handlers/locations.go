package handlers

import (
	"net/http"
	"route-pool-service/internal/api/dto"
	"route-pool-service/internal/domain"
	"route-pool-service/internal/ports"

	"go.uber.org/zap"
)

// LocationHandler exposes the depot and demand locations.
type LocationHandler struct {
	Repo ports.LocationRepository
	Log  *zap.Logger
}

func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowOnly(h.Log, w, r, http.MethodGet) {
		return
	}

	depot, err := h.Repo.GetDepot(r.Context())
	if err != nil {
		writeServiceError(h.Log, w, r, "get depot", err)
		return
	}
	locs, err := h.Repo.ListLocations(r.Context())
	if err != nil {
		writeServiceError(h.Log, w, r, "list locations", err)
		return
	}

	res := dto.ListLocationsResponse{
		Depot:     toLocationResponse(depot),
		Locations: make([]dto.LocationResponse, 0, len(locs)),
	}
	for _, l := range locs {
		res.Locations = append(res.Locations, toLocationResponse(l))
	}

	writeJSON(h.Log, w, r, http.StatusOK, res)
}

func toLocationResponse(l domain.Location) dto.LocationResponse {
	return dto.LocationResponse{
		Name:   l.Name,
		Lat:    l.Coordinates.Lat,
		Lon:    l.Coordinates.Lon,
		Demand: l.Demand,
	}
}
