package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"route-pool-service/internal/adapters/export"
	"route-pool-service/internal/api/dto"
	"route-pool-service/internal/domain"
	"route-pool-service/internal/ports"
	"route-pool-service/internal/selection"
	"route-pool-service/internal/services"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"
)

// PoolGenerator builds a candidate pool for a depot and its locations.
type PoolGenerator interface {
	Generate(ctx context.Context, depot domain.Location, locations []domain.Location, opts services.GenerateOptions) (*domain.CandidatePool, error)
}

// PoolHandler generates, stores and serves candidate pools.
// Only one generation runs at a time.
type PoolHandler struct {
	Locations ports.LocationRepository
	Store     ports.CandidatePoolStore
	Generator PoolGenerator
	Defaults  services.GenerateOptions
	Fleet     domain.Fleet
	Cost      selection.CostModel
	Log       *zap.Logger

	running atomic.Bool
}

// Collection serves /candidate-pools.
func (h *PoolHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.Create(w, r)
	case http.MethodGet:
		h.List(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(h.Log, w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *PoolHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.GeneratePoolRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(h.Log, w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(h.Log, w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	opts := h.options(req)
	if err := opts.Plan.Validate(); err != nil {
		writeError(h.Log, w, r, http.StatusBadRequest, err.Error())
		return
	}
	if opts.Workers < 0 {
		writeError(h.Log, w, r, http.StatusBadRequest, "workers must not be negative")
		return
	}

	if !h.running.CompareAndSwap(false, true) {
		writeError(h.Log, w, r, http.StatusConflict, "a candidate pool generation is already running")
		return
	}
	defer h.running.Store(false)

	depot, err := h.Locations.GetDepot(r.Context())
	if err != nil {
		writeServiceError(h.Log, w, r, "get depot", err)
		return
	}
	locs, err := h.Locations.ListLocations(r.Context())
	if err != nil {
		writeServiceError(h.Log, w, r, "list locations", err)
		return
	}

	pool, err := h.Generator.Generate(r.Context(), depot, locs, opts)
	if pool == nil {
		writeServiceError(h.Log, w, r, "generate candidate pool", err)
		return
	}
	if err != nil {
		h.Log.Warn("candidate pool generated with failures",
			zap.String("pool_id", pool.ID),
			zap.Int("failures", len(pool.Failures)),
		)
	}

	if err := h.Store.SavePool(r.Context(), pool); err != nil {
		writeServiceError(h.Log, w, r, "save candidate pool", err)
		return
	}

	w.Header().Set("Location", "/candidate-pools/"+pool.ID)
	writeJSON(h.Log, w, r, http.StatusCreated, export.NewDocument(pool))
}

func (h *PoolHandler) options(req dto.GeneratePoolRequest) services.GenerateOptions {
	opts := h.Defaults
	if req.MinCapacity != nil {
		opts.Plan.MinCapacity = *req.MinCapacity
	}
	if req.MaxCapacity != nil {
		opts.Plan.MaxCapacity = *req.MaxCapacity
	}
	if req.NeighborDepth != nil {
		opts.Plan.NeighborDepth = *req.NeighborDepth
	}
	if req.Workers != nil {
		opts.Workers = *req.Workers
	}
	if req.Seed != nil {
		opts.Seed = *req.Seed
	}
	if req.Distinct != nil {
		opts.Distinct = *req.Distinct
	}
	return opts
}

func (h *PoolHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(h.Log, w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	pools, err := h.Store.ListPools(r.Context(), limit)
	if err != nil {
		writeServiceError(h.Log, w, r, "list candidate pools", err)
		return
	}

	res := dto.ListPoolsResponse{Pools: make([]dto.PoolSummaryResponse, 0, len(pools))}
	for _, p := range pools {
		res.Pools = append(res.Pools, dto.PoolSummaryResponse(p))
	}
	writeJSON(h.Log, w, r, http.StatusOK, res)
}

// Get serves one pool as JSON, or YAML with ?format=yaml.
func (h *PoolHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !allowOnly(h.Log, w, r, http.MethodGet) {
		return
	}

	pool, err := h.Store.GetPool(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(h.Log, w, r, "get candidate pool", err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", export.FormatJSON:
		writeJSON(h.Log, w, r, http.StatusOK, export.NewDocument(pool))
	case export.FormatYAML:
		var buf bytes.Buffer
		if err := export.Write(&buf, pool, export.FormatYAML); err != nil {
			writeServiceError(h.Log, w, r, "export candidate pool", err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(buf.Bytes())
	default:
		writeError(h.Log, w, r, http.StatusBadRequest, "format must be json or yaml")
	}
}

// Model serves the set-partitioning model of a pool in LP format.
func (h *PoolHandler) Model(w http.ResponseWriter, r *http.Request) {
	if !allowOnly(h.Log, w, r, http.MethodGet) {
		return
	}

	model, ok := h.selectionModel(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := model.WriteLP(&buf); err != nil {
		writeServiceError(h.Log, w, r, "write lp model", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// Solution decodes the variables a solver set to 1 into the chosen routes.
func (h *PoolHandler) Solution(w http.ResponseWriter, r *http.Request) {
	if !allowOnly(h.Log, w, r, http.MethodPost) {
		return
	}

	var req dto.SolutionRequest
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(h.Log, w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	model, ok := h.selectionModel(w, r)
	if !ok {
		return
	}

	sol, err := model.DecodeVariables(req.Variables)
	if err != nil {
		writeError(h.Log, w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	res := dto.SolutionResponse{
		TotalCost:  sol.TotalCost,
		OwnCount:   sol.OwnCount,
		HiredCount: len(sol.Routes) - sol.OwnCount,
		Routes:     make([]dto.SelectedRouteResponse, 0, len(sol.Routes)),
	}
	for _, sr := range sol.Routes {
		res.Routes = append(res.Routes, dto.SelectedRouteResponse{
			Variable: selection.VariableName(sr.Column),
			Stops:    sr.Route.Names(),
			Distance: sr.Route.Distance(),
			Demand:   sr.Route.Demand(),
			Hired:    sr.Hired,
			Cost:     sr.Cost,
		})
	}
	writeJSON(h.Log, w, r, http.StatusOK, res)
}

func (h *PoolHandler) selectionModel(w http.ResponseWriter, r *http.Request) (*selection.Model, bool) {
	pool, err := h.Store.GetPool(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(h.Log, w, r, "get candidate pool", err)
		return nil, false
	}
	locs, err := h.Locations.ListLocations(r.Context())
	if err != nil {
		writeServiceError(h.Log, w, r, "list locations", err)
		return nil, false
	}
	stops := make([]string, len(locs))
	for i, l := range locs {
		stops[i] = l.Name
	}

	model, err := selection.NewModel(pool, stops, h.Fleet, h.Cost)
	if err != nil {
		writeServiceError(h.Log, w, r, "build selection model", err)
		return nil, false
	}
	return model, true
}
