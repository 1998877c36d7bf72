package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"route-pool-service/internal/adapters/export"
	"route-pool-service/internal/adapters/repositories"
	"route-pool-service/internal/api/dto"
	"route-pool-service/internal/api/handlers"
	"route-pool-service/internal/domain"
	"route-pool-service/internal/platform/metrics"
	"route-pool-service/internal/ports"
	"route-pool-service/internal/selection"
	"route-pool-service/internal/services"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	handler http.Handler
	hub     *handlers.ProgressHub
	store   *repositories.MemoryPoolStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	metrics.RegisterDefault()

	names := []string{"Depot", "A", "B", "C"}
	m, err := domain.NewTravelMatrix(names, [][]float64{
		{0, 1, 10, 1},
		{1, 0, 1, 10},
		{10, 1, 0, 1},
		{1, 10, 1, 0},
	})
	require.NoError(t, err)

	depot := domain.Location{Name: "Depot"}
	stores := []domain.Location{{Name: "A", Demand: 1}, {Name: "B", Demand: 2}, {Name: "C", Demand: 3}}

	log := zap.NewNop()
	optimizer, err := services.NewGeneticRouteOptimizer(services.DefaultTuning())
	require.NoError(t, err)

	hub := handlers.NewProgressHub(log)
	store := repositories.NewMemoryPoolStore()
	locRepo := repositories.NewMemoryLocationRepository(depot, stores)
	fleet, err := domain.NewFleet(2, 3)
	require.NoError(t, err)

	pools := &handlers.PoolHandler{
		Locations: locRepo,
		Store:     store,
		Generator: services.NewCandidatePoolGenerator(m, optimizer, log, hub),
		Defaults: services.GenerateOptions{
			Plan:    services.PlanOptions{MinCapacity: 1, MaxCapacity: 3, NeighborDepth: 2},
			Workers: 2,
			Seed:    7,
		},
		Fleet: fleet,
		Cost:  selection.DefaultCostModel(),
		Log:   log,
	}

	return &testServer{
		handler: NewRouter(log, &handlers.LocationHandler{Repo: locRepo, Log: log}, pools, hub),
		hub:     hub,
		store:   store,
	}
}

func (s *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = s.do(http.MethodPost, "/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestLocations(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/locations", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res dto.ListLocationsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Depot", res.Depot.Name)
	require.Len(t, res.Locations, 3)
	assert.Equal(t, 3.0, res.Locations[2].Demand)
}

func TestCreateAndFetchPool(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/candidate-pools", `{"seed": 99}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var doc export.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, int64(99), doc.Seed)
	assert.NotEmpty(t, doc.Routes)
	assert.Empty(t, doc.Failures)
	assert.Equal(t, "/candidate-pools/"+doc.ID, rec.Header().Get("Location"))

	rec = s.do(http.MethodGet, "/candidate-pools/"+doc.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got export.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, doc.ID, got.ID)
	assert.Len(t, got.Routes, len(doc.Routes))

	rec = s.do(http.MethodGet, "/candidate-pools/"+doc.ID+"?format=yaml", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "id: "+doc.ID)

	rec = s.do(http.MethodGet, "/candidate-pools", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list dto.ListPoolsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Pools, 1)
	assert.Equal(t, doc.ID, list.Pools[0].ID)
	assert.Equal(t, len(doc.Routes), list.Pools[0].RouteCount)

	rec = s.do(http.MethodGet, "/candidate-pools/"+doc.ID+"/model.lp", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Minimize")
	assert.Contains(t, body, "Subject To")
	assert.Contains(t, body, "<= 2")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(body), "End"))
}

func TestSolution(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/candidate-pools", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var doc export.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))

	single := map[string]int{}
	for i, r := range doc.Routes {
		if len(r.Stops) == 2 {
			if _, ok := single[r.Stops[1]]; !ok {
				single[r.Stops[1]] = i
			}
		}
	}
	require.Len(t, single, 3)

	n := len(doc.Routes)
	vars := []string{
		selection.VariableName(single["A"]),
		selection.VariableName(single["B"]),
		selection.VariableName(n + single["C"]),
	}
	body, err := json.Marshal(dto.SolutionRequest{Variables: vars})
	require.NoError(t, err)

	rec = s.do(http.MethodPost, "/candidate-pools/"+doc.ID+"/solution", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var sol dto.SolutionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sol))
	assert.Equal(t, 2, sol.OwnCount)
	assert.Equal(t, 1, sol.HiredCount)
	require.Len(t, sol.Routes, 3)
	assert.True(t, sol.Routes[2].Hired)
	assert.Equal(t, 1200.0, sol.Routes[2].Cost)

	rec = s.do(http.MethodPost, "/candidate-pools/"+doc.ID+"/solution", `{"variables": ["Route_0"]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreatePool_PartialFailureIsStored(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/candidate-pools", `{"max_capacity": 2}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var doc export.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Len(t, doc.Failures, 1)
	assert.Equal(t, "C", doc.Failures[0].Target)

	pool, err := s.store.GetPool(t.Context(), doc.ID)
	require.NoError(t, err)
	assert.Len(t, pool.Failures, 1)

	// C is never covered, so no partition exists.
	rec = s.do(http.MethodGet, "/candidate-pools/"+doc.ID+"/model.lp", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePool_BadRequests(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"seed":`},
		{"unknown field", `{"trucks": 3}`},
		{"two objects", `{} {}`},
		{"inverted capacities", `{"min_capacity": 4, "max_capacity": 2}`},
		{"negative workers", `{"workers": -1}`},
		{"neighbor depth too deep", `{"neighbor_depth": 12}`},
		{"capacity too large", `{"max_capacity": 100000}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/candidate-pools", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	rec := s.do(http.MethodGet, "/candidate-pools?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodDelete, "/candidate-pools", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGetPool_NotFound(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/candidate-pools/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/candidate-pools/missing/model.lp", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodGet, "/health", "")

	rec := s.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestProgressWebsocket(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/candidate-pools/progress"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return s.hub.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	s.hub.OnTaskDone(ports.ProgressEvent{Done: 1, Total: 4, Target: "A", Capacity: 2, Variant: 1})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg dto.ProgressMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, dto.ProgressMessage{Done: 1, Total: 4, Target: "A", Capacity: 2, Variant: 1}, msg)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return s.hub.Subscribers() == 0 }, time.Second, 10*time.Millisecond)
}
