package export

import (
	"bytes"
	"encoding/json"
	"route-pool-service/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func samplePool(t *testing.T) *domain.CandidatePool {
	t.Helper()
	depot := domain.Location{Name: "Warehouse"}
	a := domain.Location{Name: "A", Demand: 3}
	r, err := domain.RestoreRoute([]domain.Location{depot, a}, 1200)
	require.NoError(t, err)

	p := domain.NewCandidatePool("p-1", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), 9, []domain.Route{r})
	p.Failures = []domain.TaskFailure{{Target: "B", Capacity: 12, Reason: "too big"}}
	return p
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, samplePool(t), FormatJSON))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "p-1", doc.ID)
	require.Len(t, doc.Routes, 1)
	assert.Equal(t, []string{"Warehouse", "A"}, doc.Routes[0].Stops)
	assert.Equal(t, 3.0, doc.Routes[0].Demand)
	assert.Equal(t, "B", doc.Failures[0].Target)
	assert.Equal(t, 1200.0, doc.TotalDistance)
	assert.Equal(t, 3.0, doc.TotalDemand)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, samplePool(t), FormatYAML))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 9, doc["seed"])
	assert.Contains(t, buf.String(), "- Warehouse")
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, samplePool(t), "xml"))
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("out/pool.YML"))
	assert.Equal(t, FormatJSON, FormatFromPath("pool.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("pool"))
}
