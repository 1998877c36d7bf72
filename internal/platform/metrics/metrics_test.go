package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterDefaultIsIdempotent(t *testing.T) {
	require.NotPanics(t, RegisterDefault)
	require.NotPanics(t, RegisterDefault)

	before := testutil.ToFloat64(PoolTasks.WithLabelValues("ok"))
	PoolTasks.WithLabelValues("ok").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(PoolTasks.WithLabelValues("ok")))

	families, err := Registry.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["candidate_route_tasks_total"])
}
