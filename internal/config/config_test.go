package config

import (
	"os"
	"path/filepath"
	"route-pool-service/internal/domain"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	s, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", s.Port)
	assert.Equal(t, "sqlite", s.DB.Driver)
	assert.Equal(t, "Warehouse", s.Data.DepotName)
	assert.Equal(t, GASettings{PopulationSize: 20, EliteCount: 5, MutationRate: 0.05, Generations: 25}, s.GA)
	assert.Equal(t, 12, s.Pool.MaxCapacity)
	assert.Equal(t, 4, s.Pool.NeighborDepth)
	assert.Equal(t, 20, s.Cost.FleetSize)
	assert.Equal(t, 1_000_000.0, s.Cost.ForbiddenRouteCost)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("POOL_MAX_CAPACITY", "8")
	t.Setenv("GA_GENERATIONS", "50")
	t.Setenv("POOL_DISTINCT", "true")

	s, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 8, s.Pool.MaxCapacity)
	assert.Equal(t, 50, s.GA.Generations)
	assert.True(t, s.Pool.Distinct)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("DEPOT_NAME: Depot\nFLEET_SIZE: 25\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Depot", s.Data.DepotName)
	assert.Equal(t, 25, s.Cost.FleetSize)
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"DB_DRIVER": "mysql"}},
		{"postgres without url", map[string]string{"DB_DRIVER": "postgres"}},
		{"inverted capacities", map[string]string{"POOL_MIN_CAPACITY": "5", "POOL_MAX_CAPACITY": "3"}},
		{"no fleet", map[string]string{"FLEET_SIZE": "0"}},
		{"neighbor depth too deep", map[string]string{"POOL_NEIGHBOR_DEPTH": "12"}},
		{"capacity too large", map[string]string{"POOL_MAX_CAPACITY": "5000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromViper(viper.New())
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}
}

func TestGet(t *testing.T) {
	t.Setenv("SOME_KEY", "v")
	assert.Equal(t, "v", Get("SOME_KEY", "x"))
	assert.Equal(t, "x", Get("MISSING_KEY_FOR_TEST", "x"))
}
