package services

import (
	"context"
	"errors"
	"route-pool-service/internal/adapters/distance"
	"route-pool-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingProvider struct{ err error }

func (p failingProvider) GetDurations(context.Context, domain.Location, []domain.Location) (map[string]float64, error) {
	return nil, p.err
}

func TestBuildTravelMatrix(t *testing.T) {
	src, depot, stores := squareFixture(t)
	provider := distance.NewStaticMatrixProviderFrom(src)

	m, err := BuildTravelMatrix(context.Background(), zap.NewNop(), depot, stores, provider, MatrixOptions{Concurrency: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"Depot", "A", "B", "C"}, m.Names())
	assert.Equal(t, 4, provider.Calls())
	for _, from := range src.Names() {
		for _, to := range src.Names() {
			want, _ := src.Cost(from, to)
			got, err := m.Cost(from, to)
			require.NoError(t, err)
			assert.Equal(t, want, got, "%s -> %s", from, to)
		}
	}
}

func TestBuildTravelMatrix_MissingEntry(t *testing.T) {
	_, depot, stores := squareFixture(t)
	provider := distance.NewStaticMatrixProvider([]distance.StaticPair{
		{From: "Depot", To: "A", Seconds: 1},
	})

	_, err := BuildTravelMatrix(context.Background(), zap.NewNop(), depot, stores, provider, MatrixOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLookupMiss)
}

func TestBuildTravelMatrix_ProviderError(t *testing.T) {
	_, depot, stores := squareFixture(t)
	boom := errors.New("upstream unavailable")

	_, err := BuildTravelMatrix(context.Background(), zap.NewNop(), depot, stores, failingProvider{err: boom}, MatrixOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
