package grid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/oxygene76/exoplanet-popsynth/pkg/population"
)

func testGrid(t *testing.T) *DensityGrid {
	t.Helper()
	g, err := FromRows([][]float64{
		{1, 0, 2},
		{0, 3, 1},
	}, []float64{1.0, 2.5}, []float64{10, 20, 30})
	require.NoError(t, err)
	return g
}

func TestValidateRejectsMalformedGrids(t *testing.T) {
	tests := []struct {
		name    string
		weights *mat.Dense
		radius  []float64
		period  []float64
		want    error
	}{
		{"radius axis mismatch", mat.NewDense(2, 2, []float64{1, 1, 1, 1}), []float64{1}, []float64{1, 2}, population.ErrMalformedGrid},
		{"period axis mismatch", mat.NewDense(2, 2, []float64{1, 1, 1, 1}), []float64{1, 2}, []float64{1, 2, 3}, population.ErrMalformedGrid},
		{"negative weight", mat.NewDense(1, 2, []float64{1, -0.5}), []float64{1}, []float64{1, 2}, population.ErrInputDomain},
		{"all zero", mat.NewDense(1, 2, []float64{0, 0}), []float64{1}, []float64{1, 2}, population.ErrInputDomain},
		{"nil weights", nil, nil, nil, population.ErrMalformedGrid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDensityGrid(tt.weights, tt.radius, tt.period)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestFromRowsRejectsRaggedRows(t *testing.T) {
	_, err := FromRows([][]float64{{1, 2}, {3}}, []float64{1, 2}, []float64{1, 2})
	assert.ErrorIs(t, err, population.ErrMalformedGrid)
}

func TestFlattenRowMajor(t *testing.T) {
	g := testGrid(t)
	assert.Equal(t, []float64{1, 0, 2, 0, 3, 1}, g.Flatten())
	assert.Equal(t, 7.0, g.Total())
}

func TestArange(t *testing.T) {
	assert.Len(t, Arange(0.67, 17.1, 0.1), 165)
	assert.Len(t, Arange(10, 640, 1), 630)
	assert.Equal(t, []float64{0, 0.5, 1, 1.5}, Arange(0, 2, 0.5))
	assert.Nil(t, Arange(1, 0, 1))
}

func TestSamplerNearestCumulative(t *testing.T) {
	g, err := FromRows([][]float64{{1, 1, 2}}, []float64{1}, []float64{10, 20, 30})
	require.NoError(t, err)
	s, err := NewSampler(g)
	require.NoError(t, err)
	require.Equal(t, []float64{0.25, 0.5, 1}, s.cdf)

	tests := []struct {
		u    float64
		want int
	}{
		{0.0, 0},
		{0.1, 0},
		{0.3, 0},   // a first-cdf-≥-u lookup would return 1
		{0.375, 0}, // equidistant, lower index wins
		{0.4, 1},
		{0.74, 1},
		{0.76, 2},
		{0.999, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.nearest(tt.u), "u=%v", tt.u)
	}
}

func TestSamplerTiesResolveToFirstEqualCumulative(t *testing.T) {
	// bins 1 and 2 carry no weight and repeat the cumulative value of bin 0
	g, err := FromRows([][]float64{{1, 0, 0, 1}}, []float64{1}, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	s, err := NewSampler(g)
	require.NoError(t, err)
	assert.Equal(t, 0, s.nearest(0.6))
	assert.Equal(t, 3, s.nearest(0.8))
}

func TestDrawCountsAndAxisMembership(t *testing.T) {
	g := testGrid(t)
	s, err := NewSampler(g)
	require.NoError(t, err)

	samples := s.Draw(rand.New(rand.NewSource(3)), 500)
	require.Len(t, samples, 500)
	for _, smp := range samples {
		assert.Contains(t, g.RadiusAxis, smp.Radius)
		assert.Contains(t, g.PeriodAxis, smp.Period)
	}
}

func TestDrawZero(t *testing.T) {
	s, err := NewSampler(testGrid(t))
	require.NoError(t, err)
	got := s.Draw(rand.New(rand.NewSource(1)), 0)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDrawDeterministic(t *testing.T) {
	s, err := NewSampler(testGrid(t))
	require.NoError(t, err)
	a := s.Draw(rand.New(rand.NewSource(99)), 200)
	b := s.Draw(rand.New(rand.NewSource(99)), 200)
	assert.Equal(t, a, b)
}

func TestDrawFollowsWeights(t *testing.T) {
	// two well separated bins: nearest-cumulative bias is small here
	g, err := FromRows([][]float64{{1, 3}}, []float64{1}, []float64{10, 20})
	require.NoError(t, err)
	s, err := NewSampler(g)
	require.NoError(t, err)

	// cdf = [0.25, 1]; midpoint 0.625 splits the draws
	n := 20000
	hits := 0
	for _, smp := range s.Draw(rand.New(rand.NewSource(5)), n) {
		if smp.Period == 10 {
			hits++
		}
	}
	assert.InDelta(t, 0.625, float64(hits)/float64(n), 0.02)
}
