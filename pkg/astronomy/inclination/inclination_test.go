package inclination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
)

func TestDrawRange(t *testing.T) {
	s := NewSampler(DefaultResolution)
	got := s.Draw(rand.New(rand.NewSource(42)), 5000)
	require.Len(t, got, 5000)
	for _, inc := range got {
		assert.GreaterOrEqual(t, inc, 0.0)
		assert.LessOrEqual(t, inc, 90.0)
	}
}

func TestDrawDeterministic(t *testing.T) {
	s := NewSampler(0)
	a := s.Draw(rand.New(rand.NewSource(7)), 100)
	b := s.Draw(rand.New(rand.NewSource(7)), 100)
	assert.Equal(t, a, b)
}

func TestDrawFollowsCosine(t *testing.T) {
	// E[i] for p(i) = cos(i) on [0, π/2] is π/2 − 1 rad ≈ 32.70°
	s := NewSampler(DefaultResolution)
	got := s.Draw(rand.New(rand.NewSource(1)), 20000)
	assert.InDelta(t, 32.70, stat.Mean(got, nil), 0.6)
}

func TestCDFEndsNearOne(t *testing.T) {
	s := NewSampler(DefaultResolution)
	assert.InDelta(t, 1.0, s.cdf[len(s.cdf)-1], 2e-3)
}
