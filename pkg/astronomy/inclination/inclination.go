// Package inclination draws orbital inclinations for stars whose catalog
// entry does not carry one.
package inclination

import (
	"math"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"

	"github.com/oxygene76/exoplanet-popsynth/pkg/astronomy/units"
)

// DefaultResolution is the number of tabulation points on [0, π/2].
const DefaultResolution = 1000

// Sampler draws inclinations from p(i) ∝ cos(i) on [0°, 90°] by inverse
// lookup into a tabulated CDF with linear interpolation.
type Sampler struct {
	grid []float64 // radians
	cdf  []float64
}

// NewSampler tabulates the CDF on n points. n < 2 falls back to
// DefaultResolution.
func NewSampler(n int) *Sampler {
	if n < 2 {
		n = DefaultResolution
	}
	grid := floats.Span(make([]float64, n), 0, math.Pi/2)

	pdf := make([]float64, n)
	for k, x := range grid {
		pdf[k] = math.Cos(x)
	}
	floats.Scale(1/integrate.Trapezoidal(grid, pdf), pdf)

	cdf := floats.CumSum(make([]float64, n), pdf)
	floats.Scale(grid[1]-grid[0], cdf)

	return &Sampler{grid: grid, cdf: cdf}
}

// Draw returns n inclinations in degrees.
func (s *Sampler) Draw(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for k := range out {
		out[k] = units.RadToDeg(s.draw(rng))
	}
	return out
}

func (s *Sampler) draw(rng *rand.Rand) float64 {
	for {
		u := rng.Float64()
		idx := sort.SearchFloat64s(s.cdf, u)
		// the first tabulated point has no left neighbour to interpolate
		// from; draws that land there are repeated
		if idx == 0 || idx == len(s.cdf) {
			continue
		}
		x0, x1 := s.grid[idx-1], s.grid[idx]
		c0, c1 := s.cdf[idx-1], s.cdf[idx]
		return x0 + (u-c0)/(c1-c0)*(x1-x0)
	}
}
