package grid

import (
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// Sample is one drawn (radius, period) pair
type Sample struct {
	Radius float64 // Earth radii
	Period float64 // days
}

// Sampler draws samples from a DensityGrid. The normalized cumulative
// distribution is computed once; a Sampler is safe for concurrent use as
// long as each caller supplies its own generator.
type Sampler struct {
	grid *DensityGrid
	cdf  []float64
	cols int
}

// NewSampler validates the grid and tabulates its cumulative distribution
func NewSampler(g *DensityGrid) (*Sampler, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	flat := g.Flatten()
	cdf := floats.CumSum(make([]float64, len(flat)), flat)
	// normalize by the realized final value so the last entry is exactly 1
	floats.Scale(1/cdf[len(cdf)-1], cdf)
	cdf[len(cdf)-1] = 1

	_, cols := g.Weights.Dims()
	return &Sampler{grid: g, cdf: cdf, cols: cols}, nil
}

// Draw returns n samples using rng
func (s *Sampler) Draw(rng *rand.Rand, n int) []Sample {
	if n <= 0 {
		return []Sample{}
	}
	out := make([]Sample, n)
	for k := range out {
		out[k] = s.at(s.nearest(rng.Float64()))
	}
	return out
}

func (s *Sampler) at(flat int) Sample {
	r, p := flat/s.cols, flat%s.cols
	return Sample{Radius: s.grid.RadiusAxis[r], Period: s.grid.PeriodAxis[p]}
}

// nearest returns the index whose cumulative value is closest to u, taking
// the lowest index on ties. This is not a "first cdf ≥ u" lookup: a draw
// just above a cumulative step can select the bin below it.
func (s *Sampler) nearest(u float64) int {
	i := sort.SearchFloat64s(s.cdf, u)
	switch {
	case i == len(s.cdf):
		i--
	case i > 0 && u-s.cdf[i-1] <= s.cdf[i]-u:
		i--
	default:
		// cdf[i] is the first value ≥ u, so no lower index shares it
		return i
	}
	for i > 0 && s.cdf[i-1] == s.cdf[i] {
		i--
	}
	return i
}
