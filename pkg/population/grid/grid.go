// Package grid draws planet (radius, period) pairs from an empirical
// occurrence-density grid.
package grid

import (
	"math"

	errorsmod "cosmossdk.io/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/oxygene76/exoplanet-popsynth/pkg/population"
)

// DensityGrid is a 2-D table of non-negative occurrence weights indexed by
// (radius bin, period bin), with the radius and period value of each bin.
type DensityGrid struct {
	Weights    *mat.Dense
	RadiusAxis []float64 // Earth radii, one per row
	PeriodAxis []float64 // days, one per column
}

// NewDensityGrid builds and validates a grid
func NewDensityGrid(weights *mat.Dense, radiusAxis, periodAxis []float64) (*DensityGrid, error) {
	g := &DensityGrid{Weights: weights, RadiusAxis: radiusAxis, PeriodAxis: periodAxis}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// FromRows builds a grid from row-major weights, one row per radius bin
func FromRows(rows [][]float64, radiusAxis, periodAxis []float64) (*DensityGrid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errorsmod.Wrap(population.ErrMalformedGrid, "grid has no weights")
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, errorsmod.Wrapf(population.ErrMalformedGrid,
				"row %d has %d columns, expected %d", i, len(row), cols)
		}
		data = append(data, row...)
	}
	return NewDensityGrid(mat.NewDense(len(rows), cols, data), radiusAxis, periodAxis)
}

// Validate checks shape and domain: axes must match the grid dimensions,
// every weight must be finite and non-negative and the total positive.
func (g *DensityGrid) Validate() error {
	if g.Weights == nil {
		return errorsmod.Wrap(population.ErrMalformedGrid, "grid has no weights")
	}
	rows, cols := g.Weights.Dims()
	if len(g.RadiusAxis) != rows {
		return errorsmod.Wrapf(population.ErrMalformedGrid,
			"radius axis has %d values for %d grid rows", len(g.RadiusAxis), rows)
	}
	if len(g.PeriodAxis) != cols {
		return errorsmod.Wrapf(population.ErrMalformedGrid,
			"period axis has %d values for %d grid columns", len(g.PeriodAxis), cols)
	}

	total := 0.0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			w := g.Weights.At(i, j)
			if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
				return errorsmod.Wrapf(population.ErrInputDomain,
					"grid weight at (%d, %d) is %v", i, j, w)
			}
			total += w
		}
	}
	if total <= 0 {
		return errorsmod.Wrap(population.ErrInputDomain, "grid weights sum to zero")
	}
	return nil
}

// Flatten returns the weights in row-major order
func (g *DensityGrid) Flatten() []float64 {
	rows, cols := g.Weights.Dims()
	flat := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		flat = append(flat, mat.Row(nil, i, g.Weights)...)
	}
	return flat
}

// Arange returns start, start+step, ... for values below stop
func Arange(start, stop, step float64) []float64 {
	if step <= 0 || stop <= start {
		return nil
	}
	n := int(math.Ceil((stop - start) / step))
	out := make([]float64, n)
	for k := range out {
		out[k] = start + float64(k)*step
	}
	return out
}

// Total returns the sum of all weights
func (g *DensityGrid) Total() float64 {
	return floats.Sum(g.Flatten())
}
