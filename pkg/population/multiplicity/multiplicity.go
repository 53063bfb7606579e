// Package multiplicity decides how many planets each star hosts and which
// sampled planets go to which star.
package multiplicity

import (
	"math"

	errorsmod "cosmossdk.io/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/oxygene76/exoplanet-popsynth/pkg/population"
)

// sag13 is the SAG13 occurrence-rate table (percent per bin) used to derive
// the default mean multiplicity.
var sag13 = [][]float64{
	{0.001, 0.02, 0.04, 0.07, 0.11, 0.17},
	{0.335, 0.527, 0.73, 0.92, 1.12, 2.72},
	{0.85, 1.28, 1.94, 2.92, 3.6, 5.0},
	{1.35, 2.14, 3.89, 5.93, 7.75, 9.29},
	{3.55, 5.85, 7.96, 9.74, 12.08, 13.88},
}

// DefaultRate returns the mean number of planets per star implied by the
// SAG13 occurrence table.
func DefaultRate() float64 {
	total := 0.0
	for _, row := range sag13 {
		total += floats.Sum(row)
	}
	return total / 100
}

// Params bounds the per-star planet count
type Params struct {
	MinPerStar int
	MaxPerStar int
	// ExpectedPerStar is the Poisson mean; zero selects DefaultRate.
	ExpectedPerStar float64
}

// DefaultParams mirrors the reference run: 1 to 7 planets per star at the
// SAG13 rate.
func DefaultParams() Params {
	return Params{MinPerStar: 1, MaxPerStar: 7}
}

// Rate returns the Poisson mean in effect
func (p Params) Rate() float64 {
	if p.ExpectedPerStar == 0 {
		return DefaultRate()
	}
	return p.ExpectedPerStar
}

// Validate checks the bounds and rate
func (p Params) Validate() error {
	if p.MinPerStar < 0 {
		return errorsmod.Wrapf(population.ErrInvalidConfig, "min_per_star must be non-negative, got %d", p.MinPerStar)
	}
	if p.MaxPerStar < p.MinPerStar {
		return errorsmod.Wrapf(population.ErrInvalidConfig,
			"max_per_star (%d) is below min_per_star (%d)", p.MaxPerStar, p.MinPerStar)
	}
	if math.IsNaN(p.ExpectedPerStar) || math.IsInf(p.ExpectedPerStar, 0) || p.ExpectedPerStar < 0 {
		return errorsmod.Wrapf(population.ErrInvalidConfig,
			"expected_planets_per_star must be a non-negative number, got %v", p.ExpectedPerStar)
	}
	return nil
}

// Counts draws a planet count for each of numStars stars and truncates the
// sequence so that it sums to total.
//
// Each raw Poisson draw is clamped to [MinPerStar, MaxPerStar]. Walking the
// stars in catalog order, the first star at which the running sum reaches
// total receives exactly the remainder and every later star receives zero.
// The remainder is not re-clamped. When the clamped counts of all stars
// never reach total the counts are returned unchanged and sum to less.
func Counts(rng *rand.Rand, numStars, total int, p Params) []int {
	pois := distuv.Poisson{Lambda: p.Rate(), Src: rng}

	counts := make([]int, numStars)
	for i := range counts {
		c := int(pois.Rand())
		if c < p.MinPerStar {
			c = p.MinPerStar
		}
		if c > p.MaxPerStar {
			c = p.MaxPerStar
		}
		counts[i] = c
	}

	cum := 0
	for i, c := range counts {
		if cum+c >= total {
			counts[i] = total - cum
			for j := i + 1; j < len(counts); j++ {
				counts[j] = 0
			}
			break
		}
		cum += c
	}
	return counts
}

// Partition shuffles the planet indices [0, total) and slices consecutive
// chunks off the front, one chunk per star with the star's count.
func Partition(rng *rand.Rand, counts []int, total int) [][]int {
	pool := rng.Perm(total)

	chunks := make([][]int, len(counts))
	start := 0
	for i, c := range counts {
		end := start + c
		if end > len(pool) {
			end = len(pool)
		}
		chunks[i] = pool[start:end:end]
		start = end
	}
	return chunks
}

// Assignment is the result of distributing a planet pool across stars
type Assignment struct {
	Requested int
	Counts    []int   // planets per star, in catalog order
	Chunks    [][]int // planet indices per star
	Hosts     []int   // star index per planet index, -1 when unassigned
	Assigned  int
}

// Shortfall returns how many requested planets received no host
func (a *Assignment) Shortfall() int {
	return a.Requested - a.Assigned
}

// Assign runs Counts and Partition and records the host of every planet
func Assign(rng *rand.Rand, numStars, total int, p Params) (*Assignment, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if numStars < 0 || total < 0 {
		return nil, errorsmod.Wrapf(population.ErrInvalidConfig,
			"star and planet counts must be non-negative, got %d and %d", numStars, total)
	}

	counts := Counts(rng, numStars, total, p)
	chunks := Partition(rng, counts, total)

	hosts := make([]int, total)
	for i := range hosts {
		hosts[i] = -1
	}
	assigned := 0
	for star, chunk := range chunks {
		for _, planet := range chunk {
			hosts[planet] = star
		}
		assigned += len(chunk)
	}

	return &Assignment{
		Requested: total,
		Counts:    counts,
		Chunks:    chunks,
		Hosts:     hosts,
		Assigned:  assigned,
	}, nil
}
