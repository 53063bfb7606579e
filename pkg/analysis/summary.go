// Package analysis computes summary statistics over a synthetic population.
package analysis

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/oxygene76/exoplanet-popsynth/internal/types"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population/observable"
)

// Unclassified labels planets that matched no classification bin
const Unclassified = "unclassified"

// Distribution describes the defined values of one planet quantity
type Distribution struct {
	Count  int     `json:"count" yaml:"count"`
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
	Median float64 `json:"median" yaml:"median"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
}

// Summary aggregates a population
type Summary struct {
	Planets      int                       `json:"planets" yaml:"planets"`
	Hosts        int                       `json:"hosts" yaml:"hosts"`
	ByType       map[string]int            `json:"by_type" yaml:"by_type"`
	Issues       map[string]int            `json:"issues" yaml:"issues"`
	Multiplicity map[int]int               `json:"multiplicity" yaml:"multiplicity"` // planets per host -> hosts
	Contrast     Distribution              `json:"contrast" yaml:"contrast"`
	Separation   Distribution              `json:"angular_separation" yaml:"angular_separation"`
	Observable   map[string]map[string]int `json:"observable,omitempty" yaml:"observable,omitempty"`
}

// Summarize computes counts and distributions for planets. When constraints
// is non-empty, observable counts per type are added for each telescope.
func Summarize(planets []types.Planet, constraints map[string]observable.Constraint) Summary {
	s := Summary{
		Planets:      len(planets),
		ByType:       make(map[string]int),
		Issues:       make(map[string]int),
		Multiplicity: make(map[int]int),
	}

	perHost := make(map[string]int)
	var contrasts, separations []float64
	for _, p := range planets {
		perHost[p.HostID()]++

		if t, ok := p.Type.Get(); ok {
			s.ByType[t]++
		} else {
			s.ByType[Unclassified]++
		}
		for _, issue := range types.AllIssues {
			if p.Issues.Has(issue) {
				s.Issues[issue.String()]++
			}
		}
		if c, ok := p.Contrast.Get(); ok {
			contrasts = append(contrasts, c)
		}
		if sep, ok := p.AngularSeparation.Get(); ok {
			separations = append(separations, sep)
		}
	}

	s.Hosts = len(perHost)
	for _, n := range perHost {
		s.Multiplicity[n]++
	}
	s.Contrast = describe(contrasts)
	s.Separation = describe(separations)

	if len(constraints) > 0 {
		s.Observable = make(map[string]map[string]int, len(constraints))
		for _, name := range observable.Names(constraints) {
			s.Observable[name] = observable.CountByType(planets, constraints[name])
		}
	}
	return s
}

func describe(xs []float64) Distribution {
	if len(xs) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	d := Distribution{
		Count:  len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Median: median(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
	if len(sorted) > 1 {
		d.StdDev = stat.StdDev(sorted, nil)
	}
	return d
}

// median of sorted values; even lengths average the two middle values
func median(sorted []float64) float64 {
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// TypeNames returns the type labels present in s in sorted order
func (s Summary) TypeNames() []string {
	names := make([]string, 0, len(s.ByType))
	for name := range s.ByType {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
