// Package observable applies direct-imaging telescope constraints to a
// synthetic population.
package observable

import (
	"math"
	"sort"

	errorsmod "cosmossdk.io/errors"

	"github.com/oxygene76/exoplanet-popsynth/internal/types"
	"github.com/oxygene76/exoplanet-popsynth/pkg/astronomy/geometry"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population"
)

// Default instrument parameters
const (
	DefaultIWAFactor  = 3.0
	DefaultWavelength = 500e-9 // meters
)

// Constraint is the detection limit of one telescope. A planet is observable
// when its contrast is above ContrastFloor and its angular separation is
// outside the inner working angle.
type Constraint struct {
	Name          string  `json:"name" yaml:"name"`
	ContrastFloor float64 `json:"contrast_floor" yaml:"contrast_floor"`
	IWA           float64 `json:"iwa" yaml:"iwa"` // arcseconds
}

// NewConstraint derives the IWA from the instrument: factor·λ/D. A zero
// factor or wavelength selects the defaults.
func NewConstraint(name string, contrastFloor, aperture, wavelength, factor float64) (Constraint, error) {
	if factor == 0 {
		factor = DefaultIWAFactor
	}
	if wavelength == 0 {
		wavelength = DefaultWavelength
	}
	if aperture <= 0 || wavelength < 0 || factor < 0 {
		return Constraint{}, errorsmod.Wrapf(population.ErrInvalidConfig,
			"telescope %s: aperture, wavelength and iwa factor must be positive", name)
	}
	c := Constraint{
		Name:          name,
		ContrastFloor: contrastFloor,
		IWA:           geometry.InnerWorkingAngle(factor, wavelength, aperture),
	}
	return c, c.Validate()
}

// Validate checks the constraint values
func (c Constraint) Validate() error {
	if math.IsNaN(c.ContrastFloor) || c.ContrastFloor < 0 {
		return errorsmod.Wrapf(population.ErrInvalidConfig, "telescope %s: contrast floor %v", c.Name, c.ContrastFloor)
	}
	if math.IsNaN(c.IWA) || c.IWA < 0 {
		return errorsmod.Wrapf(population.ErrInvalidConfig, "telescope %s: inner working angle %v", c.Name, c.IWA)
	}
	return nil
}

// DefaultConstraints returns the two reference instruments: a 6 m space
// telescope at 1e-10 and a 30 m ground telescope at 1e-8.
func DefaultConstraints() map[string]Constraint {
	hwo, _ := NewConstraint("hwo", 1e-10, 6, DefaultWavelength, DefaultIWAFactor)
	ground, _ := NewConstraint("30m", 1e-8, 30, DefaultWavelength, DefaultIWAFactor)
	return map[string]Constraint{hwo.Name: hwo, ground.Name: ground}
}

// Observable reports whether p passes the constraint. Planets with an
// undefined contrast or separation never pass.
func (c Constraint) Observable(p types.Planet) bool {
	contrast, ok := p.Contrast.Get()
	if !ok {
		return false
	}
	sep, ok := p.AngularSeparation.Get()
	if !ok {
		return false
	}
	return contrast > c.ContrastFloor && sep > c.IWA
}

func (c Constraint) matches(p types.Planet, planetType string) bool {
	if !c.Observable(p) {
		return false
	}
	if planetType == "" {
		return true
	}
	t, ok := p.Type.Get()
	return ok && t == planetType
}

// Filter returns the observable planets, optionally restricted to one
// planet type. An empty planetType matches every type.
func Filter(planets []types.Planet, c Constraint, planetType string) []types.Planet {
	out := make([]types.Planet, 0)
	for _, p := range planets {
		if c.matches(p, planetType) {
			out = append(out, p)
		}
	}
	return out
}

// Count returns len(Filter(planets, c, planetType)) without allocating
func Count(planets []types.Planet, c Constraint, planetType string) int {
	n := 0
	for _, p := range planets {
		if c.matches(p, planetType) {
			n++
		}
	}
	return n
}

// CountByType tallies observable planets per type label
func CountByType(planets []types.Planet, c Constraint) map[string]int {
	counts := make(map[string]int)
	for _, p := range planets {
		if !c.Observable(p) {
			continue
		}
		t, _ := p.Type.Get()
		counts[t]++
	}
	return counts
}

// Names returns the constraint names in sorted order
func Names(constraints map[string]Constraint) []string {
	names := make([]string, 0, len(constraints))
	for name := range constraints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
