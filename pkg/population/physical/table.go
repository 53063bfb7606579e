package physical

import (
	"math"

	errorsmod "cosmossdk.io/errors"

	"github.com/oxygene76/exoplanet-popsynth/internal/types"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population"
)

// Table is an ordered classification table. Bins may overlap; the first
// matching bin wins.
type Table []types.ClassificationBin

// Classify returns the first bin containing the planet radius (Earth radii)
// and effective orbital radius (AU).
func (t Table) Classify(radius, effOrbitalRadius float64) (types.ClassificationBin, bool) {
	for _, b := range t {
		if b.Contains(radius, effOrbitalRadius) {
			return b, true
		}
	}
	return types.ClassificationBin{}, false
}

// Types returns the distinct type labels in table order
func (t Table) Types() []string {
	seen := make(map[string]bool, len(t))
	var out []string
	for _, b := range t {
		if !seen[b.Type] {
			seen[b.Type] = true
			out = append(out, b.Type)
		}
	}
	return out
}

// Validate checks that every bin has ordered, finite bounds, an albedo
// range inside [0, 1] and a label.
func (t Table) Validate() error {
	for i, b := range t {
		if b.Type == "" {
			return errorsmod.Wrapf(population.ErrMalformedCatalog, "classification bin %d has no type label", i)
		}
		for _, v := range []float64{b.RadiusLower, b.RadiusUpper, b.OrbitalRadiusLower, b.OrbitalRadiusUpper, b.AlbedoLower, b.AlbedoUpper} {
			if math.IsNaN(v) {
				return errorsmod.Wrapf(population.ErrMalformedCatalog, "classification bin %d (%s) has a missing bound", i, b.Type)
			}
		}
		if b.RadiusLower > b.RadiusUpper || b.OrbitalRadiusLower > b.OrbitalRadiusUpper || b.AlbedoLower > b.AlbedoUpper {
			return errorsmod.Wrapf(population.ErrInputDomain, "classification bin %d (%s) has inverted bounds", i, b.Type)
		}
		if b.AlbedoLower < 0 || b.AlbedoUpper > 1 {
			return errorsmod.Wrapf(population.ErrInputDomain,
				"classification bin %d (%s) albedo range [%v, %v] is outside [0, 1]", i, b.Type, b.AlbedoLower, b.AlbedoUpper)
		}
	}
	return nil
}

// DefaultTable returns the classification table used by the survey: planet
// radius in Earth radii against luminosity-scaled orbital radius in AU.
// Sub-Neptunes between 1.4 and 3.5 R⊕ inside the frost line are left
// unclassified.
func DefaultTable() Table {
	return Table{
		{RadiusLower: 6.0, RadiusUpper: 20.0, OrbitalRadiusLower: 0.0, OrbitalRadiusUpper: 0.1, Type: "hot_jupiters", AlbedoLower: 0.01, AlbedoUpper: 0.1},
		{RadiusLower: 6.0, RadiusUpper: 20.0, OrbitalRadiusLower: 0.1, OrbitalRadiusUpper: 100.0, Type: "gas_giants", AlbedoLower: 0.3, AlbedoUpper: 0.5},
		{RadiusLower: 3.5, RadiusUpper: 6.0, OrbitalRadiusLower: 0.0, OrbitalRadiusUpper: 100.0, Type: "neptunes", AlbedoLower: 0.3, AlbedoUpper: 0.5},
		{RadiusLower: 0.5, RadiusUpper: 0.8, OrbitalRadiusLower: 0.0, OrbitalRadiusUpper: 1.67, Type: "mercuries", AlbedoLower: 0.1, AlbedoUpper: 0.15},
		{RadiusLower: 0.8, RadiusUpper: 1.4, OrbitalRadiusLower: 0.0, OrbitalRadiusUpper: 0.95, Type: "venuses", AlbedoLower: 0.6, AlbedoUpper: 0.8},
		{RadiusLower: 0.8, RadiusUpper: 1.4, OrbitalRadiusLower: 0.95, OrbitalRadiusUpper: 1.67, Type: "earths", AlbedoLower: 0.2, AlbedoUpper: 0.4},
		{RadiusLower: 0.5, RadiusUpper: 3.5, OrbitalRadiusLower: 1.67, OrbitalRadiusUpper: 100.0, Type: "frozen_planets", AlbedoLower: 0.5, AlbedoUpper: 0.7},
	}
}
