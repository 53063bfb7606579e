// Package photometry implements the reflected-light model used for planet
// contrast estimates.
package photometry

import (
	"math"

	"github.com/oxygene76/exoplanet-popsynth/pkg/astronomy/units"
)

// LambertPhase evaluates the Lambertian phase function at phase angle alpha
// (degrees): Φ(α) = (sin α + (π − α) cos α) / π.
func LambertPhase(alphaDeg float64) float64 {
	a := units.DegToRad(alphaDeg)
	return (math.Sin(a) + (math.Pi-a)*math.Cos(a)) / math.Pi
}

// Contrast returns the planet/star flux ratio for a Lambertian sphere
//
//	C = albedo × Φ × π × (Rp / a)²
//
// with the planet radius in Earth radii and the orbital radius in AU.
func Contrast(albedo, phase, planetRadius, orbitalRadius float64) float64 {
	rp := units.EarthRadiiToAU(planetRadius)
	return albedo * phase * math.Pi * rp * rp / (orbitalRadius * orbitalRadius)
}
