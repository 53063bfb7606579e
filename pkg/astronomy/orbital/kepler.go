package orbital

import (
	"math"

	"github.com/oxygene76/exoplanet-popsynth/pkg/astronomy/units"
)

// SemiMajorAxis returns the orbital radius in AU of a body with the given
// period (days) around a star of the given mass (solar masses), from
// Kepler's third law: a = cbrt(G·M·T² / 4π²).
func SemiMajorAxis(periodDays, starMass float64) float64 {
	t := units.DaysToSeconds(periodDays)
	m := units.SolarMassesToKg(starMass)
	a := math.Cbrt(units.G * m * t * t / (4 * math.Pi * math.Pi))
	return units.MetersToAU(a)
}

// Period returns the orbital period in days for a semi-major axis in AU
// around a star of the given mass (solar masses). Inverse of SemiMajorAxis.
func Period(semiMajorAxis, starMass float64) float64 {
	a := semiMajorAxis * units.AU
	mu := units.G * units.SolarMassesToKg(starMass)
	return 2 * math.Pi * math.Sqrt(a*a*a/mu) / units.SecondsPerDay
}

// EffectiveOrbitalRadius rescales an orbital radius by the host's
// log-luminosity exponent: a × 10^logL.
func EffectiveOrbitalRadius(orbitalRadius, logLuminosity float64) float64 {
	return orbitalRadius * math.Pow(10, logLuminosity)
}
