// Package geometry computes the observing geometry of a planet: the orbital
// position that gives the reference phase angle, its projected distance from
// the host and the resulting angular separation.
package geometry

import (
	"math"

	"github.com/oxygene76/exoplanet-popsynth/pkg/astronomy/units"
)

// AngleStatus reports how an optimal observation angle was resolved.
type AngleStatus int

const (
	// AngleOK means the angle is defined.
	AngleOK AngleStatus = iota
	// AngleDomainError means the arcsin argument left [-1, 1].
	AngleDomainError
	// AngleOutOfRange means the inclination is outside [0, 180] degrees.
	AngleOutOfRange
)

func (s AngleStatus) String() string {
	switch s {
	case AngleOK:
		return "ok"
	case AngleDomainError:
		return "domain_error"
	case AngleOutOfRange:
		return "inclination_out_of_range"
	default:
		return "unknown"
	}
}

// OptimalObservationAngle returns the orbital position angle (degrees) at
// which a planet on an orbit of the given inclination is seen at the
// reference phase angle alpha.
//
// Near face-on orbits (i ≤ 30° or i > 150°) always return 90°. Otherwise the
// angle is arcsin(cos α / sin i). The returned status is AngleOK only when
// the value is defined.
func OptimalObservationAngle(inclinationDeg, alphaDeg float64) (float64, AngleStatus) {
	i := inclinationDeg
	switch {
	case math.IsNaN(i) || i < 0 || i > 180:
		return 0, AngleOutOfRange
	case i <= 30 || i > 150:
		return 90, AngleOK
	}

	ratio := math.Cos(units.DegToRad(alphaDeg)) / math.Sin(units.DegToRad(i))
	if ratio < -1 || ratio > 1 {
		return 0, AngleDomainError
	}
	return units.RadToDeg(math.Asin(ratio)), AngleOK
}

// PositionRadius projects the orbital radius at the given orbital angle:
// r·sqrt(1 − sin²θ·cos²i). Angles are in degrees.
func PositionRadius(orbitalRadius, angleDeg, inclinationDeg float64) float64 {
	s := math.Sin(units.DegToRad(angleDeg))
	c := math.Cos(units.DegToRad(inclinationDeg))
	return orbitalRadius * math.Sqrt(1-s*s*c*c)
}

// AngularSeparation converts a projected separation in AU at a distance in
// parsecs into arcseconds. By definition of the parsec the ratio AU/pc is
// already the small-angle separation in arcseconds.
func AngularSeparation(positionRadius, distance float64) float64 {
	return positionRadius / distance
}

// InnerWorkingAngle returns factor·λ/D in arcseconds for a wavelength and
// aperture in meters.
func InnerWorkingAngle(factor, wavelength, aperture float64) float64 {
	return factor * wavelength / aperture * units.ArcsecPerRadian
}
