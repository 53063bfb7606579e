package units

import "math"

// Physical constants in SI units (IAU 2015 nominal values where applicable)
const (
	G             = 6.6743e-11            // m³/(kg·s²)
	SolarMass     = 1.988409870698051e30  // kg
	AU            = 1.495978707e11        // m
	EarthRadius   = 6.3781e6              // m, equatorial
	Parsec        = 3.0856775814913673e16 // m
	SecondsPerDay = 86400.0
)

// ArcsecPerRadian converts a small angle in radians to arcseconds
const ArcsecPerRadian = 180.0 / math.Pi * 3600.0

// DegToRad converts degrees to radians
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// RadToDeg converts radians to degrees
func RadToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// DaysToSeconds converts a duration in days to seconds
func DaysToSeconds(days float64) float64 {
	return days * SecondsPerDay
}

// EarthRadiiToAU converts a radius in Earth radii to astronomical units
func EarthRadiiToAU(r float64) float64 {
	return r * EarthRadius / AU
}

// MetersToAU converts meters to astronomical units
func MetersToAU(m float64) float64 {
	return m / AU
}

// SolarMassesToKg converts solar masses to kilograms
func SolarMassesToKg(m float64) float64 {
	return m * SolarMass
}
