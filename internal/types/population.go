package types

import (
	"fmt"
	"strings"
)

// Star represents a host star from the input catalog. Values are read once
// and never modified during a synthesis run.
type Star struct {
	ID          string  `json:"star_id" yaml:"star_id"`
	RA          float64 `json:"ra" yaml:"ra"`                   // degrees
	Dec         float64 `json:"dec" yaml:"dec"`                 // degrees
	Distance    float64 `json:"distance" yaml:"distance"`       // parsecs
	Mass        float64 `json:"mass" yaml:"mass"`               // solar masses
	Luminosity  float64 `json:"luminosity" yaml:"luminosity"`   // log10(L/L☉)
	Inclination float64 `json:"inclination" yaml:"inclination"` // degrees, [0, 180]
}

// ClassificationBin is one row of the planet classification table
type ClassificationBin struct {
	RadiusLower        float64 `json:"radius_lower" yaml:"radius_lower"`                 // Earth radii
	RadiusUpper        float64 `json:"radius_upper" yaml:"radius_upper"`                 // Earth radii
	OrbitalRadiusLower float64 `json:"orbital_radius_lower" yaml:"orbital_radius_lower"` // AU, luminosity scaled
	OrbitalRadiusUpper float64 `json:"orbital_radius_upper" yaml:"orbital_radius_upper"` // AU, luminosity scaled
	Type               string  `json:"type" yaml:"type"`
	AlbedoLower        float64 `json:"albedo_lower" yaml:"albedo_lower"`
	AlbedoUpper        float64 `json:"albedo_upper" yaml:"albedo_upper"`
}

// Contains reports whether a planet radius and effective orbital radius fall
// inside the bin. Both ranges are closed.
func (b ClassificationBin) Contains(radius, effOrbitalRadius float64) bool {
	return radius >= b.RadiusLower && radius <= b.RadiusUpper &&
		effOrbitalRadius >= b.OrbitalRadiusLower && effOrbitalRadius <= b.OrbitalRadiusUpper
}

// Optional holds a value that may be undefined for a given planet
type Optional[T any] struct {
	Value T
	Valid bool
}

// Some wraps a defined value
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Valid: true}
}

// None returns an undefined value
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is defined
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

// PlanetIssue flags per-planet conditions that left derived fields undefined
type PlanetIssue uint8

const (
	// IssueClassificationMiss: no classification bin matched
	IssueClassificationMiss PlanetIssue = 1 << iota
	// IssueGeometricDomain: arcsin argument outside [-1, 1]
	IssueGeometricDomain
	// IssueInclinationRange: host inclination outside [0, 180]
	IssueInclinationRange
)

// AllIssues lists every issue flag in bit order
var AllIssues = []PlanetIssue{IssueClassificationMiss, IssueGeometricDomain, IssueInclinationRange}

// Has reports whether flag is set
func (p PlanetIssue) Has(flag PlanetIssue) bool {
	return p&flag != 0
}

func (p PlanetIssue) String() string {
	if p == 0 {
		return ""
	}
	var parts []string
	if p.Has(IssueClassificationMiss) {
		parts = append(parts, "classification_miss")
	}
	if p.Has(IssueGeometricDomain) {
		parts = append(parts, "geometric_domain")
	}
	if p.Has(IssueInclinationRange) {
		parts = append(parts, "inclination_range")
	}
	return strings.Join(parts, "|")
}

// ParsePlanetIssue parses the "|"-joined form produced by String. Unknown
// names are rejected.
func ParsePlanetIssue(s string) (PlanetIssue, error) {
	var p PlanetIssue
	if s == "" {
		return p, nil
	}
	for _, name := range strings.Split(s, "|") {
		found := false
		for _, flag := range AllIssues {
			if flag.String() == name {
				p |= flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown planet issue %q", name)
		}
	}
	return p, nil
}

// Planet is a fully derived member of the synthetic population
type Planet struct {
	Name   string
	Radius float64 // Earth radii
	Period float64 // days
	Host   *Star

	OrbitalRadius          float64 // AU
	EffectiveOrbitalRadius float64 // AU

	Type                    Optional[string]
	Albedo                  Optional[float64]
	OptimalObservationAngle Optional[float64] // degrees
	AngularSeparation       Optional[float64] // arcseconds
	Contrast                Optional[float64]

	Issues PlanetIssue
}

// HostID returns the identifier of the host star
func (p Planet) HostID() string {
	if p.Host == nil {
		return ""
	}
	return p.Host.ID
}
