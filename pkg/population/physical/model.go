// Package physical derives the physical and observational state of a
// synthetic planet from its radius, period and host star.
package physical

import (
	"math"

	errorsmod "cosmossdk.io/errors"

	"github.com/oxygene76/exoplanet-popsynth/internal/types"
	"github.com/oxygene76/exoplanet-popsynth/pkg/astronomy/geometry"
	"github.com/oxygene76/exoplanet-popsynth/pkg/astronomy/orbital"
	"github.com/oxygene76/exoplanet-popsynth/pkg/astronomy/photometry"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population"
)

// DefaultPhaseAngle is the reference phase angle in degrees
const DefaultPhaseAngle = 60.0

// Model computes derived planet fields. It holds only read-only state and
// may be shared between goroutines.
type Model struct {
	table      Table
	phaseAngle float64 // degrees
	phase      float64 // Lambertian phase function at phaseAngle
}

// NewModel validates the table and phase angle
func NewModel(table Table, phaseAngle float64) (*Model, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(phaseAngle) || phaseAngle < 0 || phaseAngle > 180 {
		return nil, errorsmod.Wrapf(population.ErrInvalidConfig,
			"reference phase angle must be within [0, 180] degrees, got %v", phaseAngle)
	}
	return &Model{
		table:      table,
		phaseAngle: phaseAngle,
		phase:      photometry.LambertPhase(phaseAngle),
	}, nil
}

// PhaseAngle returns the reference phase angle in degrees
func (m *Model) PhaseAngle() float64 { return m.phaseAngle }

// Table returns the classification table
func (m *Model) Table() Table { return m.table }

// Derive builds the planet record for a (radius, period) pair around host.
// albedoDraw is a uniform variate in [0, 1) mapped onto the matched bin's
// albedo range, which keeps Derive free of hidden random state.
//
// Undefined intermediate values never fail the call: a classification miss
// leaves type, albedo and contrast undefined; an undefined observation angle
// leaves the angle and angular separation undefined. Each case sets the
// matching issue flag.
func (m *Model) Derive(radius, period float64, host *types.Star, albedoDraw float64) types.Planet {
	p := types.Planet{
		Radius: radius,
		Period: period,
		Host:   host,
	}

	p.OrbitalRadius = orbital.SemiMajorAxis(period, host.Mass)
	p.EffectiveOrbitalRadius = orbital.EffectiveOrbitalRadius(p.OrbitalRadius, host.Luminosity)

	if bin, ok := m.table.Classify(radius, p.EffectiveOrbitalRadius); ok {
		albedo := bin.AlbedoLower + albedoDraw*(bin.AlbedoUpper-bin.AlbedoLower)
		p.Type = types.Some(bin.Type)
		p.Albedo = types.Some(albedo)
		p.Contrast = types.Some(photometry.Contrast(albedo, m.phase, radius, p.OrbitalRadius))
	} else {
		p.Issues |= types.IssueClassificationMiss
	}

	angle, status := geometry.OptimalObservationAngle(host.Inclination, m.phaseAngle)
	switch status {
	case geometry.AngleOK:
		p.OptimalObservationAngle = types.Some(angle)
		pos := geometry.PositionRadius(p.OrbitalRadius, angle, host.Inclination)
		p.AngularSeparation = types.Some(geometry.AngularSeparation(pos, host.Distance))
	case geometry.AngleDomainError:
		p.Issues |= types.IssueGeometricDomain
	case geometry.AngleOutOfRange:
		p.Issues |= types.IssueInclinationRange
	}

	return p
}
