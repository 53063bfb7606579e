package physical

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxygene76/exoplanet-popsynth/internal/types"
	"github.com/oxygene76/exoplanet-popsynth/pkg/astronomy/photometry"
	"github.com/oxygene76/exoplanet-popsynth/pkg/astronomy/units"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population"
)

func sunLike(inclination float64) *types.Star {
	return &types.Star{ID: "S1", Distance: 10, Mass: 1, Luminosity: 0, Inclination: inclination}
}

func newModel(t *testing.T) *Model {
	t.Helper()
	m, err := NewModel(DefaultTable(), DefaultPhaseAngle)
	require.NoError(t, err)
	return m
}

func TestDeriveEarthAnalog(t *testing.T) {
	m := newModel(t)
	host := sunLike(20)
	p := m.Derive(1.0, 365.25, host, 0.5)

	assert.Same(t, host, p.Host)
	assert.Equal(t, "S1", p.HostID())
	assert.InDelta(t, 1.0, p.OrbitalRadius, 1e-3)
	assert.InDelta(t, p.OrbitalRadius, p.EffectiveOrbitalRadius, 1e-15)

	planetType, ok := p.Type.Get()
	require.True(t, ok)
	assert.Equal(t, "earths", planetType)

	albedo, ok := p.Albedo.Get()
	require.True(t, ok)
	assert.GreaterOrEqual(t, albedo, 0.2)
	assert.LessOrEqual(t, albedo, 0.4)
	assert.InDelta(t, 0.3, albedo, 1e-12)

	angle, ok := p.OptimalObservationAngle.Get()
	require.True(t, ok)
	assert.Equal(t, 90.0, angle)

	// θ = 90° leaves r·sin(i)
	sep, ok := p.AngularSeparation.Get()
	require.True(t, ok)
	assert.InDelta(t, p.OrbitalRadius*math.Sin(20*math.Pi/180)/10, sep, 1e-12)

	rp := units.EarthRadius / units.AU
	want := 0.3 * photometry.LambertPhase(60) * math.Pi * rp * rp / (p.OrbitalRadius * p.OrbitalRadius)
	contrast, ok := p.Contrast.Get()
	require.True(t, ok)
	assert.InEpsilon(t, want, contrast, 1e-12)

	assert.Zero(t, p.Issues)
}

func TestDeriveAlbedoSpansBin(t *testing.T) {
	m := newModel(t)
	lo := m.Derive(1.0, 365.25, sunLike(20), 0)
	hi := m.Derive(1.0, 365.25, sunLike(20), 0.999999)
	assert.InDelta(t, 0.2, lo.Albedo.Value, 1e-12)
	assert.InDelta(t, 0.4, hi.Albedo.Value, 1e-6)
}

func TestDeriveLuminosityScalesClassification(t *testing.T) {
	m := newModel(t)
	host := sunLike(20)
	host.Luminosity = 1 // ten times brighter pushes the planet past the frost line
	p := m.Derive(1.0, 365.25, host, 0.5)
	assert.InDelta(t, 10*p.OrbitalRadius, p.EffectiveOrbitalRadius, 1e-12)
	assert.Equal(t, "frozen_planets", p.Type.Value)
}

func TestDeriveClassificationMiss(t *testing.T) {
	m := newModel(t)
	p := m.Derive(2.0, 365.25, sunLike(20), 0.5)

	assert.True(t, p.Issues.Has(types.IssueClassificationMiss))
	assert.False(t, p.Type.Valid)
	assert.False(t, p.Albedo.Valid)
	assert.False(t, p.Contrast.Valid)
	// geometry does not depend on classification
	assert.True(t, p.OptimalObservationAngle.Valid)
	assert.True(t, p.AngularSeparation.Valid)
}

func TestDeriveInclinationOutOfRange(t *testing.T) {
	m := newModel(t)
	p := m.Derive(1.0, 365.25, sunLike(200), 0.5)

	assert.True(t, p.Issues.Has(types.IssueInclinationRange))
	assert.False(t, p.Issues.Has(types.IssueGeometricDomain))
	assert.False(t, p.OptimalObservationAngle.Valid)
	assert.False(t, p.AngularSeparation.Valid)
	assert.True(t, p.Contrast.Valid)
}

func TestDeriveGeometricDomainError(t *testing.T) {
	m, err := NewModel(DefaultTable(), 10)
	require.NoError(t, err)
	p := m.Derive(1.0, 365.25, sunLike(40), 0.5)

	assert.True(t, p.Issues.Has(types.IssueGeometricDomain))
	assert.False(t, p.OptimalObservationAngle.Valid)
	assert.False(t, p.AngularSeparation.Valid)
	assert.Equal(t, "geometric_domain", p.Issues.String())
}

func TestClassifyFirstMatchWins(t *testing.T) {
	table := Table{
		{RadiusLower: 0, RadiusUpper: 10, OrbitalRadiusLower: 0, OrbitalRadiusUpper: 10, Type: "first", AlbedoLower: 0.1, AlbedoUpper: 0.2},
		{RadiusLower: 0, RadiusUpper: 10, OrbitalRadiusLower: 0, OrbitalRadiusUpper: 10, Type: "second", AlbedoLower: 0.5, AlbedoUpper: 0.6},
	}
	bin, ok := table.Classify(1, 1)
	require.True(t, ok)
	assert.Equal(t, "first", bin.Type)

	_, ok = table.Classify(11, 1)
	assert.False(t, ok)
	assert.Equal(t, []string{"first", "second"}, table.Types())
}

func TestClassifyBoundsInclusive(t *testing.T) {
	table := DefaultTable()
	bin, ok := table.Classify(0.8, 0.95)
	require.True(t, ok)
	assert.Equal(t, "mercuries", bin.Type)
}

func TestTableValidate(t *testing.T) {
	good := types.ClassificationBin{RadiusLower: 1, RadiusUpper: 2, OrbitalRadiusLower: 0, OrbitalRadiusUpper: 1, Type: "x", AlbedoLower: 0.1, AlbedoUpper: 0.2}

	noLabel := good
	noLabel.Type = ""
	inverted := good
	inverted.RadiusLower = 3
	badAlbedo := good
	badAlbedo.AlbedoUpper = 1.5
	missing := good
	missing.OrbitalRadiusUpper = math.NaN()

	assert.NoError(t, Table{good}.Validate())
	assert.NoError(t, DefaultTable().Validate())
	assert.ErrorIs(t, Table{noLabel}.Validate(), population.ErrMalformedCatalog)
	assert.ErrorIs(t, Table{missing}.Validate(), population.ErrMalformedCatalog)
	assert.ErrorIs(t, Table{inverted}.Validate(), population.ErrInputDomain)
	assert.ErrorIs(t, Table{badAlbedo}.Validate(), population.ErrInputDomain)
}

func TestNewModelRejectsPhaseAngle(t *testing.T) {
	_, err := NewModel(DefaultTable(), 190)
	assert.ErrorIs(t, err, population.ErrInvalidConfig)
}
