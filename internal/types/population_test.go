package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassificationBinContainsClosedRanges(t *testing.T) {
	b := ClassificationBin{RadiusLower: 0.8, RadiusUpper: 1.4, OrbitalRadiusLower: 0.95, OrbitalRadiusUpper: 1.67, Type: "earths"}

	assert.True(t, b.Contains(0.8, 0.95))
	assert.True(t, b.Contains(1.4, 1.67))
	assert.False(t, b.Contains(1.41, 1.0))
	assert.False(t, b.Contains(1.0, 0.94))
}

func TestPlanetIssueRoundTrip(t *testing.T) {
	tests := []struct {
		issue PlanetIssue
		text  string
	}{
		{0, ""},
		{IssueClassificationMiss, "classification_miss"},
		{IssueGeometricDomain | IssueClassificationMiss, "classification_miss|geometric_domain"},
		{IssueInclinationRange, "inclination_range"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.text, tt.issue.String())
		parsed, err := ParsePlanetIssue(tt.text)
		require.NoError(t, err)
		assert.Equal(t, tt.issue, parsed)
	}

	_, err := ParsePlanetIssue("classification_miss|bogus")
	assert.Error(t, err)
}

func TestOptional(t *testing.T) {
	v, ok := Some(1.5).Get()
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)

	_, ok = None[string]().Get()
	assert.False(t, ok)

	assert.Empty(t, Planet{}.HostID())
	assert.Equal(t, "S1", Planet{Host: &Star{ID: "S1"}}.HostID())
}
