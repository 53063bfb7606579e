package photometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oxygene76/exoplanet-popsynth/pkg/astronomy/units"
)

func TestLambertPhase(t *testing.T) {
	tests := []struct {
		name  string
		alpha float64
		want  float64
	}{
		{"full phase", 0, 1},
		{"quadrature", 90, 1 / math.Pi},
		{"new phase", 180, 0},
		{"reference angle", 60, (math.Sqrt(3)/2 + (2*math.Pi/3)*0.5) / math.Pi},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, LambertPhase(tt.alpha), 1e-12)
		})
	}
}

func TestContrastClosedForm(t *testing.T) {
	phase := LambertPhase(60)
	rp := units.EarthRadius / units.AU
	want := 0.3 * phase * math.Pi * rp * rp

	got := Contrast(0.3, phase, 1.0, 1.0)
	assert.InEpsilon(t, want, got, 1e-12)
	assert.InDelta(t, 1.043e-9, got, 1e-11)
}

func TestContrastInverseSquare(t *testing.T) {
	c1 := Contrast(0.3, 0.5, 1, 1)
	c2 := Contrast(0.3, 0.5, 1, 2)
	assert.InEpsilon(t, 4.0, c1/c2, 1e-12)
}
