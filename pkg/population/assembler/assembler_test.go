package assembler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/oxygene76/exoplanet-popsynth/internal/types"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population/grid"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population/multiplicity"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population/physical"
)

type fakeRecorder struct {
	mu        sync.Mutex
	stages    []string
	sampled   int
	assigned  int
	shortfall int
	planets   int
}

func (f *fakeRecorder) ObserveStage(stage string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stages = append(f.stages, stage)
}

func (f *fakeRecorder) AddSampled(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sampled += n
}

func (f *fakeRecorder) SetAssignment(assigned, shortfall int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assigned, f.shortfall = assigned, shortfall
}

func (f *fakeRecorder) ObservePlanet(types.Planet) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.planets++
}

func testStars(n int) []types.Star {
	stars := make([]types.Star, n)
	for i := range stars {
		stars[i] = types.Star{
			ID:          fmt.Sprintf("TIC %d", 1000+i),
			RA:          float64(i),
			Dec:         -float64(i),
			Distance:    5 + float64(i),
			Mass:        0.8 + 0.01*float64(i),
			Luminosity:  0,
			Inclination: float64(10 + (i*7)%160),
		}
	}
	return stars
}

func newAssembler(t *testing.T, opts Options) *Assembler {
	t.Helper()
	g, err := grid.FromRows([][]float64{
		{4, 1, 0},
		{1, 2, 1},
		{0, 1, 3},
	}, []float64{1.0, 4.0, 10.0}, []float64{10, 365.25, 3000})
	require.NoError(t, err)

	model, err := physical.NewModel(physical.DefaultTable(), physical.DefaultPhaseAngle)
	require.NoError(t, err)

	if opts.Multiplicity == (multiplicity.Params{}) {
		opts.Multiplicity = multiplicity.DefaultParams()
	}
	a, err := New(g, model, opts)
	require.NoError(t, err)
	return a
}

func TestRunAssignsEveryPlanetWhenCapacityAllows(t *testing.T) {
	rec := &fakeRecorder{}
	// at least two planets per star makes room for all 100
	a := newAssembler(t, Options{
		Workers:      4,
		Recorder:     rec,
		Multiplicity: multiplicity.Params{MinPerStar: 2, MaxPerStar: 7},
	})
	stars := testStars(50)

	pop, err := a.Run(context.Background(), stars, 100, rand.New(rand.NewSource(42)), 42)
	require.NoError(t, err)

	assert.Len(t, pop.Planets, 100)
	assert.Equal(t, 100, pop.Metadata.Assigned)
	assert.Zero(t, pop.Metadata.Shortfall)
	assert.Equal(t, uint64(42), pop.Metadata.Seed)
	assert.NotEmpty(t, pop.Metadata.RunID)

	ids := make(map[string]bool, len(stars))
	for _, s := range pop.Stars {
		ids[s.ID] = true
	}
	for i, p := range pop.Planets {
		assert.Equal(t, fmt.Sprintf("Planet_%d", i+1), p.Name)
		require.NotNil(t, p.Host)
		assert.True(t, ids[p.HostID()], "unknown host %s", p.HostID())
		assert.Contains(t, []float64{1.0, 4.0, 10.0}, p.Radius)
		assert.Contains(t, []float64{10, 365.25, 3000}, p.Period)
	}

	assert.Equal(t, []string{StageSample, StageAssign, StageDerive}, rec.stages)
	assert.Equal(t, 100, rec.sampled)
	assert.Equal(t, 100, rec.assigned)
	assert.Equal(t, 100, rec.planets)
}

func TestRunHostsPointIntoReturnedStars(t *testing.T) {
	a := newAssembler(t, Options{Workers: 2})
	pop, err := a.Run(context.Background(), testStars(5), 10, rand.New(rand.NewSource(1)), 1)
	require.NoError(t, err)

	for _, p := range pop.Planets {
		found := false
		for i := range pop.Stars {
			if p.Host == &pop.Stars[i] {
				found = true
			}
		}
		assert.True(t, found, "%s host is not an element of Stars", p.Name)
	}
}

func TestRunDeterministicAcrossWorkerCounts(t *testing.T) {
	stars := testStars(40)

	serial := newAssembler(t, Options{Workers: 1})
	parallel := newAssembler(t, Options{Workers: 8})

	a, err := serial.Run(context.Background(), stars, 120, rand.New(rand.NewSource(7)), 7)
	require.NoError(t, err)
	b, err := parallel.Run(context.Background(), stars, 120, rand.New(rand.NewSource(7)), 7)
	require.NoError(t, err)

	require.Equal(t, len(a.Planets), len(b.Planets))
	for i := range a.Planets {
		pa, pb := a.Planets[i], b.Planets[i]
		assert.Equal(t, pa.Name, pb.Name)
		assert.Equal(t, pa.HostID(), pb.HostID())
		assert.Equal(t, pa.Radius, pb.Radius)
		assert.Equal(t, pa.Period, pb.Period)
		assert.Equal(t, pa.Albedo, pb.Albedo)
		assert.Equal(t, pa.Contrast, pb.Contrast)
		assert.Equal(t, pa.Issues, pb.Issues)
	}
}

func TestRunReportsShortfall(t *testing.T) {
	rec := &fakeRecorder{}
	a := newAssembler(t, Options{
		Multiplicity: multiplicity.Params{MinPerStar: 1, MaxPerStar: 1},
		Recorder:     rec,
	})

	pop, err := a.Run(context.Background(), testStars(3), 10, rand.New(rand.NewSource(3)), 3)
	require.NoError(t, err)

	assert.Len(t, pop.Planets, 3)
	assert.Equal(t, 10, pop.Metadata.Requested)
	assert.Equal(t, 3, pop.Metadata.Assigned)
	assert.Equal(t, 7, pop.Metadata.Shortfall)
	assert.Equal(t, 7, rec.shortfall)

	hosts := map[string]int{}
	for _, p := range pop.Planets {
		hosts[p.HostID()]++
	}
	assert.Len(t, hosts, 3)
}

func TestRunEmptyInputs(t *testing.T) {
	a := newAssembler(t, Options{})

	pop, err := a.Run(context.Background(), testStars(4), 0, rand.New(rand.NewSource(1)), 1)
	require.NoError(t, err)
	assert.Empty(t, pop.Planets)

	pop, err = a.Run(context.Background(), nil, 5, rand.New(rand.NewSource(1)), 1)
	require.NoError(t, err)
	assert.Empty(t, pop.Planets)
	assert.Equal(t, 5, pop.Metadata.Shortfall)
}

func TestRunCancelled(t *testing.T) {
	a := newAssembler(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Run(ctx, testStars(10), 20, rand.New(rand.NewSource(1)), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, population.ErrCancelled)
}

func TestRunRejectsNegativeCount(t *testing.T) {
	a := newAssembler(t, Options{})
	_, err := a.Run(context.Background(), testStars(1), -1, rand.New(rand.NewSource(1)), 1)
	assert.ErrorIs(t, err, population.ErrInvalidConfig)
}

func TestValidateStars(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s []types.Star)
		want   error
	}{
		{"valid", func([]types.Star) {}, nil},
		{"missing id", func(s []types.Star) { s[1].ID = "" }, population.ErrMalformedCatalog},
		{"duplicate id", func(s []types.Star) { s[1].ID = s[0].ID }, population.ErrMalformedCatalog},
		{"zero distance", func(s []types.Star) { s[0].Distance = 0 }, population.ErrInputDomain},
		{"negative mass", func(s []types.Star) { s[2].Mass = -1 }, population.ErrInputDomain},
		{"inclination above 180", func(s []types.Star) { s[0].Inclination = 181 }, population.ErrInputDomain},
		{"inclination below 0", func(s []types.Star) { s[0].Inclination = -0.5 }, population.ErrInputDomain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stars := testStars(3)
			tt.mutate(stars)
			err := ValidateStars(stars)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewRejectsBadOptions(t *testing.T) {
	g, err := grid.FromRows([][]float64{{1}}, []float64{1}, []float64{365})
	require.NoError(t, err)

	_, err = New(g, nil, Options{Multiplicity: multiplicity.DefaultParams()})
	assert.ErrorIs(t, err, population.ErrInvalidConfig)

	model, err := physical.NewModel(physical.DefaultTable(), physical.DefaultPhaseAngle)
	require.NoError(t, err)
	_, err = New(g, model, Options{Multiplicity: multiplicity.Params{MinPerStar: 3, MaxPerStar: 1}})
	assert.ErrorIs(t, err, population.ErrInvalidConfig)
}
