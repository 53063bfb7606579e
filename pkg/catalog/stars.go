package catalog

import (
	"errors"
	"io"
	"strings"

	errorsmod "cosmossdk.io/errors"
	"golang.org/x/exp/rand"

	"github.com/oxygene76/exoplanet-popsynth/internal/types"
	"github.com/oxygene76/exoplanet-popsynth/pkg/astronomy/inclination"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population"
)

// Star catalog columns and the aliases accepted for each
var starColumns = map[string][]string{
	"id":         {"star_id", "id", "tic_id", "hpic_id"},
	"ra":         {"ra"},
	"dec":        {"dec"},
	"distance":   {"distance", "sy_dist"},
	"mass":       {"mass", "st_mass"},
	"luminosity": {"luminosity", "st_lum"},
}

var inclinationAliases = []string{"inclination", "incl"}

// StarOptions controls catalog loading
type StarOptions struct {
	// DistanceCutoff keeps stars with distance <= cutoff parsecs; zero keeps all.
	DistanceCutoff float64
	// Rand fills missing inclinations. Required only when a star has none.
	Rand *rand.Rand
	// Inclinations overrides the default cos(i) sampler.
	Inclinations *inclination.Sampler
}

// StarLoad is a loaded catalog plus what was dropped or filled on the way
type StarLoad struct {
	Stars        []types.Star
	Incomplete   int // rows dropped for a missing required value
	BeyondCutoff int // rows dropped by the distance cutoff
	Filled       int // inclinations drawn from the sampler
}

// ReadStars parses a star catalog CSV. A missing required column is fatal;
// rows with an empty required cell are dropped. Missing inclinations are
// drawn for the remaining rows in catalog order before the distance cutoff
// is applied. Lines starting with '#' are data rows like any other.
func ReadStars(r io.Reader, opts StarOptions) (*StarLoad, error) {
	reader := newReader(r)
	first, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errorsmod.Wrap(population.ErrMalformedCatalog, "star catalog is empty")
	}
	if err != nil {
		return nil, errorsmod.Wrapf(population.ErrMalformedCatalog, "star catalog header: %v", err)
	}

	h := newHeader(first)
	cols, err := h.require("star catalog", starColumns)
	if err != nil {
		return nil, err
	}
	inclCol, hasIncl := h.find(inclinationAliases...)

	load := &StarLoad{}
	var needInclination []int
	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errorsmod.Wrapf(population.ErrMalformedCatalog, "star catalog row %d: %v", row, err)
		}

		star, complete, err := parseStar(record, cols)
		if err != nil {
			return nil, errorsmod.Wrapf(population.ErrMalformedCatalog, "star catalog row %d: %v", row, err)
		}
		if !complete {
			load.Incomplete++
			continue
		}

		inclSet := false
		if hasIncl {
			v, ok, err := parseFloat(field(record, inclCol))
			if err != nil {
				return nil, errorsmod.Wrapf(population.ErrMalformedCatalog, "star catalog row %d: inclination: %v", row, err)
			}
			star.Inclination, inclSet = v, ok
		}
		if !inclSet {
			needInclination = append(needInclination, len(load.Stars))
		}
		load.Stars = append(load.Stars, star)
	}

	if len(needInclination) > 0 {
		if opts.Rand == nil {
			return nil, errorsmod.Wrapf(population.ErrInvalidConfig,
				"%d stars have no inclination and no random source was given", len(needInclination))
		}
		sampler := opts.Inclinations
		if sampler == nil {
			sampler = inclination.NewSampler(inclination.DefaultResolution)
		}
		draws := sampler.Draw(opts.Rand, len(needInclination))
		for k, i := range needInclination {
			load.Stars[i].Inclination = draws[k]
		}
		load.Filled = len(needInclination)
	}

	if opts.DistanceCutoff > 0 {
		kept := load.Stars[:0]
		for _, s := range load.Stars {
			if s.Distance <= opts.DistanceCutoff {
				kept = append(kept, s)
			}
		}
		load.BeyondCutoff = len(load.Stars) - len(kept)
		load.Stars = kept
	}
	if load.Stars == nil {
		load.Stars = []types.Star{}
	}
	return load, nil
}

// LoadStars reads a star catalog file
func LoadStars(path string, opts StarOptions) (*StarLoad, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadStars(f, opts)
}

func parseStar(record []string, cols map[string]int) (types.Star, bool, error) {
	star := types.Star{ID: normalizeID(field(record, cols["id"]))}
	if star.ID == "" {
		return star, false, nil
	}

	targets := []struct {
		name string
		dst  *float64
	}{
		{"ra", &star.RA},
		{"dec", &star.Dec},
		{"distance", &star.Distance},
		{"mass", &star.Mass},
		{"luminosity", &star.Luminosity},
	}
	for _, t := range targets {
		v, ok, err := parseFloat(field(record, cols[t.name]))
		if err != nil {
			return star, false, errorsmod.Wrapf(err, "column %s", t.name)
		}
		if !ok {
			return star, false, nil
		}
		*t.dst = v
	}
	return star, true, nil
}

// normalizeID strips the ".0" left on integer identifiers exported as floats
func normalizeID(id string) string {
	if len(id) > 2 && strings.HasSuffix(id, ".0") && strings.Trim(id[:len(id)-2], "0123456789") == "" {
		return id[:len(id)-2]
	}
	return id
}
