package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	errorsmod "cosmossdk.io/errors"
	"gopkg.in/yaml.v3"

	"github.com/oxygene76/exoplanet-popsynth/internal/types"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population/assembler"
)

// PlanetColumns is the header of a planet population table
var PlanetColumns = []string{
	"radius",
	"period",
	"star_id",
	"name",
	"orbital_radius",
	"eff_orbital_radius",
	"planet_type",
	"albedo",
	"optimal_observation_angle",
	"angular_separation",
	"contrast",
	"issues",
}

// WritePlanets writes one CSV row per planet. Undefined values are written
// as empty cells.
func WritePlanets(w io.Writer, planets []types.Planet) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(PlanetColumns); err != nil {
		return fmt.Errorf("failed to write planet header: %w", err)
	}
	record := make([]string, len(PlanetColumns))
	for _, p := range planets {
		record[0] = formatFloat(p.Radius)
		record[1] = formatFloat(p.Period)
		record[2] = p.HostID()
		record[3] = p.Name
		record[4] = formatFloat(p.OrbitalRadius)
		record[5] = formatFloat(p.EffectiveOrbitalRadius)
		record[6] = p.Type.Value
		record[7] = formatOptional(p.Albedo)
		record[8] = formatOptional(p.OptimalObservationAngle)
		record[9] = formatOptional(p.AngularSeparation)
		record[10] = formatOptional(p.Contrast)
		record[11] = p.Issues.String()
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write planet %s: %w", p.Name, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatOptional(o types.Optional[float64]) string {
	v, ok := o.Get()
	if !ok {
		return ""
	}
	return formatFloat(v)
}

// SavePlanets writes planets to path
func SavePlanets(path string, planets []types.Planet) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	if err := WritePlanets(f, planets); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadPlanets parses a table written by WritePlanets. Hosts are resolved
// against stars by identifier; when stars is nil each host is a stub
// carrying only its identifier. An unknown host identifier is an error.
func ReadPlanets(r io.Reader, stars []types.Star) ([]types.Planet, error) {
	reader := newReader(r)
	first, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errorsmod.Wrap(population.ErrMalformedCatalog, "planet table is empty")
	}
	if err != nil {
		return nil, errorsmod.Wrapf(population.ErrMalformedCatalog, "planet table header: %v", err)
	}

	required := make(map[string][]string, len(PlanetColumns))
	for _, c := range PlanetColumns {
		required[c] = []string{c}
	}
	// issues is optional
	delete(required, "issues")
	cols, err := newHeader(first).require("planet table", required)
	if err != nil {
		return nil, err
	}
	issuesCol, _ := newHeader(first).find("issues")

	hosts := make(map[string]*types.Star, len(stars))
	for i := range stars {
		hosts[stars[i].ID] = &stars[i]
	}

	planets := make([]types.Planet, 0)
	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errorsmod.Wrapf(population.ErrMalformedCatalog, "planet table row %d: %v", row, err)
		}
		p, err := parsePlanet(record, cols, issuesCol)
		if err != nil {
			return nil, errorsmod.Wrapf(population.ErrMalformedCatalog, "planet table row %d: %v", row, err)
		}

		id := field(record, cols["star_id"])
		host, ok := hosts[id]
		if !ok {
			if stars != nil {
				return nil, errorsmod.Wrapf(population.ErrMalformedCatalog,
					"planet table row %d: unknown host star %q", row, id)
			}
			host = &types.Star{ID: id}
			hosts[id] = host
		}
		p.Host = host
		planets = append(planets, p)
	}
	return planets, nil
}

// LoadPlanets reads a planet table file
func LoadPlanets(path string, stars []types.Star) ([]types.Planet, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadPlanets(f, stars)
}

func parsePlanet(record []string, cols map[string]int, issuesCol int) (types.Planet, error) {
	p := types.Planet{Name: field(record, cols["name"])}

	required := []struct {
		name string
		dst  *float64
	}{
		{"radius", &p.Radius},
		{"period", &p.Period},
		{"orbital_radius", &p.OrbitalRadius},
		{"eff_orbital_radius", &p.EffectiveOrbitalRadius},
	}
	for _, c := range required {
		v, ok, err := parseFloat(field(record, cols[c.name]))
		if err != nil {
			return p, fmt.Errorf("column %s: %w", c.name, err)
		}
		if !ok {
			return p, fmt.Errorf("column %s is empty", c.name)
		}
		*c.dst = v
	}

	optional := []struct {
		name string
		dst  *types.Optional[float64]
	}{
		{"albedo", &p.Albedo},
		{"optimal_observation_angle", &p.OptimalObservationAngle},
		{"angular_separation", &p.AngularSeparation},
		{"contrast", &p.Contrast},
	}
	for _, c := range optional {
		v, ok, err := parseFloat(field(record, cols[c.name]))
		if err != nil {
			return p, fmt.Errorf("column %s: %w", c.name, err)
		}
		if ok {
			*c.dst = types.Some(v)
		}
	}

	if t := field(record, cols["planet_type"]); t != "" {
		p.Type = types.Some(t)
	}
	issues, err := types.ParsePlanetIssue(field(record, issuesCol))
	if err != nil {
		return p, err
	}
	p.Issues = issues
	return p, nil
}

// WriteMetadata encodes run metadata as YAML
func WriteMetadata(w io.Writer, meta assembler.Metadata) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(meta); err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	return enc.Close()
}

// SaveMetadata writes run metadata to path
func SaveMetadata(path string, meta assembler.Metadata) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	if err := WriteMetadata(f, meta); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadMetadata decodes run metadata written by WriteMetadata
func ReadMetadata(r io.Reader) (assembler.Metadata, error) {
	var meta assembler.Metadata
	if err := yaml.NewDecoder(r).Decode(&meta); err != nil {
		return meta, fmt.Errorf("failed to decode metadata: %w", err)
	}
	return meta, nil
}
