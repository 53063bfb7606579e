package catalog

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	errorsmod "cosmossdk.io/errors"
	"gopkg.in/yaml.v3"

	"github.com/oxygene76/exoplanet-popsynth/internal/types"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population/physical"
)

var classificationColumns = map[string][]string{
	"radius_lower":         {"radius_lower"},
	"radius_upper":         {"radius_upper"},
	"orbital_radius_lower": {"orbital_radius_lower"},
	"orbital_radius_upper": {"orbital_radius_upper"},
	"type":                 {"type", "planet_type"},
	"albedo_lower":         {"albedo_lower"},
	"albedo_upper":         {"albedo_upper"},
}

var classificationHeader = []string{
	"radius_lower", "radius_upper", "orbital_radius_lower", "orbital_radius_upper",
	"type", "albedo_lower", "albedo_upper",
}

// ReadClassification parses a classification table. Row order is kept.
// Empty bound cells are read as NaN so validation reports them.
func ReadClassification(r io.Reader, format Format) (physical.Table, error) {
	var (
		table physical.Table
		err   error
	)
	switch format {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&table)
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&table)
	default:
		table, err = readClassificationCSV(r)
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errorsmod.Wrap(population.ErrMalformedCatalog, "classification table is empty")
		}
		return nil, errorsmod.Wrapf(population.ErrMalformedCatalog, "classification table: %v", err)
	}
	if len(table) == 0 {
		return nil, errorsmod.Wrap(population.ErrMalformedCatalog, "classification table has no bins")
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// LoadClassification reads a classification file; the format follows the
// extension.
func LoadClassification(path string) (physical.Table, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadClassification(f, FormatFromPath(path))
}

func readClassificationCSV(r io.Reader) (physical.Table, error) {
	reader := newConfigReader(r)
	first, err := reader.Read()
	if err != nil {
		return nil, err
	}
	cols, err := newHeader(first).require("classification table", classificationColumns)
	if err != nil {
		return nil, err
	}

	var table physical.Table
	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		bin := types.ClassificationBin{Type: field(record, cols["type"])}
		bounds := []struct {
			name string
			dst  *float64
		}{
			{"radius_lower", &bin.RadiusLower},
			{"radius_upper", &bin.RadiusUpper},
			{"orbital_radius_lower", &bin.OrbitalRadiusLower},
			{"orbital_radius_upper", &bin.OrbitalRadiusUpper},
			{"albedo_lower", &bin.AlbedoLower},
			{"albedo_upper", &bin.AlbedoUpper},
		}
		for _, b := range bounds {
			v, ok, err := parseFloat(field(record, cols[b.name]))
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", row, b.name, err)
			}
			if !ok {
				v = math.NaN()
			}
			*b.dst = v
		}
		table = append(table, bin)
	}
	return table, nil
}

// WriteClassification writes table as CSV in the column order read by
// ReadClassification.
func WriteClassification(w io.Writer, table physical.Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(classificationHeader); err != nil {
		return err
	}
	for _, b := range table {
		record := []string{
			formatFloat(b.RadiusLower), formatFloat(b.RadiusUpper),
			formatFloat(b.OrbitalRadiusLower), formatFloat(b.OrbitalRadiusUpper),
			b.Type,
			formatFloat(b.AlbedoLower), formatFloat(b.AlbedoUpper),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
