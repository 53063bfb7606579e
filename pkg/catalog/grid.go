package catalog

import (
	"encoding/json"
	"errors"
	"io"

	errorsmod "cosmossdk.io/errors"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/oxygene76/exoplanet-popsynth/pkg/population"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population/grid"
)

// GridDocument is the YAML/JSON encoding of a density grid. Axes may be
// omitted and supplied by the caller.
type GridDocument struct {
	RadiusAxis []float64   `json:"radius_axis,omitempty" yaml:"radius_axis,omitempty"`
	PeriodAxis []float64   `json:"period_axis,omitempty" yaml:"period_axis,omitempty"`
	Weights    [][]float64 `json:"weights" yaml:"weights"`
}

// ReadGrid parses a density grid. CSV input is a headerless numeric matrix,
// one row per radius bin. radiusAxis and periodAxis are used when the input
// carries no axes of its own.
func ReadGrid(r io.Reader, format Format, radiusAxis, periodAxis []float64) (*grid.DensityGrid, error) {
	var doc GridDocument
	var err error
	switch format {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&doc)
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&doc)
	default:
		doc.Weights, err = readMatrix(r)
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errorsmod.Wrap(population.ErrMalformedGrid, "grid file is empty")
		}
		return nil, errorsmod.Wrapf(population.ErrMalformedGrid, "grid file: %v", err)
	}

	if len(doc.RadiusAxis) == 0 {
		doc.RadiusAxis = radiusAxis
	}
	if len(doc.PeriodAxis) == 0 {
		doc.PeriodAxis = periodAxis
	}
	return grid.FromRows(doc.Weights, doc.RadiusAxis, doc.PeriodAxis)
}

// LoadGrid reads a grid file; the format follows the extension
func LoadGrid(path string, radiusAxis, periodAxis []float64) (*grid.DensityGrid, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadGrid(f, FormatFromPath(path), radiusAxis, periodAxis)
}

// WriteGrid encodes g as a YAML grid document including both axes
func WriteGrid(w io.Writer, g *grid.DensityGrid) error {
	rows, _ := g.Weights.Dims()
	doc := GridDocument{
		RadiusAxis: g.RadiusAxis,
		PeriodAxis: g.PeriodAxis,
		Weights:    make([][]float64, rows),
	}
	for i := range doc.Weights {
		doc.Weights[i] = mat.Row(nil, i, g.Weights)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func readMatrix(r io.Reader) ([][]float64, error) {
	reader := newConfigReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, io.EOF
	}

	rows := make([][]float64, 0, len(records))
	for i, record := range records {
		row := make([]float64, len(record))
		for j := range record {
			v, ok, err := parseFloat(field(record, j))
			if err != nil {
				return nil, errorsmod.Wrapf(err, "row %d column %d", i+1, j+1)
			}
			if !ok {
				return nil, errorsmod.Wrapf(population.ErrMalformedGrid, "row %d column %d is empty", i+1, j+1)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}
