// Package catalog reads and writes the external tables of a synthesis run:
// star catalogs, classification tables, density grids, planet populations
// and run metadata.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	errorsmod "cosmossdk.io/errors"

	"github.com/oxygene76/exoplanet-popsynth/pkg/population"
)

// header maps normalized column names to their position
type header map[string]int

func newHeader(record []string) header {
	h := make(header, len(record))
	for i, name := range record {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}
	return h
}

// find returns the position of the first alias present
func (h header) find(aliases ...string) (int, bool) {
	for _, a := range aliases {
		if i, ok := h[a]; ok {
			return i, true
		}
	}
	return -1, false
}

// require resolves every column or fails with the missing names
func (h header) require(table string, columns map[string][]string) (map[string]int, error) {
	idx := make(map[string]int, len(columns))
	var missing []string
	for name, aliases := range columns {
		i, ok := h.find(aliases...)
		if !ok {
			missing = append(missing, name)
			continue
		}
		idx[name] = i
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, errorsmod.Wrapf(population.ErrMalformedCatalog,
			"%s is missing required columns: %s", table, strings.Join(missing, ", "))
	}
	return idx, nil
}

// newReader reads data tables. Every line is a record, including one that
// starts with '#'.
func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader
}

// newConfigReader reads hand-edited inputs that may carry '#' comment lines
func newConfigReader(r io.Reader) *csv.Reader {
	reader := newReader(r)
	reader.Comment = '#'
	return reader
}

// field returns the trimmed cell or "" when the record is short
func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// parseFloat treats "", "nan" and "NaN" as missing
func parseFloat(s string) (float64, bool, error) {
	if s == "" || strings.EqualFold(s, "nan") {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Format is a structured file encoding
type Format string

const (
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks a format from the file extension, defaulting to CSV
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatCSV
	}
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

// createFile creates path and any missing parent directories
func createFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}
