package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gilchrisn/reaction-network-analysis/pkg/models"
)

// ReadTSV reads a tab-separated export with a header row into raw rows.
// Only the columns named by the header are kept; Reactant and Product must be present.
func ReadTSV(r io.Reader) ([]RawRow, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, models.ValidationError{Field: "header", Row: -1, Message: "input has no header row"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var missing models.ValidationErrors
	for _, required := range []string{ColumnReactant, ColumnProduct} {
		if !contains(header, required) {
			missing = append(missing, models.ValidationError{Field: required, Row: -1, Message: "required column is missing from header"})
		}
	}
	if len(missing) > 0 {
		return nil, missing
	}

	rows := make([]RawRow, 0)
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows), err)
		}

		row := make(RawRow, len(header))
		for i, column := range header {
			if i < len(fields) {
				row[column] = fields[i]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// LoadFile reads and normalizes a reaction export from disk
func LoadFile(path string, opts Options) (*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reaction file: %w", err)
	}
	defer file.Close()

	rows, err := ReadTSV(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	result, err := Normalize(rows, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize %s: %w", path, err)
	}
	return result, nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
