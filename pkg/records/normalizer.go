package records

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gilchrisn/reaction-network-analysis/pkg/models"
)

// Column names of the reaction export. Matching is exact and case-sensitive.
const (
	ColumnReactant = "Reactant"
	ColumnProduct  = "Product"
	ColumnSteps    = "Number of Reaction Steps"
)

// MoleculeSeparator splits a field listing several molecules
const MoleculeSeparator = "; "

// RawRow is one loosely typed row as handed over by the tabular loader
type RawRow map[string]string

// Options controls how raw rows are normalized
type Options struct {
	Lenient       bool // skip offending rows instead of failing
	Lowercase     bool // lowercase molecule names before use
	DedupeTriples bool // drop repeated (reactant, product, steps) triples
	SplitFields   bool // expand "a; b" fields into one record per molecule pair
}

// DefaultOptions returns the normalization used for reaction exports
func DefaultOptions() Options {
	return Options{
		Lenient:       false,
		Lowercase:     true,
		DedupeTriples: false,
		SplitFields:   true,
	}
}

// SkippedRow records a row dropped in lenient mode
type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Result is the output of Normalize
type Result struct {
	Records []models.Record `json:"records"`
	Skipped []SkippedRow    `json:"skipped,omitempty"`
}

// Normalize validates raw rows and converts them into canonical records.
// In strict mode the first offending row aborts normalization and no records are returned.
func Normalize(rows []RawRow, opts Options) (*Result, error) {
	result := &Result{
		Records: make([]models.Record, 0, len(rows)),
	}
	seen := make(map[tripleKey]bool)

	for i, row := range rows {
		recs, err := normalizeRow(i, row, opts)
		if err != nil {
			if !opts.Lenient {
				return nil, err
			}
			result.Skipped = append(result.Skipped, SkippedRow{Row: i, Reason: err.Error()})
			continue
		}

		for _, rec := range recs {
			if opts.DedupeTriples {
				key := keyOf(rec)
				if seen[key] {
					continue
				}
				seen[key] = true
			}
			result.Records = append(result.Records, rec)
		}
	}

	return result, nil
}

func normalizeRow(i int, row RawRow, opts Options) ([]models.Record, error) {
	reactants, err := moleculesOf(i, row, ColumnReactant, opts)
	if err != nil {
		return nil, err
	}
	products, err := moleculesOf(i, row, ColumnProduct, opts)
	if err != nil {
		return nil, err
	}

	steps, err := stepsOf(i, row)
	if err != nil {
		return nil, err
	}

	recs := make([]models.Record, 0, len(reactants)*len(products))
	for _, r := range reactants {
		for _, p := range products {
			rec := models.Record{Reactant: r, Product: p}
			if steps != nil {
				s := *steps
				rec.Steps = &s
			}
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

// moleculesOf extracts the molecule names of one required column
func moleculesOf(i int, row RawRow, column string, opts Options) ([]string, error) {
	raw, ok := row[column]
	if !ok {
		return nil, models.ValidationError{Field: column, Row: i, Message: "required column is missing"}
	}
	raw = strings.TrimSpace(raw)
	if isMissing(raw) {
		return nil, models.ValidationError{Field: column, Row: i, Message: "required field is empty"}
	}
	if opts.Lowercase {
		raw = strings.ToLower(raw)
	}

	parts := []string{raw}
	if opts.SplitFields {
		parts = strings.Split(raw, MoleculeSeparator)
	}

	names := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, models.ValidationError{Field: column, Row: i, Message: "no molecule names in field", Value: raw}
	}
	return names, nil
}

// stepsOf parses the optional step column. Exports written by spreadsheet tools
// sometimes render integers as "2.0", which is accepted.
func stepsOf(i int, row RawRow) (*int, error) {
	raw, ok := row[ColumnSteps]
	if !ok {
		return nil, nil
	}
	raw = strings.TrimSpace(raw)
	if isMissing(raw) {
		return nil, nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) {
		return nil, models.ValidationError{Field: ColumnSteps, Row: i, Message: "step count must be an integer", Value: raw}
	}
	if f <= 0 {
		return nil, models.ValidationError{Field: ColumnSteps, Row: i, Message: "step count must be positive", Value: raw}
	}
	if math.IsInf(f, 0) || f > math.MaxInt32 {
		return nil, models.ValidationError{Field: ColumnSteps, Row: i, Message: "step count out of range", Value: raw}
	}
	steps := int(f)
	return &steps, nil
}

func isMissing(s string) bool {
	switch s {
	case "", "NA", "NaN", "nan", "N/A", "null":
		return true
	}
	return false
}

type tripleKey struct {
	reactant string
	product  string
	steps    int
}

func keyOf(rec models.Record) tripleKey {
	return tripleKey{reactant: rec.Reactant, product: rec.Product, steps: rec.StepCount(0)}
}

// Summary returns a one-line description of a normalization result
func (r *Result) Summary() string {
	return fmt.Sprintf("%d records, %d skipped rows", len(r.Records), len(r.Skipped))
}
