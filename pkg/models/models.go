package models

import (
	"errors"
	"fmt"
)

// Record is one normalized reaction: a single reactant turning into a single product
type Record struct {
	Reactant string `json:"reactant"`
	Product  string `json:"product"`
	Steps    *int   `json:"steps,omitempty"` // nil when the source row carried no step count
}

// NewRecord builds a record with a defined step count
func NewRecord(reactant, product string, steps int) Record {
	return Record{Reactant: reactant, Product: product, Steps: &steps}
}

// StepCount returns the step count, or fallback when undefined
func (r Record) StepCount(fallback int) int {
	if r.Steps == nil {
		return fallback
	}
	return *r.Steps
}

// Validate checks the required fields of a record
func (r Record) Validate() error {
	if r.Reactant == "" {
		return ValidationError{Field: "Reactant", Row: -1, Message: "reactant cannot be empty"}
	}
	if r.Product == "" {
		return ValidationError{Field: "Product", Row: -1, Message: "product cannot be empty"}
	}
	if r.Steps != nil && *r.Steps <= 0 {
		return ValidationError{
			Field:   "Number of Reaction Steps",
			Row:     -1,
			Message: "step count must be positive",
			Value:   fmt.Sprintf("%d", *r.Steps),
		}
	}
	return nil
}

// ValidationError represents malformed or missing required input
type ValidationError struct {
	Field   string `json:"field"`
	Row     int    `json:"row"` // -1 when not tied to an input row
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (ve ValidationError) Error() string {
	where := ""
	if ve.Row >= 0 {
		where = fmt.Sprintf(" (row %d)", ve.Row)
	}
	if ve.Value != "" {
		return fmt.Sprintf("validation error in field '%s'%s: %s (value: %s)", ve.Field, where, ve.Message, ve.Value)
	}
	return fmt.Sprintf("validation error in field '%s'%s: %s", ve.Field, where, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}
	return fmt.Sprintf("%d validation errors: %s (and %d more)", len(ve), ve[0].Error(), len(ve)-1)
}

// InsufficientDataError is returned when a statistic has too little input to be meaningful
type InsufficientDataError struct {
	Statistic string `json:"statistic"`
	Need      string `json:"need"`
	Have      int    `json:"have"`
}

func (e InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: need %s, have %d", e.Statistic, e.Need, e.Have)
}

// ErrIterationCap marks a result that was cut short by an iteration or time budget.
// It is never returned as a failure; results carry it in their CapReached flag.
var ErrIterationCap = errors.New("iteration cap reached")

// IsValidation reports whether err carries a ValidationError or ValidationErrors
func IsValidation(err error) bool {
	var ve ValidationError
	var ves ValidationErrors
	return errors.As(err, &ve) || errors.As(err, &ves)
}

// IsInsufficientData reports whether err carries an InsufficientDataError
func IsInsufficientData(err error) bool {
	var ie InsufficientDataError
	return errors.As(err, &ie)
}
