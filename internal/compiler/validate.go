package compiler

import (
	"fmt"
	"regexp"

	"github.com/roach88/lineup/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// Position errors (E101-E109)
	ErrNoPositions       = "E101" // at least one position is required
	ErrNonPositiveCount  = "E102" // position count must be positive
	ErrDuplicatePosition = "E103" // position declared twice (after normalization)
	ErrInvalidCode       = "E104" // code is not alphanumeric or is reserved

	// Category errors (E110-E119)
	ErrNegativeCategory = "E110" // bench, dl or minors is negative
	ErrRosterTooSmall   = "E111" // roster_size cannot hold the active lineup
)

// reservedCodes are destination keywords; a position with one of these
// names could not be addressed unambiguously.
var reservedCodes = map[string]bool{
	"BN": true, "BENCH": true, "DL": true, "MINORS": true, "MIN": true, "NA": true,
}

var codePattern = regexp.MustCompile(`^[A-Z0-9]+$`)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidateSchema checks a compiled league for structural problems.
// Returns all errors found (does not fail-fast).
func ValidateSchema(s ir.PositionSchema) []ValidationError {
	var errs []ValidationError

	// E101
	if len(s.Positions) == 0 {
		errs = append(errs, ValidationError{
			Field:   "positions",
			Message: "at least one position is required",
			Code:    ErrNoPositions,
		})
	}

	seen := make(map[string]bool, len(s.Positions))
	active := 0
	for i, pos := range s.Positions {
		field := fmt.Sprintf("positions[%d]", i)
		code := ir.NormalizeCode(pos.Code)

		// E104
		switch {
		case !codePattern.MatchString(code):
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("position code %q must be letters and digits only", pos.Code),
				Code:    ErrInvalidCode,
			})
		case reservedCodes[code]:
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("position code %q is reserved", pos.Code),
				Code:    ErrInvalidCode,
			})
		}

		// E103
		if seen[code] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate position: %q", code),
				Code:    ErrDuplicatePosition,
			})
		}
		seen[code] = true

		// E102
		if pos.Count <= 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".count",
				Message: fmt.Sprintf("position %q must have a positive count, got %d", code, pos.Count),
				Code:    ErrNonPositiveCount,
			})
			continue
		}
		active += pos.Count
	}

	// E110
	for _, c := range []struct {
		field string
		n     int
	}{{"bench", s.Bench}, {"dl", s.DisabledList}, {"minors", s.Minors}, {"roster_size", s.RosterSize}} {
		if c.n < 0 {
			errs = append(errs, ValidationError{
				Field:   c.field,
				Message: fmt.Sprintf("must not be negative, got %d", c.n),
				Code:    ErrNegativeCategory,
			})
		}
	}

	// E111
	if s.RosterSize > 0 && s.RosterSize < active {
		errs = append(errs, ValidationError{
			Field:   "roster_size",
			Message: fmt.Sprintf("roster size %d is smaller than the %d active slots", s.RosterSize, active),
			Code:    ErrRosterTooSmall,
		})
	}

	return errs
}
