package compiler

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/lineup/internal/ir"
)

// leagueSchema is the CUE definition every league file is unified with.
// It closes the struct, supplies defaults and rejects negative counts.
//
//go:embed league.cue
var leagueSchema string

// CompileLeague turns a CUE league value into a PositionSchema.
//
// The value is the league struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`league: { positions: { C: 1, SS: 1 }, bench: 2 }`)
//	schema, err := CompileLeague(v.LookupPath(cue.ParsePath("league")))
//
// Position order is the declaration order of the positions struct; it is the
// planner's tie-break order, so it is preserved exactly.
func CompileLeague(v cue.Value) (*ir.PositionSchema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if !v.Exists() {
		return nil, &CompileError{Field: "league", Message: "league is required"}
	}

	def := v.Context().CompileString(leagueSchema, cue.Filename("league.cue"))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("compile league definition: %w", err)
	}
	unified := def.LookupPath(cue.ParsePath("#League")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	schema := &ir.PositionSchema{}
	if nameVal := v.LookupPath(cue.ParsePath("name")); nameVal.Exists() {
		name, err := nameVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		schema.Name = name
	}

	positions, err := parsePositions(v)
	if err != nil {
		return nil, err
	}
	schema.Positions = positions

	counts := []struct {
		field  string
		target *int
	}{
		{"bench", &schema.Bench},
		{"dl", &schema.DisabledList},
		{"minors", &schema.Minors},
		{"roster_size", &schema.RosterSize},
	}
	for _, c := range counts {
		n, err := intField(unified, c.field)
		if err != nil {
			return nil, err
		}
		*c.target = n
	}

	return schema, nil
}

// CompileLeagueFile reads a single .cue file. The league may sit under a
// top-level "league" field or be the whole file.
func CompileLeagueFile(path string) (*ir.PositionSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read league: %w", err)
	}
	v := cuecontext.New().CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if league := v.LookupPath(cue.ParsePath("league")); league.Exists() {
		return CompileLeague(league)
	}
	return CompileLeague(v)
}

// parsePositions reads the positions struct in declaration order.
func parsePositions(v cue.Value) ([]ir.PositionSlot, error) {
	posVal := v.LookupPath(cue.ParsePath("positions"))
	if !posVal.Exists() {
		return nil, &CompileError{
			Field:   "positions",
			Message: "positions is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := posVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var slots []ir.PositionSlot
	for iter.Next() {
		n, err := iter.Value().Int64()
		if err != nil {
			return nil, &CompileError{
				Field:   "positions." + iter.Label(),
				Message: "count must be an integer",
				Pos:     iter.Value().Pos(),
			}
		}
		slots = append(slots, ir.PositionSlot{Code: ir.NormalizeCode(iter.Label()), Count: int(n)})
	}
	return slots, nil
}

func intField(v cue.Value, field string) (int, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return 0, nil
	}
	n, err := fv.Int64()
	if err != nil {
		return 0, &CompileError{Field: field, Message: "must be an integer", Pos: fv.Pos()}
	}
	return int(n), nil
}

// CompileError reports a league file problem with its CUE position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
