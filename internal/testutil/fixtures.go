// Package testutil holds deterministic helpers and fixture builders shared by
// package tests and the scenario harness.
package testutil

import "github.com/roach88/lineup/internal/ir"

// Player builds a player; with no eligible codes the primary stands alone.
func Player(id, primary string, eligible ...string) ir.Player {
	return ir.Player{ID: id, Name: id, Primary: primary, Eligible: eligible}
}

// Candidate builds a candidate with a nominal price and a one-year contract.
func Candidate(id, primary string, eligible ...string) ir.Candidate {
	return ir.Candidate{Player: Player(id, primary, eligible...), Price: 1, ContractYears: 1}
}

// Active builds an active entry in slot (e.g. "C_0").
func Active(id, primary, slot string) ir.RosterEntry {
	return ir.RosterEntry{Player: Player(id, primary, primary), Status: ir.StatusActive, Position: slot}
}

// Reserve builds a non-active entry (bench, dl or minors).
func Reserve(id, primary string, status ir.RosterStatus) ir.RosterEntry {
	return ir.RosterEntry{Player: Player(id, primary, primary), Status: status}
}

// Schema builds a schema from alternating code/count pairs, in order:
//
//	Schema("C", 1, "SS", 1).WithBench(2)
func Schema(pairs ...any) SchemaBuilder {
	var s ir.PositionSchema
	for i := 0; i+1 < len(pairs); i += 2 {
		s.Positions = append(s.Positions, ir.PositionSlot{
			Code:  pairs[i].(string),
			Count: pairs[i+1].(int),
		})
	}
	return SchemaBuilder{schema: s}
}

// SchemaBuilder adds the reserve categories to a schema.
type SchemaBuilder struct {
	schema ir.PositionSchema
}

func (b SchemaBuilder) WithBench(n int) SchemaBuilder {
	b.schema.Bench = n
	return b
}

func (b SchemaBuilder) WithDL(n int) SchemaBuilder {
	b.schema.DisabledList = n
	return b
}

func (b SchemaBuilder) WithMinors(n int) SchemaBuilder {
	b.schema.Minors = n
	return b
}

func (b SchemaBuilder) WithRosterSize(n int) SchemaBuilder {
	b.schema.RosterSize = n
	return b
}

// Build returns the schema.
func (b SchemaBuilder) Build() ir.PositionSchema {
	return b.schema
}
