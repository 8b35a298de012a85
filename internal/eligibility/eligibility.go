// Package eligibility decides which slot codes a player may occupy.
//
// Every derived super-position rule lives in the superPositions table below;
// callers never re-derive MI/CI/UTIL/P/OF membership themselves.
package eligibility

import (
	"slices"

	"github.com/roach88/lineup/internal/ir"
)

// Rank orders slot kinds for the planner's tie-break: direct position-type
// slots first, then MI/CI, then UTIL, then the generic pitcher slot.
type Rank int

const (
	RankDirect Rank = iota
	RankMiddleCorner
	RankUtility
	RankPitcher
)

// pitcherCodes are positions that make a player "purely a pitcher" when they
// are the only positions held.
var pitcherCodes = map[string]bool{"P": true, "SP": true, "RP": true}

type superPosition struct {
	rank   Rank
	admits func(code string) bool
}

func anyOf(codes ...string) func(string) bool {
	return func(code string) bool { return slices.Contains(codes, code) }
}

// superPositions is the single derivation table.
var superPositions = map[string]superPosition{
	"MI":   {rank: RankMiddleCorner, admits: anyOf("2B", "SS")},
	"CI":   {rank: RankMiddleCorner, admits: anyOf("1B", "3B")},
	"UTIL": {rank: RankUtility, admits: func(code string) bool { return !pitcherCodes[code] }},
	"P":    {rank: RankPitcher, admits: anyOf("SP", "RP")},
	"OF":   {rank: RankDirect, admits: anyOf("LF", "CF", "RF", "OF")},
}

// IsEligible reports whether the player may occupy a slot of the given code.
// Pure and total: unknown codes are simply ineligible unless held directly.
func IsEligible(p ir.Player, slotCode string) bool {
	slotCode = ir.NormalizeCode(slotCode)
	if slotCode == "" {
		return false
	}
	held := p.EligibleSet()
	if slices.Contains(held, slotCode) {
		return true
	}
	sp, ok := superPositions[slotCode]
	if !ok {
		return false
	}
	return slices.ContainsFunc(held, sp.admits)
}

// IsSuperPosition reports whether the code is an aggregate slot category.
func IsSuperPosition(code string) bool {
	_, ok := superPositions[ir.NormalizeCode(code)]
	return ok
}

// RankOf returns the tie-break rank of a slot code.
func RankOf(code string) Rank {
	if sp, ok := superPositions[ir.NormalizeCode(code)]; ok {
		return sp.rank
	}
	return RankDirect
}

// EligibleCodes lists the schema's configured codes the player may occupy,
// in schema declaration order.
func EligibleCodes(p ir.Player, schema ir.PositionSchema) []string {
	var codes []string
	for _, pos := range schema.Positions {
		if IsEligible(p, pos.Code) {
			codes = append(codes, ir.NormalizeCode(pos.Code))
		}
	}
	return codes
}
