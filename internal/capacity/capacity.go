// Package capacity derives per-category slot usage from a league schema and
// a roster listing.
//
// Roster data is externally supplied and may be stale or malformed. Compute
// never fails: anomalies are reported on the snapshot's Diagnostics and the
// offending entry is excluded from whichever tally it cannot be trusted for.
package capacity

import (
	"errors"
	"fmt"

	"github.com/roach88/lineup/internal/ir"
)

// Diagnostic codes (D001-D099).
const (
	DiagUnparseableSlot  = "D001" // roster_position does not decode
	DiagMissingSlot      = "D002" // active entry without roster_position
	DiagUnknownPosition  = "D003" // slot code not configured in the schema
	DiagOrdinalRange     = "D004" // slot ordinal beyond the configured count
	DiagStraySlot        = "D005" // non-active entry carrying roster_position
	DiagUnknownStatus    = "D006" // roster_status outside the four categories
	DiagOverCapacity     = "D007" // category holds more entries than slots
	DiagEmptyEligibility = "D008" // player with no eligible positions
	DiagDuplicateSlot    = "D009" // two active entries decode to one slot
)

// Compute tallies the roster against the schema.
//
// Active entries count toward the position their slot decodes to. Bench, DL
// and minors are counted purely from roster_status. Over-capacity categories
// keep their negative availability and are also reported.
func Compute(schema ir.PositionSchema, entries []ir.RosterEntry) ir.CapacitySnapshot {
	snap := ir.CapacitySnapshot{
		Positions:    make([]ir.PositionCapacity, 0, len(schema.Positions)),
		Bench:        ir.Capacity{Max: schema.Bench},
		DisabledList: ir.Capacity{Max: schema.DisabledList},
		Minors:       ir.Capacity{Max: schema.Minors},
		Roster:       ir.Capacity{Max: schema.MaxRosterSize()},
	}
	for _, p := range schema.Positions {
		snap.Positions = append(snap.Positions, ir.PositionCapacity{
			Code:     ir.NormalizeCode(p.Code),
			Capacity: ir.Capacity{Max: p.Count},
		})
	}

	diag := func(code string, e ir.RosterEntry, format string, args ...any) {
		snap.Diagnostics = append(snap.Diagnostics, ir.Diagnostic{
			Code:     code,
			PlayerID: e.Player.ID,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	for _, e := range entries {
		if e.Status != ir.StatusActive && e.Position != "" && e.Status.Valid() {
			diag(DiagStraySlot, e, "%s entry carries roster_position %q; ignored", e.Status, e.Position)
		}

		switch e.Status {
		case ir.StatusBench:
			snap.Bench.Used++
		case ir.StatusDL:
			snap.DisabledList.Used++
		case ir.StatusMinors:
			snap.Minors.Used++
		case ir.StatusActive:
			tallyActive(&snap, e, diag)
		default:
			diag(DiagUnknownStatus, e, "unknown roster_status %q; excluded from tallies", e.Status)
			continue
		}
		snap.Roster.Used++
	}

	reportOverCapacity(&snap)
	return snap
}

type diagFunc func(code string, e ir.RosterEntry, format string, args ...any)

func tallyActive(snap *ir.CapacitySnapshot, e ir.RosterEntry, diag diagFunc) {
	if e.Position == "" {
		diag(DiagMissingSlot, e, "active entry has no roster_position; excluded from positional tallies")
		return
	}
	slot, err := ir.ParseSlotID(e.Position)
	if err != nil {
		var parseErr *ir.SlotParseError
		if errors.As(err, &parseErr) {
			diag(DiagUnparseableSlot, e, "%s; excluded from positional tallies", parseErr.Error())
		}
		return
	}
	pos, ok := snap.Position(slot.Position)
	if !ok {
		diag(DiagUnknownPosition, e, "slot %s names a position the league does not configure", slot)
		return
	}
	if slot.Index >= pos.Max {
		diag(DiagOrdinalRange, e, "slot %s is beyond the %d configured %s slot(s)", slot, pos.Max, pos.Code)
	}
	if pos.IsOccupied(slot.Index) {
		diag(DiagDuplicateSlot, e, "slot %s already held by another entry", slot)
	}
	pos.Used++
	pos.Occupy(slot.Index)
}

func reportOverCapacity(snap *ir.CapacitySnapshot) {
	over := func(name string, c ir.Capacity) {
		if c.Available() < 0 {
			snap.Diagnostics = append(snap.Diagnostics, ir.Diagnostic{
				Code:    DiagOverCapacity,
				Message: fmt.Sprintf("%s holds %d entries for %d slot(s)", name, c.Used, c.Max),
			})
		}
	}
	for _, p := range snap.Positions {
		over(p.Code, p.Capacity)
	}
	over(ir.TargetBench, snap.Bench)
	over("DL", snap.DisabledList)
	over(ir.TargetMinors, snap.Minors)
	over("roster", snap.Roster)
}

// Without returns the entries minus the one belonging to playerID. Moves are
// validated against a snapshot that no longer counts the moving player.
func Without(entries []ir.RosterEntry, playerID string) []ir.RosterEntry {
	out := make([]ir.RosterEntry, 0, len(entries))
	for _, e := range entries {
		if e.Player.ID != playerID {
			out = append(out, e)
		}
	}
	return out
}
