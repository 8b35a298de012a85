// Package roster holds the per-entry state machine and turns decisions into
// the commit records the roster-mutation API accepts.
//
// Legal transitions:
//
//	acquisition -> active | bench | minors
//	active      -> bench
//	bench       -> active | dl
//	dl          -> bench
//	minors      -> bench          (call-up; starts the contract)
//	any         -> removed        (drop)
//
// minors -> active is only legal when Policy.AllowDirectCallUp is set, and
// dl -> active is never legal.
package roster

import (
	"errors"
	"fmt"

	"github.com/roach88/lineup/internal/ir"
)

// Policy carries league-level switches for the state machine.
type Policy struct {
	// AllowDirectCallUp permits minors -> active without a bench stop.
	AllowDirectCallUp bool
}

var transitions = map[ir.RosterStatus][]ir.RosterStatus{
	ir.StatusActive: {ir.StatusBench},
	ir.StatusBench:  {ir.StatusActive, ir.StatusDL},
	ir.StatusDL:     {ir.StatusBench},
	ir.StatusMinors: {ir.StatusBench},
}

// CanTransition reports whether from -> to is a legal move under policy.
func CanTransition(from, to ir.RosterStatus, policy Policy) bool {
	if to == ir.StatusRemoved {
		return from.Valid()
	}
	if from == ir.StatusMinors && to == ir.StatusActive {
		return policy.AllowDirectCallUp
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionError reports an illegal state change.
type TransitionError struct {
	PlayerID string
	From     ir.RosterStatus
	To       ir.RosterStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("player %s: %s -> %s is not a legal roster transition", e.PlayerID, e.From, e.To)
}

// IsTransitionError returns true if err is or wraps a TransitionError.
func IsTransitionError(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}

// Acquire converts an acquisition proposal into its commit record.
// Minors acquisitions always carry zero salary and contract.
func Acquire(p ir.Proposal) ir.CommitRecord {
	rec := ir.CommitRecord{
		PlayerID:      p.Player.ID,
		RosterStatus:  p.Type.Status(),
		Salary:        p.Salary,
		ContractYears: p.ContractYears,
		StartContract: p.StartContract,
	}
	if p.Type == ir.AssignActive && p.Slot != nil {
		rec.RosterPosition = slotString(*p.Slot)
	}
	if p.Type == ir.AssignMinors {
		rec.Salary, rec.ContractYears, rec.StartContract = 0, 0, false
	}
	return rec
}

// Destination is where an existing entry moves to. Slot is meaningful only
// when Status is active.
type Destination struct {
	Status ir.RosterStatus
	Slot   ir.SlotID
}

// String names the destination the way the CLI accepts it.
func (d Destination) String() string {
	switch d.Status {
	case ir.StatusActive:
		return d.Slot.String()
	case ir.StatusDL:
		return "DL"
	case ir.StatusBench:
		return ir.TargetBench
	case ir.StatusMinors:
		return ir.TargetMinors
	}
	return string(d.Status)
}

// ParseDestination accepts "DL" in addition to everything ir.ParseTarget does.
func ParseDestination(raw string) (Destination, error) {
	if ir.NormalizeCode(raw) == "DL" {
		return Destination{Status: ir.StatusDL}, nil
	}
	t, err := ir.ParseTarget(raw)
	if err != nil {
		return Destination{}, err
	}
	return Destination{Status: t.Type.Status(), Slot: t.Slot}, nil
}

// Move produces the commit record for moving an existing entry.
// It checks only the state machine; slot capacity is the validator's job.
// Re-slotting an active player to another active slot is a lateral move and
// always allowed here.
func Move(entry ir.RosterEntry, to Destination, policy Policy) (ir.CommitRecord, error) {
	lateral := entry.Status == ir.StatusActive && to.Status == ir.StatusActive
	if !lateral && !CanTransition(entry.Status, to.Status, policy) {
		return ir.CommitRecord{}, &TransitionError{PlayerID: entry.Player.ID, From: entry.Status, To: to.Status}
	}

	rec := ir.CommitRecord{
		PlayerID:      entry.Player.ID,
		RosterStatus:  to.Status,
		Salary:        entry.Salary,
		ContractYears: entry.ContractYears,
		StartContract: entry.StartContract,
	}
	if to.Status == ir.StatusActive {
		rec.RosterPosition = slotString(to.Slot)
	}
	if entry.Status == ir.StatusMinors {
		rec.StartContract = true
	}
	return rec, nil
}

// Drop produces the removal record for an entry.
func Drop(entry ir.RosterEntry) (ir.CommitRecord, error) {
	if !CanTransition(entry.Status, ir.StatusRemoved, Policy{}) {
		return ir.CommitRecord{}, &TransitionError{PlayerID: entry.Player.ID, From: entry.Status, To: ir.StatusRemoved}
	}
	return ir.CommitRecord{PlayerID: entry.Player.ID, RosterStatus: ir.StatusRemoved}, nil
}

// Find returns the entry for playerID.
func Find(entries []ir.RosterEntry, playerID string) (ir.RosterEntry, bool) {
	for _, e := range entries {
		if e.Player.ID == playerID {
			return e, true
		}
	}
	return ir.RosterEntry{}, false
}

func slotString(s ir.SlotID) *string {
	str := s.String()
	return &str
}
