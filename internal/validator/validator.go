// Package validator checks a set of proposals against a capacity snapshot.
//
// Validation is a pure function of its inputs. Issues are sorted before they
// are returned, so the same proposals in any order against the same snapshot
// produce an identical Result.
package validator

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/roach88/lineup/internal/eligibility"
	"github.com/roach88/lineup/internal/ir"
)

// Issue codes. Errors block commit, warnings never do.
const (
	// Errors (E201-E299)
	ErrOverCapacity      = "E201" // more proposals target a category than it has open
	ErrSlotConflict      = "E202" // exact slot claimed twice or already occupied
	ErrIneligible        = "E203" // player cannot occupy the targeted slot
	ErrUnknownPosition   = "E204" // slot code not configured
	ErrOrdinalRange      = "E205" // slot ordinal beyond configured count
	ErrMinorsTerms       = "E206" // minors assignment carries salary or contract
	ErrRosterFull        = "E207" // proposals exceed remaining roster size
	ErrDuplicatePlayer   = "E208" // player proposed more than once
	ErrMissingActiveSlot = "E209" // active proposal without a target slot

	// Warnings (W201-W299)
	WarnSubOptimal = "W201" // legal placement below the best tier
)

// Issue is a single validation finding.
type Issue struct {
	Code     string `json:"code"`
	Slot     string `json:"slot,omitempty"`
	PlayerID string `json:"player_id,omitempty"`
	Message  string `json:"message"`
}

// Error implements the error interface.
func (i Issue) Error() string {
	if i.Slot != "" {
		return fmt.Sprintf("[%s] %s: %s", i.Code, i.Slot, i.Message)
	}
	return fmt.Sprintf("[%s] %s", i.Code, i.Message)
}

// Result is the outcome of validating a proposal set.
type Result struct {
	Valid    bool    `json:"is_valid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// ErrorsFor returns the errors that concern one player.
func (r Result) ErrorsFor(playerID string) []Issue {
	var out []Issue
	for _, e := range r.Errors {
		if e.PlayerID == playerID {
			out = append(out, e)
		}
	}
	return out
}

// Validate checks proposals against snapshot. It never mutates either.
func Validate(proposals []ir.Proposal, snapshot ir.CapacitySnapshot) Result {
	v := &validation{snap: snapshot}

	ordered := slices.Clone(proposals)
	slices.SortStableFunc(ordered, compareProposals)

	v.checkPlayers(ordered)
	v.checkCapacity(ordered)
	v.checkRosterSize(ordered)

	slices.SortFunc(v.errors, compareIssues)
	slices.SortFunc(v.warnings, compareIssues)

	return Result{
		Valid:    len(v.errors) == 0,
		Errors:   nonNil(v.errors),
		Warnings: nonNil(v.warnings),
	}
}

type validation struct {
	snap     ir.CapacitySnapshot
	errors   []Issue
	warnings []Issue
}

func (v *validation) fail(code string, p ir.Proposal, format string, args ...any) {
	v.errors = append(v.errors, Issue{
		Code:     code,
		Slot:     targetName(p),
		PlayerID: p.Player.ID,
		Message:  fmt.Sprintf(format, args...),
	})
}

// checkPlayers covers the per-proposal rules.
func (v *validation) checkPlayers(proposals []ir.Proposal) {
	seen := make(map[string]bool, len(proposals))
	for _, p := range proposals {
		if p.Player.ID != "" {
			if seen[p.Player.ID] {
				v.fail(ErrDuplicatePlayer, p, "player %s is proposed more than once", p.Player.ID)
			}
			seen[p.Player.ID] = true
		}

		if p.Tier > ir.TierDirect {
			v.warnings = append(v.warnings, Issue{
				Code:     WarnSubOptimal,
				Slot:     targetName(p),
				PlayerID: p.Player.ID,
				Message:  fmt.Sprintf("placement is priority tier %d, not a direct position match", p.Tier),
			})
		}

		switch p.Type {
		case ir.AssignActive:
			v.checkActive(p)
		case ir.AssignMinors:
			if p.Salary != 0 || p.ContractYears != 0 || p.StartContract {
				v.fail(ErrMinorsTerms, p, "minors assignments must carry salary 0, contract_years 0 and no contract start")
			}
		}
	}
}

func (v *validation) checkActive(p ir.Proposal) {
	if p.Slot == nil {
		v.fail(ErrMissingActiveSlot, p, "active assignment has no target slot")
		return
	}
	pos, ok := v.snap.Position(p.Slot.Position)
	if !ok {
		v.fail(ErrUnknownPosition, p, "position %s is not configured for this league", p.Slot.Position)
		return
	}
	if !eligibility.IsEligible(p.Player, pos.Code) {
		v.fail(ErrIneligible, p, "player %s is not eligible for %s", p.Player.ID, pos.Code)
	}
	if p.Slot.Index >= pos.Max {
		v.fail(ErrOrdinalRange, p, "position %s has %d slot(s); ordinal %d does not exist", pos.Code, pos.Max, p.Slot.Index)
	}
	if pos.IsOccupied(p.Slot.Index) {
		v.fail(ErrSlotConflict, p, "slot is already occupied on the roster")
	}
}

// checkCapacity groups proposals by the category they draw from. Within an
// over-subscribed group, proposals beyond the open count (in sorted order)
// each get an error naming their exact slot.
func (v *validation) checkCapacity(proposals []ir.Proposal) {
	groups := make(map[string][]ir.Proposal)
	var keys []string
	claimed := make(map[ir.SlotID]string)

	for _, p := range proposals {
		var key string
		switch p.Type {
		case ir.AssignActive:
			if p.Slot == nil {
				continue
			}
			if _, ok := v.snap.Position(p.Slot.Position); !ok {
				continue
			}
			if other, dup := claimed[*p.Slot]; dup {
				v.fail(ErrSlotConflict, p, "slot is also proposed for player %s", other)
			} else {
				claimed[*p.Slot] = p.Player.ID
			}
			key = ir.NormalizeCode(p.Slot.Position)
		case ir.AssignBench:
			key = ir.TargetBench
		case ir.AssignMinors:
			key = ir.TargetMinors
		default:
			continue
		}
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], p)
	}

	for _, key := range keys {
		group := groups[key]
		open := v.available(key, group[0])
		if len(group) <= open {
			continue
		}
		for i, p := range group {
			if i < max(open, 0) {
				continue
			}
			v.fail(ErrOverCapacity, p, "%s has %d open slot(s) but %d proposal(s) target it", key, open, len(group))
		}
	}
}

func (v *validation) available(key string, sample ir.Proposal) int {
	if sample.Type == ir.AssignActive {
		pos, _ := v.snap.Position(key)
		return pos.Available()
	}
	return v.snap.Category(sample.Type).Available()
}

func (v *validation) checkRosterSize(proposals []ir.Proposal) {
	open := v.snap.Roster.Available()
	if len(proposals) <= open {
		return
	}
	v.errors = append(v.errors, Issue{
		Code:    ErrRosterFull,
		Slot:    "roster",
		Message: fmt.Sprintf("roster has %d open spot(s) but %d proposal(s) were made", open, len(proposals)),
	})
}

// targetName is how issues name the slot a proposal targets.
func targetName(p ir.Proposal) string {
	if p.Type == ir.AssignActive && p.Slot == nil {
		return ""
	}
	return p.Target().String()
}

func compareProposals(a, b ir.Proposal) int {
	return cmp.Or(
		cmp.Compare(targetName(a), targetName(b)),
		cmp.Compare(a.Player.ID, b.Player.ID),
		cmp.Compare(a.Tier, b.Tier),
	)
}

func compareIssues(a, b Issue) int {
	return cmp.Or(
		cmp.Compare(a.Code, b.Code),
		cmp.Compare(a.Slot, b.Slot),
		cmp.Compare(a.PlayerID, b.PlayerID),
		cmp.Compare(a.Message, b.Message),
	)
}

func nonNil(issues []Issue) []Issue {
	if issues == nil {
		return []Issue{}
	}
	return issues
}
