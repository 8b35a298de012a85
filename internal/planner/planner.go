// Package planner proposes slot assignments without mutating any state.
//
// Planning is greedy and order-dependent by design: a batch is planned in
// input order against a working copy of the capacity snapshot, and an
// earlier player's slot is never revisited to improve a later player's.
package planner

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/roach88/lineup/internal/capacity"
	"github.com/roach88/lineup/internal/eligibility"
	"github.com/roach88/lineup/internal/ir"
	"github.com/roach88/lineup/internal/validator"
)

// ReasonNoSlot is the outcome when no slot of any kind is available.
// It is a legitimate result, not an error.
const ReasonNoSlot = "no slot available"

// ReasonOverrideRejected is the outcome when a manual target is illegal.
const ReasonOverrideRejected = "override rejected"

// Assignment is the planning outcome for one candidate.
// Proposal is nil when nothing could be placed; Reason then says why.
type Assignment struct {
	Candidate ir.Candidate      `json:"candidate"`
	Proposal  *ir.Proposal      `json:"proposal,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	Errors    []validator.Issue `json:"errors,omitempty"`
}

// BatchPlan is the result of planning several candidates together.
type BatchPlan struct {
	Assignments []Assignment    `json:"assignments"`
	Diagnostics []ir.Diagnostic `json:"diagnostics,omitempty"`
}

// Proposals returns the non-nil proposals in input order.
func (b BatchPlan) Proposals() []ir.Proposal {
	out := make([]ir.Proposal, 0, len(b.Assignments))
	for _, a := range b.Assignments {
		if a.Proposal != nil {
			out = append(out, *a.Proposal)
		}
	}
	return out
}

// Plan proposes a slot for one candidate against the snapshot.
//
// In order: the literal primary position (tier 1); another eligible active
// slot, ranked direct > MI/CI > UTIL > P and then by schema order (tier 2);
// the bench (tier 3); the minors (tier 4). The bool is false when none has
// capacity or the roster itself is full.
func Plan(c ir.Candidate, snap ir.CapacitySnapshot) (ir.Proposal, bool) {
	if snap.Roster.Available() <= 0 {
		return ir.Proposal{}, false
	}

	open := openActiveSlots(c.Player, snap)
	primary := ir.NormalizeCode(c.Player.Primary)

	for _, pos := range open {
		if pos.Code == primary {
			return activeProposal(c, pos, ir.TierDirect,
				fmt.Sprintf("primary position %s has an open slot", pos.Code)), true
		}
	}

	if len(open) > 0 {
		pos := open[0]
		return activeProposal(c, pos, ir.TierDerived,
			fmt.Sprintf("eligible for %s, which has an open slot", pos.Code)), true
	}

	if snap.Bench.Available() > 0 {
		return ir.Proposal{
			Player:        c.Player,
			Type:          ir.AssignBench,
			Tier:          ir.TierBench,
			Rationale:     "no eligible active slot is open; bench has room",
			Salary:        c.Price,
			ContractYears: c.ContractYears,
			StartContract: true,
		}, true
	}

	if snap.Minors.Max > 0 && snap.Minors.Available() > 0 {
		return minorsProposal(c, "active lineup and bench are full; minors has room"), true
	}

	return ir.Proposal{}, false
}

// Request is one candidate in a batch. A non-nil Target skips priority
// selection and is checked as a manual override instead.
type Request struct {
	Candidate ir.Candidate
	Target    *ir.Target
}

// PlanBatch plans candidates in input order. Each accepted proposal is
// claimed on a working copy immediately, so later candidates cannot take
// capacity still pending commit. The caller's snapshot is not modified.
func PlanBatch(candidates []ir.Candidate, snap ir.CapacitySnapshot) BatchPlan {
	reqs := make([]Request, len(candidates))
	for i, c := range candidates {
		reqs[i] = Request{Candidate: c}
	}
	return PlanRequests(reqs, snap)
}

// PlanRequests is PlanBatch with optional per-candidate overrides. A rejected
// override leaves its capacity unclaimed and reports the issues in Errors.
func PlanRequests(reqs []Request, snap ir.CapacitySnapshot) BatchPlan {
	work := snap.Clone()
	plan := BatchPlan{Assignments: make([]Assignment, 0, len(reqs))}

	for _, r := range reqs {
		c := r.Candidate
		if len(c.Player.Eligible) == 0 {
			plan.Diagnostics = append(plan.Diagnostics, ir.Diagnostic{
				Code:     capacity.DiagEmptyEligibility,
				PlayerID: c.Player.ID,
				Message:  fmt.Sprintf("no eligible positions listed; treating as %q only", c.Player.Primary),
			})
		}

		if r.Target != nil {
			p, res := Override(c, *r.Target, work)
			if !res.Valid {
				plan.Assignments = append(plan.Assignments, Assignment{
					Candidate: c,
					Reason:    ReasonOverrideRejected,
					Errors:    res.Errors,
				})
				continue
			}
			work.Claim(p)
			plan.Assignments = append(plan.Assignments, Assignment{Candidate: c, Proposal: &p})
			continue
		}

		p, ok := Plan(c, work)
		if !ok {
			plan.Assignments = append(plan.Assignments, Assignment{Candidate: c, Reason: ReasonNoSlot})
			continue
		}
		work.Claim(p)
		plan.Assignments = append(plan.Assignments, Assignment{Candidate: c, Proposal: &p})
	}
	return plan
}

// Override builds the proposal for a caller-chosen target and checks only
// its legality (eligibility and capacity); priority selection is skipped.
// The proposal is returned even when the result is invalid.
func Override(c ir.Candidate, target ir.Target, snap ir.CapacitySnapshot) (ir.Proposal, validator.Result) {
	var p ir.Proposal
	switch target.Type {
	case ir.AssignMinors:
		p = minorsProposal(c, "manual override to minors")
	case ir.AssignBench:
		p = ir.Proposal{
			Player:        c.Player,
			Type:          ir.AssignBench,
			Tier:          ir.TierBench,
			Rationale:     "manual override to bench",
			Salary:        c.Price,
			ContractYears: c.ContractYears,
			StartContract: true,
		}
	default:
		slot := target.Slot
		slot.Position = ir.NormalizeCode(slot.Position)
		tier := ir.TierDerived
		if slot.Position == ir.NormalizeCode(c.Player.Primary) {
			tier = ir.TierDirect
		}
		p = ir.Proposal{
			Player:        c.Player,
			Type:          ir.AssignActive,
			Slot:          &slot,
			Tier:          tier,
			Rationale:     fmt.Sprintf("manual override to %s", slot),
			Salary:        c.Price,
			ContractYears: c.ContractYears,
			StartContract: true,
		}
	}
	return p, validator.Validate([]ir.Proposal{p}, snap)
}

// openActiveSlots returns the positions the player is eligible for that have
// a free ordinal, in tie-break order.
func openActiveSlots(p ir.Player, snap ir.CapacitySnapshot) []ir.PositionCapacity {
	type ranked struct {
		pos   ir.PositionCapacity
		rank  eligibility.Rank
		order int
	}
	var open []ranked
	for i, pos := range snap.Positions {
		if pos.Available() <= 0 || pos.FreeIndex() < 0 {
			continue
		}
		if !eligibility.IsEligible(p, pos.Code) {
			continue
		}
		open = append(open, ranked{pos: pos, rank: eligibility.RankOf(pos.Code), order: i})
	}
	slices.SortFunc(open, func(a, b ranked) int {
		return cmp.Or(cmp.Compare(a.rank, b.rank), cmp.Compare(a.order, b.order))
	})

	out := make([]ir.PositionCapacity, len(open))
	for i, r := range open {
		out[i] = r.pos
	}
	return out
}

func activeProposal(c ir.Candidate, pos ir.PositionCapacity, tier int, rationale string) ir.Proposal {
	return ir.Proposal{
		Player:        c.Player,
		Type:          ir.AssignActive,
		Slot:          &ir.SlotID{Position: pos.Code, Index: pos.FreeIndex()},
		Tier:          tier,
		Rationale:     rationale,
		Salary:        c.Price,
		ContractYears: c.ContractYears,
		StartContract: true,
	}
}

// minorsProposal forces the minors contract terms.
func minorsProposal(c ir.Candidate, rationale string) ir.Proposal {
	return ir.Proposal{
		Player:    c.Player,
		Type:      ir.AssignMinors,
		Tier:      ir.TierMinors,
		Rationale: rationale,
	}
}
