package ir

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// RosterStatus is the roster category a committed entry lives in.
type RosterStatus string

const (
	StatusActive RosterStatus = "active"
	StatusBench  RosterStatus = "bench"
	StatusDL     RosterStatus = "dl"
	StatusMinors RosterStatus = "minors"

	// StatusRemoved only appears on commit records for drops.
	StatusRemoved RosterStatus = "removed"
)

// Valid reports whether s is one of the four roster categories.
func (s RosterStatus) Valid() bool {
	switch s {
	case StatusActive, StatusBench, StatusDL, StatusMinors:
		return true
	}
	return false
}

// AssignmentType is the kind of slot a proposal places a player into.
type AssignmentType string

const (
	AssignActive AssignmentType = "active"
	AssignBench  AssignmentType = "bench"
	AssignMinors AssignmentType = "minors"
)

// Status maps an assignment type onto the roster status it produces.
func (t AssignmentType) Status() RosterStatus {
	return RosterStatus(t)
}

// Priority tiers, lower is better.
const (
	TierDirect  = 1 // literal primary position
	TierDerived = 2 // another eligible active slot (super-position or secondary)
	TierBench   = 3
	TierMinors  = 4
)

// PositionSlot is one configured active-lineup position and its slot count.
type PositionSlot struct {
	Code  string `json:"code" yaml:"code"`
	Count int    `json:"count" yaml:"count"`
}

// PositionSchema describes a league's slot structure.
//
// Positions is ordered; declaration order is the planner's tie-break order.
type PositionSchema struct {
	Name         string         `json:"name,omitempty" yaml:"name,omitempty"`
	Positions    []PositionSlot `json:"positions" yaml:"positions"`
	Bench        int            `json:"bench" yaml:"bench"`
	DisabledList int            `json:"dl" yaml:"dl"`
	Minors       int            `json:"minors" yaml:"minors"`
	RosterSize   int            `json:"roster_size,omitempty" yaml:"roster_size,omitempty"`
}

// Count returns the configured slot count for a position code.
func (s PositionSchema) Count(code string) (int, bool) {
	code = NormalizeCode(code)
	for _, p := range s.Positions {
		if NormalizeCode(p.Code) == code {
			return p.Count, true
		}
	}
	return 0, false
}

// MaxRosterSize returns RosterSize, or the sum of all slots when unset.
func (s PositionSchema) MaxRosterSize() int {
	if s.RosterSize > 0 {
		return s.RosterSize
	}
	total := s.Bench + s.DisabledList + s.Minors
	for _, p := range s.Positions {
		total += p.Count
	}
	return total
}

// Player is a rosterable player and the positions they qualify at.
type Player struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	Primary  string   `json:"primary" yaml:"primary"`
	Eligible []string `json:"eligible,omitempty" yaml:"eligible,omitempty"`
}

// EligibleSet returns the normalized eligible positions.
// An empty list defaults to the primary position alone.
func (p Player) EligibleSet() []string {
	if len(p.Eligible) == 0 {
		if p.Primary == "" {
			return nil
		}
		return []string{NormalizeCode(p.Primary)}
	}
	out := make([]string, 0, len(p.Eligible))
	seen := make(map[string]bool, len(p.Eligible))
	for _, e := range p.Eligible {
		code := NormalizeCode(e)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}

// RosterEntry is a committed roster row as supplied by the roster-read API.
//
// Position carries the persisted slot string and is meaningful only when
// Status is active. It is decoded with ParseSlotID and may be malformed.
type RosterEntry struct {
	Player        Player       `json:"player" yaml:"player"`
	Status        RosterStatus `json:"roster_status" yaml:"status"`
	Position      string       `json:"roster_position,omitempty" yaml:"position,omitempty"`
	Salary        int64        `json:"salary" yaml:"salary"`
	ContractYears int          `json:"contract_years" yaml:"contract_years"`
	StartContract bool         `json:"start_contract,omitempty" yaml:"start_contract,omitempty"`
}

// Candidate is a player being considered for acquisition.
// Price is supplied by the external pricing engine and treated as opaque.
type Candidate struct {
	Player        Player `json:"player" yaml:"player"`
	Price         int64  `json:"price" yaml:"price"`
	ContractYears int    `json:"contract_years" yaml:"contract_years"`
}

// Proposal is a non-committed recommended assignment.
type Proposal struct {
	Player        Player         `json:"player"`
	Type          AssignmentType `json:"assignment_type"`
	Slot          *SlotID        `json:"target_slot,omitempty"`
	Tier          int            `json:"priority_tier"`
	Rationale     string         `json:"rationale"`
	Salary        int64          `json:"salary"`
	ContractYears int            `json:"contract_years"`
	StartContract bool           `json:"start_contract"`
}

// Target returns the destination this proposal claims.
func (p Proposal) Target() Target {
	t := Target{Type: p.Type}
	if p.Slot != nil {
		t.Slot = *p.Slot
	}
	return t
}

// CommitRecord is the record handed to the roster-mutation API.
type CommitRecord struct {
	PlayerID       string       `json:"player_id"`
	RosterStatus   RosterStatus `json:"roster_status"`
	RosterPosition *string      `json:"roster_position"`
	Salary         int64        `json:"salary"`
	ContractYears  int          `json:"contract_years"`
	StartContract  bool         `json:"start_contract"`
	Seq            int64        `json:"seq,omitempty"`
	ProposalID     string       `json:"proposal_id,omitempty"`
}

// NormalizeCode canonicalizes a position code: NFKC, trimmed, upper case.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(norm.NFKC.String(code)))
}
