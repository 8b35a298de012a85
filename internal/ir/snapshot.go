package ir

import "slices"

// Capacity is the max/used tally of one roster category.
type Capacity struct {
	Max  int `json:"max"`
	Used int `json:"used"`
}

// Available is Max-Used. A negative value is an over-capacity anomaly in the
// supplied roster and is deliberately not clamped.
func (c Capacity) Available() int {
	return c.Max - c.Used
}

// PositionCapacity is the tally for one configured position code.
type PositionCapacity struct {
	Code string `json:"code"`
	Capacity
	// Occupied lists the ordinals held by decoded active entries, sorted.
	Occupied []int `json:"occupied,omitempty"`
}

// IsOccupied reports whether the ordinal is held by an entry.
func (p PositionCapacity) IsOccupied(index int) bool {
	_, found := slices.BinarySearch(p.Occupied, index)
	return found
}

// FreeIndex returns the lowest unoccupied ordinal within the configured
// count, or -1 when none is free.
func (p PositionCapacity) FreeIndex() int {
	for i := 0; i < p.Max; i++ {
		if !p.IsOccupied(i) {
			return i
		}
	}
	return -1
}

// Occupy marks an ordinal as held without touching Used.
func (p *PositionCapacity) Occupy(index int) {
	i, found := slices.BinarySearch(p.Occupied, index)
	if !found {
		p.Occupied = slices.Insert(p.Occupied, i, index)
	}
}

// Diagnostic is a non-fatal data-inconsistency report.
type Diagnostic struct {
	Code     string `json:"code"`
	PlayerID string `json:"player_id,omitempty"`
	Message  string `json:"message"`
}

// CapacitySnapshot is a point-in-time tally derived from a schema and a
// roster listing. It is recomputed on every read and never persisted.
type CapacitySnapshot struct {
	Positions    []PositionCapacity `json:"positions"`
	Bench        Capacity           `json:"bench"`
	DisabledList Capacity           `json:"dl"`
	Minors       Capacity           `json:"minors"`
	Roster       Capacity           `json:"roster"`
	Diagnostics  []Diagnostic       `json:"diagnostics,omitempty"`
}

// Position returns the tally for a code, in schema order lookup.
func (s *CapacitySnapshot) Position(code string) (*PositionCapacity, bool) {
	code = NormalizeCode(code)
	for i := range s.Positions {
		if s.Positions[i].Code == code {
			return &s.Positions[i], true
		}
	}
	return nil, false
}

// Category returns the capacity a non-active assignment type draws from.
func (s *CapacitySnapshot) Category(t AssignmentType) *Capacity {
	switch t {
	case AssignBench:
		return &s.Bench
	case AssignMinors:
		return &s.Minors
	}
	return nil
}

// Clone returns a deep copy, used as a batch-local working copy.
func (s CapacitySnapshot) Clone() CapacitySnapshot {
	out := s
	out.Positions = make([]PositionCapacity, len(s.Positions))
	for i, p := range s.Positions {
		p.Occupied = slices.Clone(p.Occupied)
		out.Positions[i] = p
	}
	out.Diagnostics = slices.Clone(s.Diagnostics)
	return out
}

// Claim records a proposal against the snapshot so later planning in the
// same batch cannot claim the same capacity.
func (s *CapacitySnapshot) Claim(p Proposal) {
	switch p.Type {
	case AssignActive:
		if p.Slot == nil {
			return
		}
		pos, ok := s.Position(p.Slot.Position)
		if !ok {
			return
		}
		pos.Used++
		pos.Occupy(p.Slot.Index)
	case AssignBench, AssignMinors:
		s.Category(p.Type).Used++
	default:
		return
	}
	s.Roster.Used++
}
