package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// SlotID addresses one active-lineup slot: a position code and a zero-based
// ordinal distinguishing multiple slots of the same position.
//
// The persisted form is "{position}_{index}", e.g. "OF_1" for the second
// outfield slot. Only String and ParseSlotID deal with that form.
type SlotID struct {
	Position string
	Index    int
}

// String returns the persisted composite form.
func (s SlotID) String() string {
	return fmt.Sprintf("%s_%d", s.Position, s.Index)
}

// MarshalText implements encoding.TextMarshaler so slot ids serialize in
// their persisted form.
func (s SlotID) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SlotID) UnmarshalText(text []byte) error {
	parsed, err := ParseSlotID(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// SlotParseError reports a roster_position that does not decode.
type SlotParseError struct {
	Raw    string
	Reason string
}

func (e *SlotParseError) Error() string {
	return fmt.Sprintf("invalid slot identifier %q: %s", e.Raw, e.Reason)
}

// ParseSlotID decodes "{position}_{index}". The position is normalized.
// Position codes never contain '_', so the last separator splits the pair.
func ParseSlotID(raw string) (SlotID, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return SlotID{}, &SlotParseError{Raw: raw, Reason: "empty"}
	}
	i := strings.LastIndexByte(s, '_')
	if i < 0 {
		return SlotID{}, &SlotParseError{Raw: raw, Reason: "missing ordinal separator"}
	}
	code := NormalizeCode(s[:i])
	if code == "" {
		return SlotID{}, &SlotParseError{Raw: raw, Reason: "missing position code"}
	}
	digits := s[i+1:]
	if strings.HasPrefix(digits, "+") {
		return SlotID{}, &SlotParseError{Raw: raw, Reason: "ordinal must not carry a sign"}
	}
	idx, err := strconv.Atoi(digits)
	if err != nil {
		return SlotID{}, &SlotParseError{Raw: raw, Reason: "ordinal is not an integer"}
	}
	if idx < 0 {
		return SlotID{}, &SlotParseError{Raw: raw, Reason: "negative ordinal"}
	}
	return SlotID{Position: code, Index: idx}, nil
}

// Target is an assignment destination: a specific active slot, the bench,
// or the minors. Slot is only meaningful for AssignActive.
type Target struct {
	Type AssignmentType
	Slot SlotID
}

// Target keywords accepted by ParseTarget.
const (
	TargetBench  = "BN"
	TargetMinors = "MINORS"
)

// String names the target the way errors and CLI output refer to it.
func (t Target) String() string {
	switch t.Type {
	case AssignBench:
		return TargetBench
	case AssignMinors:
		return TargetMinors
	default:
		return t.Slot.String()
	}
}

// ParseTarget decodes a target name: "BN"/"BENCH", "MINORS"/"MIN"/"NA", or a
// slot identifier.
func ParseTarget(raw string) (Target, error) {
	switch NormalizeCode(raw) {
	case TargetBench, "BENCH":
		return Target{Type: AssignBench}, nil
	case TargetMinors, "MIN", "NA":
		return Target{Type: AssignMinors}, nil
	}
	slot, err := ParseSlotID(raw)
	if err != nil {
		return Target{}, err
	}
	return Target{Type: AssignActive, Slot: slot}, nil
}
