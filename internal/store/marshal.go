package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/lineup/internal/ir"
)

// marshalEligible stores eligibility as a canonical JSON array.
func marshalEligible(codes []string) (string, error) {
	if codes == nil {
		codes = []string{}
	}
	data, err := ir.MarshalCanonical(codes)
	if err != nil {
		return "", fmt.Errorf("marshal eligible: %w", err)
	}
	return string(data), nil
}

func unmarshalEligible(raw string) ([]string, error) {
	var codes []string
	if err := json.Unmarshal([]byte(raw), &codes); err != nil {
		return nil, fmt.Errorf("unmarshal eligible: %w", err)
	}
	if len(codes) == 0 {
		return nil, nil
	}
	return codes, nil
}

// marshalRecord stores a commit record as canonical JSON so two logs of the
// same history compare byte for byte.
func marshalRecord(rec ir.CommitRecord) (string, error) {
	data, err := ir.MarshalCanonical(rec)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	return string(data), nil
}

func unmarshalRecord(raw string) (ir.CommitRecord, error) {
	var rec ir.CommitRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return ir.CommitRecord{}, fmt.Errorf("unmarshal record: %w", err)
	}
	return rec, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
