package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainProposal = "lineup/proposal/v1"
	DomainSnapshot = "lineup/snapshot/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ProposalID computes a content-addressed id for a proposal within a team's
// batch. Committing the same proposal twice yields the same id, which the
// store uses as an idempotency key.
func ProposalID(teamID, batchID string, p Proposal) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"team_id":  teamID,
		"batch_id": batchID,
		"proposal": p,
	})
	if err != nil {
		return "", fmt.Errorf("ProposalID: %w", err)
	}
	return hashWithDomain(DomainProposal, canonical), nil
}

// SnapshotHash fingerprints a capacity snapshot. Two snapshots with the same
// hash tally identically.
func SnapshotHash(s CapacitySnapshot) (string, error) {
	canonical, err := MarshalCanonical(s)
	if err != nil {
		return "", fmt.Errorf("SnapshotHash: %w", err)
	}
	return hashWithDomain(DomainSnapshot, canonical), nil
}
