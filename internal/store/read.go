package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/lineup/internal/ir"
)

// LoadRoster returns a team's current entries, removed players excluded.
// Returns an empty slice (not nil) for an unknown team.
func (s *Store) LoadRoster(ctx context.Context, teamID string) ([]ir.RosterEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.player_id, p.name, p.primary_position, p.eligible,
		       r.status, r.position, r.salary, r.contract_years, r.start_contract
		FROM roster_entries r
		JOIN players p ON p.id = r.player_id
		WHERE r.team_id = ? AND r.status != ?
		ORDER BY r.seq ASC, r.player_id COLLATE BINARY ASC
	`, teamID, string(ir.StatusRemoved))
	if err != nil {
		return nil, fmt.Errorf("query roster: %w", err)
	}
	defer rows.Close()

	entries := []ir.RosterEntry{}
	for rows.Next() {
		var (
			e        ir.RosterEntry
			eligible string
			status   string
			position sql.NullString
			start    int
		)
		if err := rows.Scan(&e.Player.ID, &e.Player.Name, &e.Player.Primary, &eligible,
			&status, &position, &e.Salary, &e.ContractYears, &start); err != nil {
			return nil, fmt.Errorf("scan roster entry: %w", err)
		}
		if e.Player.Eligible, err = unmarshalEligible(eligible); err != nil {
			return nil, fmt.Errorf("player %s: %w", e.Player.ID, err)
		}
		e.Status = ir.RosterStatus(status)
		e.Position = position.String
		e.StartContract = start != 0
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster: %w", err)
	}
	return entries, nil
}

// LogEntry is one row of the assignment log.
type LogEntry struct {
	TeamID     string          `json:"team_id"`
	PlayerID   string          `json:"player_id"`
	ProposalID string          `json:"proposal_id,omitempty"`
	Record     ir.CommitRecord `json:"record"`
	Seq        int64           `json:"seq"`
}

// History returns a team's commit log in commit order.
func (s *Store) History(ctx context.Context, teamID string) ([]LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT team_id, player_id, proposal_id, record, seq
		FROM assignment_log
		WHERE team_id = ?
		ORDER BY seq ASC, id ASC
	`, teamID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	log := []LogEntry{}
	for rows.Next() {
		var (
			le         LogEntry
			proposalID sql.NullString
			record     string
		)
		if err := rows.Scan(&le.TeamID, &le.PlayerID, &proposalID, &record, &le.Seq); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		le.ProposalID = proposalID.String
		if le.Record, err = unmarshalRecord(record); err != nil {
			return nil, fmt.Errorf("log seq %d: %w", le.Seq, err)
		}
		log = append(log, le)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return log, nil
}

// MaxSeq returns the highest logged seq, or 0 for an empty log. Engines
// resume their clock from it so seqs stay increasing across runs.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) FROM assignment_log").Scan(&seq); err != nil {
		return 0, fmt.Errorf("max seq: %w", err)
	}
	return seq, nil
}
