package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/lineup/internal/ir"
)

// ErrMissingTeam is returned when a write omits the team id.
var ErrMissingTeam = errors.New("team id is required")

// Commit applies one commit record in its own transaction: the log entry,
// the player row and the roster entry land together or not at all.
//
// A record whose ProposalID is already logged is a replay and is silently
// ignored, so retries are safe. Records without a proposal id (moves, drops)
// are always applied.
func (s *Store) Commit(ctx context.Context, teamID string, player ir.Player, rec ir.CommitRecord) error {
	if teamID == "" {
		return fmt.Errorf("commit: %w", ErrMissingTeam)
	}
	if rec.PlayerID != player.ID {
		return fmt.Errorf("commit: record is for player %q but player is %q", rec.PlayerID, player.ID)
	}

	recordJSON, err := marshalRecord(rec)
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("commit: begin: %w", err)
	}
	defer tx.Rollback()

	var proposalID sql.NullString
	if rec.ProposalID != "" {
		proposalID = sql.NullString{String: rec.ProposalID, Valid: true}
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO assignment_log (team_id, player_id, proposal_id, record, seq)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(proposal_id) DO NOTHING
	`, teamID, rec.PlayerID, proposalID, recordJSON, rec.Seq)
	if err != nil {
		return fmt.Errorf("commit: write log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("commit: rows affected: %w", err)
	}
	if n == 0 {
		return nil
	}

	if err := upsertPlayer(ctx, tx, player); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	if err := upsertEntry(ctx, tx, teamID, rec); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Import writes entries as a team's baseline roster in one transaction.
// Imported state is not history: nothing is logged, and every entry gets
// seq 0 so later commits order after it.
func (s *Store) Import(ctx context.Context, teamID string, entries []ir.RosterEntry) error {
	if teamID == "" {
		return fmt.Errorf("import: %w", ErrMissingTeam)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("import: begin: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		if err := upsertPlayer(ctx, tx, e.Player); err != nil {
			return fmt.Errorf("import: %w", err)
		}
		rec := ir.CommitRecord{
			PlayerID:      e.Player.ID,
			RosterStatus:  e.Status,
			Salary:        e.Salary,
			ContractYears: e.ContractYears,
			StartContract: e.StartContract,
		}
		if e.Position != "" {
			pos := e.Position
			rec.RosterPosition = &pos
		}
		if err := upsertEntry(ctx, tx, teamID, rec); err != nil {
			return fmt.Errorf("import: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	return nil
}

func upsertPlayer(ctx context.Context, tx *sql.Tx, p ir.Player) error {
	eligible, err := marshalEligible(p.Eligible)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO players (id, name, primary_position, eligible)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			primary_position = excluded.primary_position,
			eligible = excluded.eligible
	`, p.ID, p.Name, p.Primary, eligible)
	if err != nil {
		return fmt.Errorf("write player %s: %w", p.ID, err)
	}
	return nil
}

func upsertEntry(ctx context.Context, tx *sql.Tx, teamID string, rec ir.CommitRecord) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO roster_entries
		(team_id, player_id, status, position, salary, contract_years, start_contract, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(team_id, player_id) DO UPDATE SET
			status = excluded.status,
			position = excluded.position,
			salary = excluded.salary,
			contract_years = excluded.contract_years,
			start_contract = excluded.start_contract,
			seq = excluded.seq
	`,
		teamID,
		rec.PlayerID,
		string(rec.RosterStatus),
		nullString(rec.RosterPosition),
		rec.Salary,
		rec.ContractYears,
		boolInt(rec.StartContract),
		rec.Seq,
	)
	if err != nil {
		return fmt.Errorf("write roster entry %s: %w", rec.PlayerID, err)
	}
	return nil
}
