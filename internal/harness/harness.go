package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/lineup/internal/compiler"
	"github.com/roach88/lineup/internal/engine"
	"github.com/roach88/lineup/internal/ir"
	"github.com/roach88/lineup/internal/roster"
	"github.com/roach88/lineup/internal/store"
	"github.com/roach88/lineup/internal/testutil"
)

const defaultTeam = "test-team"

// Harness executes one scenario against a private store and engine.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	schema ir.PositionSchema
	team   string
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Compile and validate the league
//  2. Create a fresh in-memory database and import the starting roster
//  3. Run each step against the roster as committed so far
//  4. Evaluate assertions against the trace and final roster
//
// The returned error covers setup problems only; failed assertions are
// reported through Result.Pass and Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	schema, err := compiler.CompileLeagueFile(scenario.League)
	if err != nil {
		return nil, fmt.Errorf("failed to compile league: %w", err)
	}
	if verrs := compiler.ValidateSchema(*schema); len(verrs) > 0 {
		return nil, fmt.Errorf("invalid league: %w", verrs[0])
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	team := scenario.Team
	if team == "" {
		team = defaultTeam
	}

	ctx := context.Background()
	if err := st.Import(ctx, team, scenario.Roster); err != nil {
		return nil, fmt.Errorf("failed to import roster: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &Harness{
		store: st,
		engine: engine.New(st,
			engine.WithBatchIDGenerator(testutil.NewSequentialBatchIDs(scenario.BatchPrefix)),
			engine.WithPolicy(roster.Policy{AllowDirectCallUp: scenario.AllowDirectCallUp}),
			engine.WithLogger(logger),
		),
		schema: *schema,
		team:   team,
		logger: logger,
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	final, err := st.LoadRoster(ctx, team)
	if err != nil {
		return nil, fmt.Errorf("failed to load final roster: %w", err)
	}
	result.Roster = final

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	current, err := h.store.LoadRoster(ctx, h.team)
	if err != nil {
		return err
	}

	switch {
	case step.Add != nil:
		return h.executeAdd(ctx, index, step.Add, current, result)
	case step.Move != nil:
		return h.executeMove(ctx, index, step.Move, current, result)
	case step.Drop != nil:
		return h.executeDrop(ctx, index, step.Drop, current, result)
	}
	return fmt.Errorf("empty step")
}

func (h *Harness) executeAdd(ctx context.Context, index int, add *AddStep, current []ir.RosterEntry, result *Result) error {
	overrides := make(map[string]ir.Target, len(add.Overrides))
	for playerID, raw := range add.Overrides {
		t, err := ir.ParseTarget(raw)
		if err != nil {
			return fmt.Errorf("override for %s: %w", playerID, err)
		}
		overrides[playerID] = t
	}

	res, err := h.engine.AddPlayers(ctx, engine.BatchRequest{
		TeamID:     h.team,
		Schema:     h.schema,
		Roster:     current,
		Candidates: add.Candidates,
		Overrides:  overrides,
	})
	if err != nil {
		return err
	}

	byPlayer := make(map[string]TraceEvent, len(add.Candidates))
	for _, out := range res.Successful {
		ev := TraceEvent{Step: index, Op: "add", PlayerID: out.PlayerID, Outcome: OutcomeCommitted}
		ev.Target = out.Proposal.Target().String()
		ev.Tier = out.Proposal.Tier
		ev.Record = traceRecord(*out.Record)
		byPlayer[out.PlayerID] = ev
	}
	for _, out := range res.Failed {
		ev := TraceEvent{Step: index, Op: "add", PlayerID: out.PlayerID, Outcome: OutcomeFailed, Reason: out.Reason}
		if out.Proposal != nil {
			ev.Target = out.Proposal.Target().String()
			ev.Tier = out.Proposal.Tier
		}
		for _, issue := range out.Errors {
			ev.Codes = append(ev.Codes, issue.Code)
		}
		byPlayer[out.PlayerID] = ev
	}
	for _, c := range add.Candidates {
		if ev, ok := byPlayer[c.Player.ID]; ok {
			result.Trace = append(result.Trace, ev)
			delete(byPlayer, c.Player.ID)
		}
	}

	for _, w := range res.Warnings {
		result.Issues = append(result.Issues, IssueEvent{Step: index, Code: w.Code, PlayerID: w.PlayerID})
	}
	for _, issue := range res.Errors {
		result.Issues = append(result.Issues, IssueEvent{Step: index, Code: issue.Code, PlayerID: issue.PlayerID})
	}
	for _, d := range res.Diagnostics {
		result.Issues = append(result.Issues, IssueEvent{Step: index, Code: d.Code, PlayerID: d.PlayerID})
	}

	h.logger.Info("add step completed", "step", index, "batch_id", res.BatchID,
		"successful", len(res.Successful), "failed", len(res.Failed))
	return nil
}

func (h *Harness) executeMove(ctx context.Context, index int, move *MoveStep, current []ir.RosterEntry, result *Result) error {
	to, err := roster.ParseDestination(move.To)
	if err != nil {
		return fmt.Errorf("move destination: %w", err)
	}

	ev := TraceEvent{Step: index, Op: "move", PlayerID: move.Player, Target: to.String()}
	res, err := h.engine.Move(ctx, engine.MoveRequest{
		TeamID:   h.team,
		Schema:   h.schema,
		Roster:   current,
		PlayerID: move.Player,
		To:       to,
	})
	if err != nil {
		if !expectedFailure(err) {
			return err
		}
		ev.Outcome = OutcomeFailed
		ev.Reason = err.Error()
		var re *engine.RejectedError
		if errors.As(err, &re) {
			for _, issue := range re.Result.Errors {
				ev.Codes = append(ev.Codes, issue.Code)
			}
		}
		result.Trace = append(result.Trace, ev)
		return nil
	}

	ev.Outcome = OutcomeCommitted
	ev.Record = traceRecord(res.Record)
	result.Trace = append(result.Trace, ev)
	for _, w := range res.Warnings {
		result.Issues = append(result.Issues, IssueEvent{Step: index, Code: w.Code, PlayerID: w.PlayerID})
	}
	return nil
}

func (h *Harness) executeDrop(ctx context.Context, index int, drop *DropStep, current []ir.RosterEntry, result *Result) error {
	ev := TraceEvent{Step: index, Op: "drop", PlayerID: drop.Player}
	rec, err := h.engine.Drop(ctx, engine.DropRequest{TeamID: h.team, Roster: current, PlayerID: drop.Player})
	if err != nil {
		if !expectedFailure(err) {
			return err
		}
		ev.Outcome = OutcomeFailed
		ev.Reason = err.Error()
		result.Trace = append(result.Trace, ev)
		return nil
	}
	ev.Outcome = OutcomeCommitted
	ev.Record = traceRecord(*rec)
	result.Trace = append(result.Trace, ev)
	return nil
}

// expectedFailure reports whether err is a domain outcome a scenario may
// deliberately provoke, as opposed to a harness or store failure.
func expectedFailure(err error) bool {
	var nr *engine.NotRosteredError
	return roster.IsTransitionError(err) || engine.IsRejected(err) || errors.As(err, &nr)
}

// traceRecord drops the content-hash proposal id so golden files stay
// readable and hand-checkable.
func traceRecord(rec ir.CommitRecord) *ir.CommitRecord {
	rec.ProposalID = ""
	return &rec
}
