package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/lineup/internal/capacity"
	"github.com/roach88/lineup/internal/ir"
	"github.com/roach88/lineup/internal/metrics"
	"github.com/roach88/lineup/internal/planner"
	"github.com/roach88/lineup/internal/roster"
	"github.com/roach88/lineup/internal/validator"
)

// Committer applies one player's commit record to a team's roster. It is
// the engine's only write path; its implementation owns atomicity.
type Committer interface {
	Commit(ctx context.Context, teamID string, player ir.Player, rec ir.CommitRecord) error
}

// PriceSource resolves the acquisition price for a player. Optional: without
// one the candidate's own Price is used.
type PriceSource interface {
	Price(ctx context.Context, teamID string, player ir.Player) (int64, error)
}

// Outcome reasons that are not planner reasons.
const (
	ReasonAlreadyRostered    = "already rostered"
	ReasonDuplicateCandidate = "duplicate candidate in batch"
	ReasonRejected           = "rejected by validator"
	ReasonPriceFailed        = "price lookup failed"
	ReasonCommitFailed       = "commit failed"
	ReasonCancelled          = "cancelled"
)

// Engine runs roster decisions for any number of teams. It holds no roster
// state of its own; every request carries the schema and roster it acts on.
type Engine struct {
	committer Committer
	prices    PriceSource
	ids       BatchIDGenerator
	clock     *Clock
	policy    roster.Policy
	maxBatch  int
	metrics   *metrics.Recorder
	logger    *slog.Logger
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithMaxBatchSize limits how many candidates one AddPlayers call may carry.
// A limit <= 0 disables the check.
func WithMaxBatchSize(n int) EngineOption {
	return func(e *Engine) {
		e.maxBatch = n
	}
}

// WithPriceSource resolves prices at commit time instead of trusting the
// candidate's Price.
func WithPriceSource(p PriceSource) EngineOption {
	return func(e *Engine) {
		e.prices = p
	}
}

// WithBatchIDGenerator replaces the UUIDv7 generator, typically with a
// FixedGenerator in tests.
func WithBatchIDGenerator(g BatchIDGenerator) EngineOption {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithClock resumes commit sequencing from an existing clock.
func WithClock(c *Clock) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithPolicy sets the league's roster transition policy.
func WithPolicy(p roster.Policy) EngineOption {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithMetrics records decisions and commits on r. A nil recorder is a no-op.
func WithMetrics(r *metrics.Recorder) EngineOption {
	return func(e *Engine) {
		e.metrics = r
	}
}

// WithLogger sets the logger used for per-player decisions.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine that commits through c.
func New(c Committer, opts ...EngineOption) *Engine {
	e := &Engine{
		committer: c,
		ids:       UUIDv7Generator{},
		clock:     NewClock(),
		maxBatch:  DefaultMaxBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BatchRequest asks the engine to place and commit several candidates for
// one team. Overrides maps a player id to a manual target that replaces
// priority selection for that player.
type BatchRequest struct {
	TeamID     string
	Schema     ir.PositionSchema
	Roster     []ir.RosterEntry
	Candidates []ir.Candidate
	Overrides  map[string]ir.Target
}

// Outcome is what happened to one candidate. Record is set only for
// committed players.
type Outcome struct {
	PlayerID string            `json:"player_id"`
	Proposal *ir.Proposal      `json:"proposal,omitempty"`
	Record   *ir.CommitRecord  `json:"record,omitempty"`
	Reason   string            `json:"reason,omitempty"`
	Errors   []validator.Issue `json:"errors,omitempty"`
}

// BatchResult reports every candidate exactly once, in Successful or Failed,
// each in input order.
type BatchResult struct {
	BatchID     string            `json:"batch_id"`
	Successful  []Outcome         `json:"successful"`
	Failed      []Outcome         `json:"failed"`
	Warnings    []validator.Issue `json:"warnings"`
	Errors      []validator.Issue `json:"errors,omitempty"`
	Diagnostics []ir.Diagnostic   `json:"diagnostics,omitempty"`
}

// AddPlayers computes capacity, plans the batch, validates it, prices and
// commits each placed player independently.
//
// The returned error covers request-level problems only (missing team,
// oversized batch). Per-player failures, including commit errors, land in
// BatchResult.Failed and never undo another player's commit.
func (e *Engine) AddPlayers(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	start := time.Now()
	defer func() { e.metrics.RecordBatch(time.Since(start)) }()

	if req.TeamID == "" {
		return nil, ErrMissingTeam
	}
	if err := checkBatchSize(len(req.Candidates), e.maxBatch); err != nil {
		return nil, err
	}

	result := &BatchResult{
		BatchID:    e.ids.Generate(),
		Successful: []Outcome{},
		Failed:     []Outcome{},
		Warnings:   []validator.Issue{},
	}
	log := e.logger.With("team_id", req.TeamID, "batch_id", result.BatchID)

	snap := capacity.Compute(req.Schema, req.Roster)
	result.Diagnostics = append(result.Diagnostics, snap.Diagnostics...)

	// Already-rostered candidates and repeats of an earlier candidate are
	// turned away before planning so they never claim capacity. Everything
	// below is keyed by input index since ids may repeat.
	failed := make(map[int]Outcome)
	seen := make(map[string]bool, len(req.Candidates))
	reqIndex := make([]int, 0, len(req.Candidates))
	reqs := make([]planner.Request, 0, len(req.Candidates))
	for i, c := range req.Candidates {
		id := c.Player.ID
		if entry, ok := roster.Find(req.Roster, id); ok && entry.Status != ir.StatusRemoved {
			failed[i] = Outcome{PlayerID: id, Reason: ReasonAlreadyRostered}
			continue
		}
		if seen[id] {
			failed[i] = Outcome{PlayerID: id, Reason: ReasonDuplicateCandidate}
			continue
		}
		seen[id] = true
		r := planner.Request{Candidate: c}
		if t, ok := req.Overrides[id]; ok {
			r.Target = &t
		}
		reqs = append(reqs, r)
		reqIndex = append(reqIndex, i)
	}

	plan := planner.PlanRequests(reqs, snap)
	result.Diagnostics = append(result.Diagnostics, plan.Diagnostics...)
	for _, d := range result.Diagnostics {
		log.Warn("roster data inconsistency", "code", d.Code, "player_id", d.PlayerID, "message", d.Message)
		e.metrics.RecordDiagnostic(d)
	}

	check := validator.Validate(plan.Proposals(), snap)
	result.Warnings = check.Warnings
	var batchErrors []validator.Issue
	for _, issue := range check.Errors {
		if issue.PlayerID == "" {
			batchErrors = append(batchErrors, issue)
		}
	}
	result.Errors = batchErrors

	planned := make(map[int]planner.Assignment, len(plan.Assignments))
	for j, a := range plan.Assignments {
		planned[reqIndex[j]] = a
	}

	for i, c := range req.Candidates {
		id := c.Player.ID
		if out, ok := failed[i]; ok {
			e.fail(log, result, out)
			continue
		}
		a := planned[i]
		if a.Proposal == nil {
			e.metrics.RecordUnassigned(a.Reason)
			e.fail(log, result, Outcome{PlayerID: id, Reason: a.Reason, Errors: a.Errors})
			continue
		}
		p := *a.Proposal
		e.metrics.RecordProposal(p)

		if issues := append(check.ErrorsFor(id), batchErrors...); len(issues) > 0 {
			e.fail(log, result, Outcome{PlayerID: id, Proposal: &p, Reason: ReasonRejected, Errors: issues})
			continue
		}
		if err := ctx.Err(); err != nil {
			e.fail(log, result, Outcome{PlayerID: id, Proposal: &p, Reason: fmt.Sprintf("%s: %v", ReasonCancelled, err)})
			continue
		}

		out, err := e.commitProposal(ctx, req.TeamID, result.BatchID, p)
		if err != nil {
			e.fail(log, result, Outcome{PlayerID: id, Proposal: &p, Reason: err.Error()})
			continue
		}
		log.Info("player committed", "player_id", id, "target", p.Target().String(), "tier", p.Tier)
		e.metrics.RecordCommit(metrics.OutcomeCommitted)
		e.metrics.RecordTransition("", out.RosterStatus)
		result.Successful = append(result.Successful, Outcome{PlayerID: id, Proposal: &p, Record: out})
	}

	log.Info("batch complete", "successful", len(result.Successful), "failed", len(result.Failed))
	return result, nil
}

// commitProposal prices (when configured), converts and commits one proposal.
func (e *Engine) commitProposal(ctx context.Context, teamID, batchID string, p ir.Proposal) (*ir.CommitRecord, error) {
	if e.prices != nil && p.Type != ir.AssignMinors {
		price, err := e.prices.Price(ctx, teamID, p.Player)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ReasonPriceFailed, err)
		}
		p.Salary = price
	}

	rec := roster.Acquire(p)
	pid, err := ir.ProposalID(teamID, batchID, p)
	if err != nil {
		return nil, fmt.Errorf("proposal id: %w", err)
	}
	rec.ProposalID = pid
	rec.Seq = e.clock.Next()

	if err := e.committer.Commit(ctx, teamID, p.Player, rec); err != nil {
		return nil, fmt.Errorf("%s: %w", ReasonCommitFailed, &CommitError{PlayerID: p.Player.ID, Err: err})
	}
	return &rec, nil
}

func (e *Engine) fail(log *slog.Logger, result *BatchResult, out Outcome) {
	outcome := metrics.OutcomeRejected
	if out.Proposal != nil && len(out.Errors) == 0 {
		outcome = metrics.OutcomeFailed
	}
	e.metrics.RecordCommit(outcome)
	log.Info("player not committed", "player_id", out.PlayerID, "reason", out.Reason)
	result.Failed = append(result.Failed, out)
}

// MoveRequest moves an existing entry to a new destination.
type MoveRequest struct {
	TeamID   string
	Schema   ir.PositionSchema
	Roster   []ir.RosterEntry
	PlayerID string
	To       roster.Destination
}

// MoveResult is the committed record plus any non-blocking warnings.
type MoveResult struct {
	Record   ir.CommitRecord   `json:"record"`
	Warnings []validator.Issue `json:"warnings"`
}

// Move checks the state machine, validates the destination against a
// snapshot that excludes the moving entry, and commits.
func (e *Engine) Move(ctx context.Context, req MoveRequest) (*MoveResult, error) {
	if req.TeamID == "" {
		return nil, ErrMissingTeam
	}
	entry, ok := roster.Find(req.Roster, req.PlayerID)
	if !ok || entry.Status == ir.StatusRemoved {
		return nil, &NotRosteredError{TeamID: req.TeamID, PlayerID: req.PlayerID}
	}

	rec, err := roster.Move(entry, req.To, e.policy)
	if err != nil {
		return nil, err
	}

	snap := capacity.Compute(req.Schema, capacity.Without(req.Roster, req.PlayerID))
	for _, d := range snap.Diagnostics {
		e.logger.Warn("roster data inconsistency", "team_id", req.TeamID, "code", d.Code, "player_id", d.PlayerID, "message", d.Message)
		e.metrics.RecordDiagnostic(d)
	}

	check := checkDestination(entry, req.To, snap)
	if !check.Valid {
		e.metrics.RecordCommit(metrics.OutcomeRejected)
		return nil, &RejectedError{PlayerID: req.PlayerID, Result: check}
	}

	rec.Seq = e.clock.Next()
	if err := e.committer.Commit(ctx, req.TeamID, entry.Player, rec); err != nil {
		e.metrics.RecordCommit(metrics.OutcomeFailed)
		return nil, &CommitError{PlayerID: req.PlayerID, Err: err}
	}

	e.logger.Info("player moved", "team_id", req.TeamID, "player_id", req.PlayerID,
		"from", string(entry.Status), "to", req.To.String())
	e.metrics.RecordCommit(metrics.OutcomeCommitted)
	e.metrics.RecordTransition(entry.Status, rec.RosterStatus)
	return &MoveResult{Record: rec, Warnings: check.Warnings}, nil
}

// checkDestination validates capacity at the destination. The disabled list
// is not a proposal category, so it is checked directly.
func checkDestination(entry ir.RosterEntry, to roster.Destination, snap ir.CapacitySnapshot) validator.Result {
	if to.Status == ir.StatusDL {
		if snap.DisabledList.Available() > 0 {
			return validator.Result{Valid: true, Errors: []validator.Issue{}, Warnings: []validator.Issue{}}
		}
		return validator.Result{
			Errors: []validator.Issue{{
				Code:     validator.ErrOverCapacity,
				Slot:     "DL",
				PlayerID: entry.Player.ID,
				Message:  fmt.Sprintf("DL has %d open slot(s)", max(snap.DisabledList.Available(), 0)),
			}},
			Warnings: []validator.Issue{},
		}
	}

	p := ir.Proposal{Player: entry.Player, Tier: ir.TierBench, Type: ir.AssignBench}
	if to.Status == ir.StatusActive {
		slot := to.Slot
		slot.Position = ir.NormalizeCode(slot.Position)
		p.Type = ir.AssignActive
		p.Slot = &slot
		p.Tier = ir.TierDerived
		if slot.Position == ir.NormalizeCode(entry.Player.Primary) {
			p.Tier = ir.TierDirect
		}
	}
	check := validator.Validate([]ir.Proposal{p}, snap)
	if p.Type == ir.AssignBench {
		// Benching is never sub-optimal placement.
		check.Warnings = []validator.Issue{}
	}
	return check
}

// DropRequest releases a player from a team.
type DropRequest struct {
	TeamID   string
	Roster   []ir.RosterEntry
	PlayerID string
}

// Drop commits a removal record for the player.
func (e *Engine) Drop(ctx context.Context, req DropRequest) (*ir.CommitRecord, error) {
	if req.TeamID == "" {
		return nil, ErrMissingTeam
	}
	entry, ok := roster.Find(req.Roster, req.PlayerID)
	if !ok {
		return nil, &NotRosteredError{TeamID: req.TeamID, PlayerID: req.PlayerID}
	}
	rec, err := roster.Drop(entry)
	if err != nil {
		return nil, err
	}
	rec.Seq = e.clock.Next()
	if err := e.committer.Commit(ctx, req.TeamID, entry.Player, rec); err != nil {
		e.metrics.RecordCommit(metrics.OutcomeFailed)
		return nil, &CommitError{PlayerID: req.PlayerID, Err: err}
	}
	e.logger.Info("player dropped", "team_id", req.TeamID, "player_id", req.PlayerID, "from", string(entry.Status))
	e.metrics.RecordCommit(metrics.OutcomeCommitted)
	e.metrics.RecordTransition(entry.Status, ir.StatusRemoved)
	return &rec, nil
}
