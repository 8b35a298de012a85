package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lineup/internal/ir"
	"github.com/roach88/lineup/internal/metrics"
	"github.com/roach88/lineup/internal/planner"
	"github.com/roach88/lineup/internal/roster"
	"github.com/roach88/lineup/internal/validator"
)

type commitCall struct {
	TeamID string
	Player ir.Player
	Record ir.CommitRecord
}

// fakeCommitter records commits and fails for players listed in failFor.
type fakeCommitter struct {
	calls   []commitCall
	failFor map[string]error
}

func (f *fakeCommitter) Commit(_ context.Context, teamID string, player ir.Player, rec ir.CommitRecord) error {
	if err, ok := f.failFor[player.ID]; ok {
		return err
	}
	f.calls = append(f.calls, commitCall{TeamID: teamID, Player: player, Record: rec})
	return nil
}

type fakePrices map[string]int64

func (f fakePrices) Price(_ context.Context, _ string, p ir.Player) (int64, error) {
	price, ok := f[p.ID]
	if !ok {
		return 0, errors.New("no quote")
	}
	return price, nil
}

func newTestEngine(c Committer, opts ...EngineOption) *Engine {
	opts = append([]EngineOption{WithBatchIDGenerator(NewFixedGenerator("batch-1", "batch-2"))}, opts...)
	return New(c, opts...)
}

func player(id, primary string, eligible ...string) ir.Player {
	return ir.Player{ID: id, Name: id, Primary: primary, Eligible: eligible}
}

func cand(id, primary string, eligible ...string) ir.Candidate {
	return ir.Candidate{Player: player(id, primary, eligible...), Price: 5, ContractYears: 1}
}

func leagueSchema() ir.PositionSchema {
	return ir.PositionSchema{
		Positions: []ir.PositionSlot{
			{Code: "C", Count: 1},
			{Code: "SS", Count: 1},
			{Code: "MI", Count: 1},
			{Code: "UTIL", Count: 1},
		},
		Bench:        1,
		DisabledList: 1,
		Minors:       1,
	}
}

func slotPtr(s string) *string { return &s }

func TestAddPlayers_PlansAndCommitsInOrder(t *testing.T) {
	c := &fakeCommitter{}
	e := newTestEngine(c)

	res, err := e.AddPlayers(context.Background(), BatchRequest{
		TeamID: "team-1",
		Schema: leagueSchema(),
		Candidates: []ir.Candidate{
			cand("p1", "SS", "SS", "2B"),
			cand("p2", "SS", "SS"),
			cand("p3", "C", "C"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "batch-1", res.BatchID)
	require.Len(t, res.Successful, 3)
	assert.Empty(t, res.Failed)

	assert.Equal(t, "SS_0", res.Successful[0].Proposal.Slot.String())
	assert.Equal(t, "MI_0", res.Successful[1].Proposal.Slot.String())
	assert.Equal(t, "C_0", res.Successful[2].Proposal.Slot.String())

	require.Len(t, c.calls, 3)
	for i, call := range c.calls {
		assert.Equal(t, "team-1", call.TeamID)
		assert.Equal(t, int64(i+1), call.Record.Seq, "records are stamped in commit order")
		assert.NotEmpty(t, call.Record.ProposalID)
		assert.True(t, call.Record.StartContract)
	}
	assert.Equal(t, slotPtr("MI_0"), c.calls[1].Record.RosterPosition)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, validator.WarnSubOptimal, res.Warnings[0].Code)
	assert.Equal(t, "p2", res.Warnings[0].PlayerID)
}

func TestAddPlayers_CommitFailureIsIsolated(t *testing.T) {
	c := &fakeCommitter{failFor: map[string]error{"p1": errors.New("db locked")}}
	e := newTestEngine(c)

	res, err := e.AddPlayers(context.Background(), BatchRequest{
		TeamID:     "team-1",
		Schema:     leagueSchema(),
		Candidates: []ir.Candidate{cand("p1", "C", "C"), cand("p2", "SS", "SS")},
	})
	require.NoError(t, err)

	require.Len(t, res.Failed, 1)
	assert.Equal(t, "p1", res.Failed[0].PlayerID)
	assert.Contains(t, res.Failed[0].Reason, ReasonCommitFailed)
	assert.Contains(t, res.Failed[0].Reason, "db locked")

	require.Len(t, res.Successful, 1)
	assert.Equal(t, "p2", res.Successful[0].PlayerID)
	require.Len(t, c.calls, 1)
}

func TestAddPlayers_NoSlotIsAFailedOutcome(t *testing.T) {
	schema := ir.PositionSchema{Positions: []ir.PositionSlot{{Code: "C", Count: 1}}}
	e := newTestEngine(&fakeCommitter{})

	res, err := e.AddPlayers(context.Background(), BatchRequest{
		TeamID:     "team-1",
		Schema:     schema,
		Candidates: []ir.Candidate{cand("p1", "C", "C"), cand("p2", "C", "C")},
	})
	require.NoError(t, err)

	require.Len(t, res.Successful, 1)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, planner.ReasonNoSlot, res.Failed[0].Reason)
	assert.Nil(t, res.Failed[0].Proposal)
}

func TestAddPlayers_MinorsTermsForcedAndNotPriced(t *testing.T) {
	schema := ir.PositionSchema{
		Positions: []ir.PositionSlot{{Code: "C", Count: 1}},
		Minors:    1,
	}
	entries := []ir.RosterEntry{{Player: player("c0", "C"), Status: ir.StatusActive, Position: "C_0"}}
	c := &fakeCommitter{}
	e := newTestEngine(c, WithPriceSource(fakePrices{}))

	res, err := e.AddPlayers(context.Background(), BatchRequest{
		TeamID:     "team-1",
		Schema:     schema,
		Roster:     entries,
		Candidates: []ir.Candidate{cand("p1", "C", "C")},
	})
	require.NoError(t, err)
	require.Len(t, res.Successful, 1)

	rec := c.calls[0].Record
	assert.Equal(t, ir.StatusMinors, rec.RosterStatus)
	assert.Nil(t, rec.RosterPosition)
	assert.Zero(t, rec.Salary)
	assert.Zero(t, rec.ContractYears)
	assert.False(t, rec.StartContract)
}

func TestAddPlayers_PriceSource(t *testing.T) {
	c := &fakeCommitter{}
	e := newTestEngine(c, WithPriceSource(fakePrices{"p1": 31}))

	res, err := e.AddPlayers(context.Background(), BatchRequest{
		TeamID:     "team-1",
		Schema:     leagueSchema(),
		Candidates: []ir.Candidate{cand("p1", "C", "C"), cand("p2", "SS", "SS")},
	})
	require.NoError(t, err)

	require.Len(t, res.Successful, 1)
	assert.Equal(t, int64(31), res.Successful[0].Record.Salary)

	require.Len(t, res.Failed, 1)
	assert.Equal(t, "p2", res.Failed[0].PlayerID)
	assert.Contains(t, res.Failed[0].Reason, ReasonPriceFailed)
}

func TestAddPlayers_Overrides(t *testing.T) {
	c := &fakeCommitter{}
	e := newTestEngine(c)

	res, err := e.AddPlayers(context.Background(), BatchRequest{
		TeamID:     "team-1",
		Schema:     leagueSchema(),
		Candidates: []ir.Candidate{cand("p1", "SS", "SS"), cand("p2", "C", "C")},
		Overrides: map[string]ir.Target{
			"p1": {Type: ir.AssignBench},
			"p2": {Type: ir.AssignActive, Slot: ir.SlotID{Position: "SS", Index: 0}},
		},
	})
	require.NoError(t, err)

	require.Len(t, res.Successful, 1)
	assert.Equal(t, ir.AssignBench, res.Successful[0].Proposal.Type)

	require.Len(t, res.Failed, 1)
	assert.Equal(t, planner.ReasonOverrideRejected, res.Failed[0].Reason)
	require.NotEmpty(t, res.Failed[0].Errors)
	assert.Equal(t, validator.ErrIneligible, res.Failed[0].Errors[0].Code)
}

func TestAddPlayers_AlreadyRostered(t *testing.T) {
	c := &fakeCommitter{}
	e := newTestEngine(c)

	res, err := e.AddPlayers(context.Background(), BatchRequest{
		TeamID:     "team-1",
		Schema:     leagueSchema(),
		Roster:     []ir.RosterEntry{{Player: player("p1", "C"), Status: ir.StatusBench}},
		Candidates: []ir.Candidate{cand("p1", "C", "C")},
	})
	require.NoError(t, err)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, ReasonAlreadyRostered, res.Failed[0].Reason)
	assert.Empty(t, c.calls)
}

func TestAddPlayers_DuplicateCandidateKeepsFirst(t *testing.T) {
	c := &fakeCommitter{}
	e := newTestEngine(c)

	res, err := e.AddPlayers(context.Background(), BatchRequest{
		TeamID: "team-1",
		Schema: ir.PositionSchema{Positions: []ir.PositionSlot{{Code: "C", Count: 1}}, Bench: 1},
		Candidates: []ir.Candidate{
			cand("x", "C", "C"),
			cand("x", "C", "C"),
		},
	})
	require.NoError(t, err)

	require.Len(t, res.Successful, 1)
	assert.Equal(t, "x", res.Successful[0].PlayerID)
	assert.Equal(t, "C_0", res.Successful[0].Proposal.Target().String())

	require.Len(t, res.Failed, 1)
	assert.Equal(t, ReasonDuplicateCandidate, res.Failed[0].Reason)
	assert.Nil(t, res.Failed[0].Proposal)
	assert.Empty(t, res.Failed[0].Errors)

	require.Len(t, c.calls, 1)
	assert.Equal(t, "C_0", *c.calls[0].Record.RosterPosition)
}

func TestAddPlayers_RequestErrors(t *testing.T) {
	e := newTestEngine(&fakeCommitter{}, WithMaxBatchSize(1))

	_, err := e.AddPlayers(context.Background(), BatchRequest{Schema: leagueSchema()})
	assert.ErrorIs(t, err, ErrMissingTeam)

	_, err = e.AddPlayers(context.Background(), BatchRequest{
		TeamID:     "team-1",
		Schema:     leagueSchema(),
		Candidates: []ir.Candidate{cand("p1", "C"), cand("p2", "C")},
	})
	require.Error(t, err)
	assert.True(t, IsBatchSizeError(err))
	var be *BatchSizeError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 2, be.Size)
	assert.Equal(t, 1, be.Limit)
}

func TestAddPlayers_CancelledContext(t *testing.T) {
	c := &fakeCommitter{}
	e := newTestEngine(c)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := e.AddPlayers(ctx, BatchRequest{
		TeamID:     "team-1",
		Schema:     leagueSchema(),
		Candidates: []ir.Candidate{cand("p1", "C", "C")},
	})
	require.NoError(t, err)
	require.Len(t, res.Failed, 1)
	assert.Contains(t, res.Failed[0].Reason, ReasonCancelled)
	assert.Empty(t, c.calls)
}

func TestAddPlayers_DiagnosticsSurface(t *testing.T) {
	rec := metrics.NewRecorder()
	e := newTestEngine(&fakeCommitter{}, WithMetrics(rec))

	res, err := e.AddPlayers(context.Background(), BatchRequest{
		TeamID: "team-1",
		Schema: leagueSchema(),
		Roster: []ir.RosterEntry{
			{Player: player("x", "C"), Status: ir.StatusActive, Position: "garbage"},
		},
		Candidates: []ir.Candidate{cand("p1", "C")},
	})
	require.NoError(t, err)

	codes := make([]string, 0, len(res.Diagnostics))
	for _, d := range res.Diagnostics {
		codes = append(codes, d.Code)
	}
	assert.Contains(t, codes, "D001")
	assert.Contains(t, codes, "D008")
}

func TestMove(t *testing.T) {
	base := []ir.RosterEntry{
		{Player: player("a", "SS", "SS"), Status: ir.StatusActive, Position: "SS_0", Salary: 9, ContractYears: 2},
		{Player: player("b", "C", "C"), Status: ir.StatusBench, Salary: 3, ContractYears: 1},
		{Player: player("m", "C", "C"), Status: ir.StatusMinors},
	}

	t.Run("bench to active", func(t *testing.T) {
		c := &fakeCommitter{}
		e := newTestEngine(c)
		res, err := e.Move(context.Background(), MoveRequest{
			TeamID: "team-1", Schema: leagueSchema(), Roster: base, PlayerID: "b",
			To: roster.Destination{Status: ir.StatusActive, Slot: ir.SlotID{Position: "C", Index: 0}},
		})
		require.NoError(t, err)
		assert.Equal(t, ir.StatusActive, res.Record.RosterStatus)
		assert.Equal(t, slotPtr("C_0"), res.Record.RosterPosition)
		assert.Equal(t, int64(3), res.Record.Salary)
		assert.Equal(t, int64(1), res.Record.Seq)
		require.Len(t, c.calls, 1)
	})

	t.Run("lateral move frees its own slot", func(t *testing.T) {
		e := newTestEngine(&fakeCommitter{})
		res, err := e.Move(context.Background(), MoveRequest{
			TeamID: "team-1", Schema: leagueSchema(), Roster: base, PlayerID: "a",
			To: roster.Destination{Status: ir.StatusActive, Slot: ir.SlotID{Position: "MI", Index: 0}},
		})
		require.NoError(t, err)
		assert.Equal(t, slotPtr("MI_0"), res.Record.RosterPosition)
		require.Len(t, res.Warnings, 1)
		assert.Equal(t, validator.WarnSubOptimal, res.Warnings[0].Code)
	})

	t.Run("occupied slot is rejected", func(t *testing.T) {
		c := &fakeCommitter{}
		e := newTestEngine(c)
		_, err := e.Move(context.Background(), MoveRequest{
			TeamID: "team-1", Schema: leagueSchema(), Roster: base, PlayerID: "b",
			To: roster.Destination{Status: ir.StatusActive, Slot: ir.SlotID{Position: "UTIL", Index: 0}},
		})
		require.NoError(t, err, "UTIL_0 is open")

		occupied := append([]ir.RosterEntry{{Player: player("u", "1B", "1B"), Status: ir.StatusActive, Position: "UTIL_0"}}, base...)
		_, err = e.Move(context.Background(), MoveRequest{
			TeamID: "team-1", Schema: leagueSchema(), Roster: occupied, PlayerID: "b",
			To: roster.Destination{Status: ir.StatusActive, Slot: ir.SlotID{Position: "UTIL", Index: 0}},
		})
		require.Error(t, err)
		assert.True(t, IsRejected(err))
		var re *RejectedError
		require.ErrorAs(t, err, &re)
		assert.NotEmpty(t, re.Result.Errors)
		assert.Len(t, c.calls, 1)
	})

	t.Run("minors call-up to bench starts contract", func(t *testing.T) {
		e := newTestEngine(&fakeCommitter{})
		_, err := e.Move(context.Background(), MoveRequest{
			TeamID: "team-1", Schema: leagueSchema(), Roster: base[:1], PlayerID: "a",
			To: roster.Destination{Status: ir.StatusBench},
		})
		require.NoError(t, err)

		res, err := e.Move(context.Background(), MoveRequest{
			TeamID: "team-1", Schema: leagueSchema(), Roster: base[2:], PlayerID: "m",
			To: roster.Destination{Status: ir.StatusBench},
		})
		require.NoError(t, err)
		assert.True(t, res.Record.StartContract)
		assert.Empty(t, res.Warnings)
	})

	t.Run("direct call-up needs policy", func(t *testing.T) {
		to := roster.Destination{Status: ir.StatusActive, Slot: ir.SlotID{Position: "C", Index: 0}}
		req := MoveRequest{TeamID: "team-1", Schema: leagueSchema(), Roster: base, PlayerID: "m", To: to}

		_, err := newTestEngine(&fakeCommitter{}).Move(context.Background(), req)
		assert.True(t, roster.IsTransitionError(err))

		e := newTestEngine(&fakeCommitter{}, WithPolicy(roster.Policy{AllowDirectCallUp: true}))
		res, err := e.Move(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, ir.StatusActive, res.Record.RosterStatus)
	})

	t.Run("disabled list capacity", func(t *testing.T) {
		onDL := append([]ir.RosterEntry{{Player: player("d", "C"), Status: ir.StatusDL}}, base...)
		_, err := newTestEngine(&fakeCommitter{}).Move(context.Background(), MoveRequest{
			TeamID: "team-1", Schema: leagueSchema(), Roster: onDL, PlayerID: "b",
			To: roster.Destination{Status: ir.StatusDL},
		})
		require.Error(t, err)
		var re *RejectedError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "DL", re.Result.Errors[0].Slot)
		assert.Equal(t, validator.ErrOverCapacity, re.Result.Errors[0].Code)
	})

	t.Run("unknown player", func(t *testing.T) {
		_, err := newTestEngine(&fakeCommitter{}).Move(context.Background(), MoveRequest{
			TeamID: "team-1", Schema: leagueSchema(), Roster: base, PlayerID: "zzz",
			To: roster.Destination{Status: ir.StatusBench},
		})
		var nr *NotRosteredError
		require.ErrorAs(t, err, &nr)
		assert.Equal(t, "zzz", nr.PlayerID)
	})

	t.Run("commit error is wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		c := &fakeCommitter{failFor: map[string]error{"b": boom}}
		_, err := newTestEngine(c).Move(context.Background(), MoveRequest{
			TeamID: "team-1", Schema: leagueSchema(), Roster: base, PlayerID: "b",
			To: roster.Destination{Status: ir.StatusDL},
		})
		assert.ErrorIs(t, err, boom)
	})
}

func TestDrop(t *testing.T) {
	c := &fakeCommitter{}
	e := New(c, WithClock(NewClockAt(41)))
	entries := []ir.RosterEntry{{Player: player("a", "SS"), Status: ir.StatusDL, Salary: 4}}

	rec, err := e.Drop(context.Background(), DropRequest{TeamID: "team-1", Roster: entries, PlayerID: "a"})
	require.NoError(t, err)
	assert.Equal(t, ir.StatusRemoved, rec.RosterStatus)
	assert.Equal(t, int64(42), rec.Seq)
	assert.Nil(t, rec.RosterPosition)

	_, err = e.Drop(context.Background(), DropRequest{Roster: entries, PlayerID: "a"})
	assert.ErrorIs(t, err, ErrMissingTeam)

	_, err = e.Drop(context.Background(), DropRequest{TeamID: "team-1", Roster: entries, PlayerID: "b"})
	var nr *NotRosteredError
	assert.ErrorAs(t, err, &nr)
}
