package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/lineup/internal/engine"
	"github.com/roach88/lineup/internal/roster"
	"github.com/roach88/lineup/internal/store"
)

// CommitOptions holds flags for the commit command.
type CommitOptions struct {
	*RootOptions

	// BatchIDs allows overriding the batch id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	BatchIDs engine.BatchIDGenerator
}

// NewCommitCommand creates the commit command.
func NewCommitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CommitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "commit <league.cue> <candidates.yaml>",
		Short: "Plan, validate and commit a batch",
		Long: `Add a batch of candidates to a team's committed roster.

Each placed player is committed independently: one player's failure never
undoes another's commit. Replaying the same batch is safe; already
rostered players are turned away before planning.

Exit codes:
  0 - Every candidate was committed
  1 - One or more candidates were not committed
  2 - Command error

Example:
  lineup commit league.cue candidates.yaml --db lineup.db --team t1`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommit(opts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runCommit(opts *CommitOptions, leaguePath, candidatesPath string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := commandContext(cmd)

	schema, err := LoadLeague(leaguePath)
	if err != nil {
		return f.CommandError(err)
	}
	candidates, overrides, err := LoadCandidatesFile(candidatesPath)
	if err != nil {
		return f.CommandError(err)
	}

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return f.CommandError(err)
	}
	defer st.Close()

	entries, err := st.LoadRoster(ctx, opts.Team)
	if err != nil {
		return f.CommandError(&LoadError{Code: ErrCodeStoreFailed, Message: err.Error()})
	}

	eng, err := newEngine(ctx, opts.RootOptions, st, opts.BatchIDs)
	if err != nil {
		return f.CommandError(err)
	}
	result, err := eng.AddPlayers(ctx, engine.BatchRequest{
		TeamID:     opts.Team,
		Schema:     *schema,
		Roster:     entries,
		Candidates: candidates,
		Overrides:  overrides,
	})
	if err != nil {
		code := ErrCodeGeneric
		if engine.IsBatchSizeError(err) {
			code = ErrCodeInvalid
		}
		return f.CommandError(&LoadError{Code: code, Message: err.Error()})
	}

	render := func(w io.Writer) { renderBatch(w, result) }
	if len(result.Failed) > 0 {
		return f.Failure(ErrCodeNotCommitted,
			fmt.Sprintf("%d of %d player(s) not committed", len(result.Failed), len(candidates)),
			result, render)
	}
	return f.Success(result, render)
}

// newEngine builds an engine over the store whose clock resumes after the
// highest persisted seq.
func newEngine(ctx context.Context, opts *RootOptions, st *store.Store, ids engine.BatchIDGenerator) (*engine.Engine, error) {
	seq, err := st.MaxSeq(ctx)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeStoreFailed, Message: err.Error()}
	}
	engineOpts := []engine.EngineOption{
		engine.WithClock(engine.NewClockAt(seq)),
		engine.WithMaxBatchSize(opts.MaxBatch),
		engine.WithPolicy(roster.Policy{AllowDirectCallUp: opts.AllowDirectCallUp}),
		engine.WithMetrics(opts.recorder),
		engine.WithLogger(opts.Logger()),
	}
	if ids != nil {
		engineOpts = append(engineOpts, engine.WithBatchIDGenerator(ids))
	}
	return engine.New(st, engineOpts...), nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func renderBatch(w io.Writer, result *engine.BatchResult) {
	fmt.Fprintf(w, "Batch %s\n", result.BatchID)
	for _, out := range result.Successful {
		p := out.Proposal
		fmt.Fprintf(w, "✓ %s -> %s (tier %d, seq %d)\n", out.PlayerID, p.Target(), p.Tier, out.Record.Seq)
	}
	for _, out := range result.Failed {
		fmt.Fprintf(w, "✗ %s: %s\n", out.PlayerID, out.Reason)
		for _, issue := range out.Errors {
			fmt.Fprintf(w, "    %s\n", issue.Error())
		}
	}
	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "⚠ %s\n", warn.Error())
	}
	renderDiagnostics(w, result.Diagnostics)
	fmt.Fprintf(w, "\n%d committed, %d not committed\n", len(result.Successful), len(result.Failed))
}
