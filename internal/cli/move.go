package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/lineup/internal/engine"
	"github.com/roach88/lineup/internal/roster"
)

// NewMoveCommand creates the move command.
func NewMoveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <league.cue> <player-id> <destination>",
		Short: "Move a rostered player to another slot or category",
		Long: `Move a committed player. The destination is a slot id ("OF_1"),
BN, DL or MINORS.

The move must be a legal roster transition (active <-> bench, bench <-> DL,
minors -> bench, and minors -> active with --allow-direct-callup) and the
destination must have room once the player has left their current spot.

Example:
  lineup move league.cue p42 SS_0 --db lineup.db --team t1`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMove(rootOpts, args[0], args[1], args[2], cmd)
		},
	}
	return cmd
}

func runMove(opts *RootOptions, leaguePath, playerID, dest string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := commandContext(cmd)

	schema, err := LoadLeague(leaguePath)
	if err != nil {
		return f.CommandError(err)
	}
	to, err := roster.ParseDestination(dest)
	if err != nil {
		return f.CommandError(&LoadError{Code: ErrCodeInvalid, Message: err.Error()})
	}

	st, err := openStore(opts)
	if err != nil {
		return f.CommandError(err)
	}
	defer st.Close()

	entries, err := st.LoadRoster(ctx, opts.Team)
	if err != nil {
		return f.CommandError(&LoadError{Code: ErrCodeStoreFailed, Message: err.Error()})
	}
	eng, err := newEngine(ctx, opts, st, nil)
	if err != nil {
		return f.CommandError(err)
	}

	result, err := eng.Move(ctx, engine.MoveRequest{
		TeamID:   opts.Team,
		Schema:   *schema,
		Roster:   entries,
		PlayerID: playerID,
		To:       to,
	})
	if err != nil {
		return reportRosterError(f, err)
	}

	return f.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %s -> %s (seq %d)\n", playerID, to, result.Record.Seq)
		for _, warn := range result.Warnings {
			fmt.Fprintf(w, "⚠ %s\n", warn.Error())
		}
	})
}

// reportRosterError maps move and drop failures onto exit codes: domain
// refusals exit 1, everything else is a command error.
func reportRosterError(f *OutputFormatter, err error) error {
	var rejected *engine.RejectedError
	if errors.As(err, &rejected) {
		return f.Failure(ErrCodeRejected, err.Error(), rejected.Result, func(w io.Writer) {
			for _, e := range rejected.Result.Errors {
				fmt.Fprintf(w, "✗ %s\n", e.Error())
			}
		})
	}
	var notRostered *engine.NotRosteredError
	if roster.IsTransitionError(err) || errors.As(err, &notRostered) {
		return f.Failure(ErrCodeRejected, err.Error(), nil, func(w io.Writer) {
			fmt.Fprintf(w, "✗ %s\n", err.Error())
		})
	}
	return f.CommandError(&LoadError{Code: ErrCodeStoreFailed, Message: err.Error()})
}
