package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/lineup/internal/engine"
)

// NewDropCommand creates the drop command.
func NewDropCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drop <player-id>",
		Short: "Release a player from the team",
		Long: `Commit a removal record for a rostered player. The player's slot is
free for the next plan.

Example:
  lineup drop p42 --db lineup.db --team t1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDrop(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runDrop(opts *RootOptions, playerID string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := commandContext(cmd)

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

	rec, err := eng.Drop(ctx, engine.DropRequest{TeamID: opts.Team, Roster: entries, PlayerID: playerID})
	if err != nil {
		return reportRosterError(f, err)
	}
	return f.Success(rec, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %s dropped (seq %d)\n", playerID, rec.Seq)
	})
}
