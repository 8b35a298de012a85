package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/lineup/internal/store"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the team's commit log",
		Long: `List every commit record written for the team, in commit order.

Example:
  lineup history --db lineup.db --team t1 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(rootOpts, cmd)
		},
	}
	return cmd
}

func runHistory(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	st, err := openStore(opts)
	if err != nil {
		return f.CommandError(err)
	}
	defer st.Close()

	log, err := st.History(commandContext(cmd), opts.Team)
	if err != nil {
		return f.CommandError(&LoadError{Code: ErrCodeStoreFailed, Message: err.Error()})
	}
	return f.Success(log, func(w io.Writer) { renderHistory(w, log) })
}

func renderHistory(w io.Writer, log []store.LogEntry) {
	if len(log) == 0 {
		fmt.Fprintln(w, "No commits.")
		return
	}
	for _, le := range log {
		pos := "-"
		if le.Record.RosterPosition != nil {
			pos = *le.Record.RosterPosition
		}
		fmt.Fprintf(w, "%6d  %-12s %-8s %-8s salary=%d years=%d\n",
			le.Seq, le.PlayerID, le.Record.RosterStatus, pos, le.Record.Salary, le.Record.ContractYears)
	}
}
