package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <roster.yaml>",
		Short: "Load a baseline roster into the database",
		Long: `Write a roster file as the team's baseline. Imported entries are not
logged as commits and order before every later commit.

Example:
  lineup import roster.yaml --db lineup.db --team t1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runImport(opts *RootOptions, rosterPath string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	entries, err := LoadRosterFile(rosterPath)
	if err != nil {
		return f.CommandError(err)
	}
	st, err := openStore(opts)
	if err != nil {
		return f.CommandError(err)
	}
	defer st.Close()

	if err := st.Import(commandContext(cmd), opts.Team, entries); err != nil {
		return f.CommandError(&LoadError{Code: ErrCodeStoreFailed, Message: err.Error()})
	}
	opts.Logger().Info("roster imported", "team_id", opts.Team, "entries", len(entries))

	data := map[string]any{"team_id": opts.Team, "imported": len(entries)}
	return f.Success(data, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Imported %d entries for team %s\n", len(entries), opts.Team)
	})
}
