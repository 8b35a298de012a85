package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/lineup/internal/capacity"
	"github.com/roach88/lineup/internal/ir"
)

// CapacityResult is the capacity command's payload. Hash fingerprints the
// tallies so two reads can be compared cheaply.
type CapacityResult struct {
	Snapshot ir.CapacitySnapshot `json:"snapshot"`
	Hash     string              `json:"hash"`
}

// CapacityOptions holds flags for the capacity command.
type CapacityOptions struct {
	*RootOptions
	Roster string // roster YAML; overrides --db
}

// NewCapacityCommand creates the capacity command.
func NewCapacityCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CapacityOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "capacity <league.cue>",
		Short: "Show per-category slot usage",
		Long: `Compute the capacity snapshot for a roster.

The roster comes from --roster, or from the team's committed roster when
--db and --team are set. Data inconsistencies are reported as diagnostics
and never fail the command.

Examples:
  lineup capacity league.cue --roster roster.yaml
  lineup capacity league.cue --db lineup.db --team t1 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapacity(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Roster, "roster", "", "roster YAML file")
	return cmd
}

func runCapacity(opts *CapacityOptions, leaguePath string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	schema, err := LoadLeague(leaguePath)
	if err != nil {
		return f.CommandError(err)
	}
	entries, err := loadRoster(commandContext(cmd), opts.RootOptions, opts.Roster)
	if err != nil {
		return f.CommandError(err)
	}
	f.VerboseLog("Loaded %d roster entries", len(entries))

	snap := capacity.Compute(*schema, entries)
	logDiagnostics(opts.RootOptions, snap.Diagnostics)

	hash, err := ir.SnapshotHash(snap)
	if err != nil {
		return f.CommandError(err)
	}
	result := CapacityResult{Snapshot: snap, Hash: hash}
	return f.Success(result, func(w io.Writer) {
		renderSnapshot(w, snap)
		fmt.Fprintf(w, "snapshot %s\n", hash[:12])
	})
}

func renderSnapshot(w io.Writer, snap ir.CapacitySnapshot) {
	fmt.Fprintf(w, "%-8s %5s %5s %5s\n", "SLOT", "USED", "MAX", "OPEN")
	for _, p := range snap.Positions {
		fmt.Fprintf(w, "%-8s %5d %5d %5d\n", p.Code, p.Used, p.Max, p.Available())
	}
	rows := []struct {
		name string
		c    ir.Capacity
	}{
		{ir.TargetBench, snap.Bench},
		{"DL", snap.DisabledList},
		{ir.TargetMinors, snap.Minors},
		{"ROSTER", snap.Roster},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%-8s %5d %5d %5d\n", r.name, r.c.Used, r.c.Max, r.c.Available())
	}
	renderDiagnostics(w, snap.Diagnostics)
}

func renderDiagnostics(w io.Writer, diags []ir.Diagnostic) {
	for _, d := range diags {
		if d.PlayerID != "" {
			fmt.Fprintf(w, "! [%s] %s: %s\n", d.Code, d.PlayerID, d.Message)
			continue
		}
		fmt.Fprintf(w, "! [%s] %s\n", d.Code, d.Message)
	}
}

func logDiagnostics(opts *RootOptions, diags []ir.Diagnostic) {
	log := opts.Logger()
	for _, d := range diags {
		log.Warn("roster data inconsistency", "code", d.Code, "player_id", d.PlayerID, "message", d.Message)
		opts.recorder.RecordDiagnostic(d)
	}
}
