package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/lineup/internal/capacity"
	"github.com/roach88/lineup/internal/ir"
	"github.com/roach88/lineup/internal/validator"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Roster string
}

// ValidationResult is the validate command's payload.
type ValidationResult struct {
	League string           `json:"league"`
	Plan   *validator.Result `json:"plan,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <league.cue> [candidates.yaml]",
		Short: "Validate a league and, optionally, a planned batch",
		Long: `Validate a CUE league file. With a candidates file, also plan the batch
and check the resulting proposals for capacity, eligibility and contract
conflicts.

Exit codes:
  0 - Valid (warnings may be present)
  1 - Proposals have blocking errors
  2 - Command error (invalid league, unreadable files, etc.)`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			candidates := ""
			if len(args) == 2 {
				candidates = args[1]
			}
			return runValidate(opts, args[0], candidates, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Roster, "roster", "", "roster YAML file")
	return cmd
}

func runValidate(opts *ValidateOptions, leaguePath, candidatesPath string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	schema, err := LoadLeague(leaguePath)
	if err != nil {
		return f.CommandError(err)
	}
	f.VerboseLog("League %q: %d position(s), roster size %d", schema.Name, len(schema.Positions), schema.MaxRosterSize())

	result := ValidationResult{League: leaguePath}
	if candidatesPath == "" {
		return f.Success(result, func(w io.Writer) {
			fmt.Fprintln(w, "✓ League valid")
		})
	}

	entries, err := loadRoster(commandContext(cmd), opts.RootOptions, opts.Roster)
	if err != nil {
		return f.CommandError(err)
	}
	candidates, overrides, err := LoadCandidatesFile(candidatesPath)
	if err != nil {
		return f.CommandError(err)
	}

	plan := planBatch(*schema, entries, candidates, overrides)
	logDiagnostics(opts.RootOptions, plan.Diagnostics)

	check := validator.Validate(plan.Proposals(), capacity.Compute(*schema, entries))
	// Rejected overrides never become proposals; their issues still block.
	for _, a := range plan.Assignments {
		check.Errors = append(check.Errors, a.Errors...)
	}
	check.Valid = len(check.Errors) == 0
	result.Plan = &check

	render := func(w io.Writer) { renderValidation(w, check, plan.Diagnostics) }
	if !check.Valid {
		return f.Failure(ErrCodeRejected, fmt.Sprintf("%d validation error(s)", len(check.Errors)), result, render)
	}
	return f.Success(result, render)
}

func renderValidation(w io.Writer, res validator.Result, diags []ir.Diagnostic) {
	for _, e := range res.Errors {
		fmt.Fprintf(w, "✗ %s\n", e.Error())
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "⚠ %s\n", warn.Error())
	}
	renderDiagnostics(w, diags)
	if res.Valid {
		fmt.Fprintln(w, "✓ Batch valid")
	}
}
