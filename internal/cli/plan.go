package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/lineup/internal/capacity"
	"github.com/roach88/lineup/internal/ir"
	"github.com/roach88/lineup/internal/planner"
)

// PlanOptions holds flags for the plan command.
type PlanOptions struct {
	*RootOptions
	Roster string
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plan <league.cue> <candidates.yaml>",
		Short: "Propose slots for a batch without committing",
		Long: `Plan a batch of candidates against the current capacity.

Candidates are planned in file order against a working copy of the
snapshot, so no slot is proposed twice. Players with an override are
checked at their manual target instead. Nothing is written.

Examples:
  lineup plan league.cue candidates.yaml --roster roster.yaml
  lineup plan league.cue candidates.yaml --db lineup.db --team t1`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Roster, "roster", "", "roster YAML file")
	return cmd
}

func runPlan(opts *PlanOptions, leaguePath, candidatesPath string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	schema, err := LoadLeague(leaguePath)
	if err != nil {
		return f.CommandError(err)
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
	for _, a := range plan.Assignments {
		if a.Proposal != nil {
			opts.recorder.RecordProposal(*a.Proposal)
		} else {
			opts.recorder.RecordUnassigned(a.Reason)
		}
	}

	return f.Success(plan, func(w io.Writer) { renderPlan(w, plan) })
}

// planBatch computes capacity and plans candidates with their overrides.
// Snapshot diagnostics are folded into the plan's.
func planBatch(schema ir.PositionSchema, entries []ir.RosterEntry, candidates []ir.Candidate, overrides map[string]ir.Target) planner.BatchPlan {
	snap := capacity.Compute(schema, entries)
	reqs := make([]planner.Request, len(candidates))
	for i, c := range candidates {
		reqs[i] = planner.Request{Candidate: c}
		if t, ok := overrides[c.Player.ID]; ok {
			reqs[i].Target = &t
		}
	}
	plan := planner.PlanRequests(reqs, snap)
	plan.Diagnostics = append(snap.Diagnostics, plan.Diagnostics...)
	return plan
}

func renderPlan(w io.Writer, plan planner.BatchPlan) {
	for _, a := range plan.Assignments {
		id := a.Candidate.Player.ID
		if a.Proposal == nil {
			fmt.Fprintf(w, "✗ %s: %s\n", id, a.Reason)
			for _, issue := range a.Errors {
				fmt.Fprintf(w, "    %s\n", issue.Error())
			}
			continue
		}
		p := a.Proposal
		fmt.Fprintf(w, "✓ %s -> %s (tier %d, salary %d, %d yr): %s\n",
			id, p.Target(), p.Tier, p.Salary, p.ContractYears, p.Rationale)
	}
	renderDiagnostics(w, plan.Diagnostics)
}
