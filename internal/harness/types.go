package harness

import "github.com/roach88/lineup/internal/ir"

// Trace outcomes.
const (
	OutcomeCommitted = "committed"
	OutcomeFailed    = "failed"
)

// TraceEvent is what happened to one player in one step.
type TraceEvent struct {
	Step     int              `json:"step"`
	Op       string           `json:"op"`
	PlayerID string           `json:"player_id"`
	Outcome  string           `json:"outcome"`
	Target   string           `json:"target,omitempty"`
	Tier     int              `json:"tier,omitempty"`
	Reason   string           `json:"reason,omitempty"`
	Codes    []string         `json:"codes,omitempty"`
	Record   *ir.CommitRecord `json:"record,omitempty"`
}

// IssueEvent is a non-blocking finding: a validator warning or a roster
// diagnostic.
type IssueEvent struct {
	Step     int    `json:"step"`
	Code     string `json:"code"`
	PlayerID string `json:"player_id,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	Trace  []TraceEvent     `json:"trace"`
	Issues []IssueEvent     `json:"issues"`
	Roster []ir.RosterEntry `json:"roster"`

	// Errors contains assertion failure messages.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Issues: []IssueEvent{},
		Roster: []ir.RosterEntry{},
		Errors: []string{},
	}
}

// AddError records an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Committed counts committed trace events.
func (r *Result) Committed() int {
	n := 0
	for _, ev := range r.Trace {
		if ev.Outcome == OutcomeCommitted {
			n++
		}
	}
	return n
}
