package harness

import (
	"fmt"
	"slices"

	"github.com/roach88/lineup/internal/ir"
)

// EvaluateAssertions checks every assertion and returns one message per
// failure. An empty result means the scenario passed.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if msg := evaluate(result, a); msg != "" {
			failures = append(failures, fmt.Sprintf("assertion %d (%s): %s", i, a.Type, msg))
		}
	}
	return failures
}

func evaluate(result *Result, a Assertion) string {
	switch a.Type {
	case AssertAssigned:
		return assertAssigned(result, a)
	case AssertUnassigned:
		return assertUnassigned(result, a)
	case AssertIssue:
		return assertIssue(result, a)
	case AssertRoster:
		return assertRoster(result, a)
	case AssertCommittedCount:
		if got := result.Committed(); got != *a.Count {
			return fmt.Sprintf("expected %d committed players, got %d", *a.Count, got)
		}
		return ""
	}
	return fmt.Sprintf("unknown assertion type %q", a.Type)
}

// lastAdd returns the most recent add event for a player.
func lastAdd(result *Result, playerID string) (TraceEvent, bool) {
	for i := len(result.Trace) - 1; i >= 0; i-- {
		ev := result.Trace[i]
		if ev.Op == "add" && ev.PlayerID == playerID {
			return ev, true
		}
	}
	return TraceEvent{}, false
}

func assertAssigned(result *Result, a Assertion) string {
	ev, ok := lastAdd(result, a.Player)
	if !ok {
		return fmt.Sprintf("player %s was never a candidate", a.Player)
	}
	if ev.Outcome != OutcomeCommitted {
		return fmt.Sprintf("player %s was not committed: %s", a.Player, ev.Reason)
	}
	if a.Target != "" {
		want, err := ir.ParseTarget(a.Target)
		if err != nil {
			return err.Error()
		}
		if ev.Target != want.String() {
			return fmt.Sprintf("player %s assigned to %s, expected %s", a.Player, ev.Target, want)
		}
	}
	if a.Tier != 0 && ev.Tier != a.Tier {
		return fmt.Sprintf("player %s assigned at tier %d, expected %d", a.Player, ev.Tier, a.Tier)
	}
	return ""
}

func assertUnassigned(result *Result, a Assertion) string {
	ev, ok := lastAdd(result, a.Player)
	if !ok {
		return fmt.Sprintf("player %s was never a candidate", a.Player)
	}
	if ev.Outcome != OutcomeFailed {
		return fmt.Sprintf("player %s was committed to %s", a.Player, ev.Target)
	}
	if a.Reason != "" && ev.Reason != a.Reason {
		return fmt.Sprintf("player %s unassigned for %q, expected %q", a.Player, ev.Reason, a.Reason)
	}
	return ""
}

func assertIssue(result *Result, a Assertion) string {
	for _, issue := range result.Issues {
		if issue.Code == a.Code && (a.Player == "" || issue.PlayerID == a.Player) {
			return ""
		}
	}
	for _, ev := range result.Trace {
		if slices.Contains(ev.Codes, a.Code) && (a.Player == "" || ev.PlayerID == a.Player) {
			return ""
		}
	}
	if a.Player != "" {
		return fmt.Sprintf("no %s issue raised for player %s", a.Code, a.Player)
	}
	return fmt.Sprintf("no %s issue raised", a.Code)
}

func assertRoster(result *Result, a Assertion) string {
	for _, e := range result.Roster {
		if e.Player.ID != a.Player {
			continue
		}
		if string(e.Status) != a.Status {
			return fmt.Sprintf("player %s has status %s, expected %s", a.Player, e.Status, a.Status)
		}
		if a.Position != "" && e.Position != a.Position {
			return fmt.Sprintf("player %s is at %q, expected %q", a.Player, e.Position, a.Position)
		}
		return ""
	}
	if a.Status == string(ir.StatusRemoved) {
		return ""
	}
	return fmt.Sprintf("player %s is not on the final roster", a.Player)
}
