package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/lineup/internal/ir"
)

// Scenario defines one end-to-end roster scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario demonstrates.
	Description string `yaml:"description"`

	// League is the path to a CUE league file, relative to the scenario file.
	League string `yaml:"league"`

	// Team is the acting team id. Defaults to "test-team".
	Team string `yaml:"team,omitempty"`

	// BatchPrefix seeds the sequential batch ids ("{prefix}-1", ...).
	BatchPrefix string `yaml:"batch_prefix,omitempty"`

	// AllowDirectCallUp enables minors -> active moves.
	AllowDirectCallUp bool `yaml:"allow_direct_call_up,omitempty"`

	// Roster is the team's starting roster.
	Roster []ir.RosterEntry `yaml:"roster,omitempty"`

	// Steps run in order; each sees the roster the previous one committed.
	Steps []Step `yaml:"steps"`

	// Assertions are checked after all steps.
	Assertions []Assertion `yaml:"assertions"`
}

// Step holds exactly one operation.
type Step struct {
	Add  *AddStep  `yaml:"add,omitempty"`
	Move *MoveStep `yaml:"move,omitempty"`
	Drop *DropStep `yaml:"drop,omitempty"`
}

// AddStep plans and commits a batch. Overrides maps a player id to a target
// string ("SS_0", "BN", "MINORS").
type AddStep struct {
	Candidates []ir.Candidate    `yaml:"candidates"`
	Overrides  map[string]string `yaml:"overrides,omitempty"`
}

// MoveStep moves a rostered player. To accepts a slot id, BN, DL or MINORS.
type MoveStep struct {
	Player string `yaml:"player"`
	To     string `yaml:"to"`
}

type DropStep struct {
	Player string `yaml:"player"`
}

// Assertion validates the trace or the final roster.
type Assertion struct {
	// Type specifies the assertion type:
	// - "assigned": player was committed, optionally to Target at Tier
	// - "unassigned": player was not committed, optionally for Reason
	// - "issue": an error, warning or diagnostic with Code was raised
	// - "roster": player's final status (and Position when set)
	// - "committed_count": exactly Count players were committed
	Type string `yaml:"type"`

	Player   string `yaml:"player,omitempty"`
	Target   string `yaml:"target,omitempty"`
	Tier     int    `yaml:"tier,omitempty"`
	Reason   string `yaml:"reason,omitempty"`
	Code     string `yaml:"code,omitempty"`
	Status   string `yaml:"status,omitempty"`
	Position string `yaml:"position,omitempty"`
	Count    *int   `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertAssigned       = "assigned"
	AssertUnassigned     = "unassigned"
	AssertIssue          = "issue"
	AssertRoster         = "roster"
	AssertCommittedCount = "committed_count"
)

// LoadScenario reads and parses a scenario YAML file, resolving the league
// path relative to the file. Unknown fields are rejected so typos surface.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.League != "" && !filepath.IsAbs(scenario.League) {
		scenario.League = filepath.Join(filepath.Dir(path), scenario.League)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.League == "" {
		return fmt.Errorf("league is required")
	}
	if _, err := os.Stat(s.League); os.IsNotExist(err) {
		return fmt.Errorf("league file not found: %s", s.League)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step Step) error {
	n := 0
	if step.Add != nil {
		n++
		if len(step.Add.Candidates) == 0 {
			return fmt.Errorf("steps[%d].add: candidates is required", index)
		}
		for j, c := range step.Add.Candidates {
			if c.Player.ID == "" {
				return fmt.Errorf("steps[%d].add.candidates[%d]: player id is required", index, j)
			}
		}
	}
	if step.Move != nil {
		n++
		if step.Move.Player == "" || step.Move.To == "" {
			return fmt.Errorf("steps[%d].move: player and to are required", index)
		}
	}
	if step.Drop != nil {
		n++
		if step.Drop.Player == "" {
			return fmt.Errorf("steps[%d].drop: player is required", index)
		}
	}
	if n != 1 {
		return fmt.Errorf("steps[%d]: exactly one of add, move or drop is required", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertAssigned, AssertUnassigned:
		if a.Player == "" {
			return fmt.Errorf("assertions[%d]: player is required for %s", index, a.Type)
		}
	case AssertIssue:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for issue", index)
		}
	case AssertRoster:
		if a.Player == "" || a.Status == "" {
			return fmt.Errorf("assertions[%d]: player and status are required for roster", index)
		}
	case AssertCommittedCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for committed_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
