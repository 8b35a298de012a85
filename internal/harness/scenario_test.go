package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lineup/internal/ir"
)

// writeLeague creates a minimal league file next to the scenario.
func writeLeague(t *testing.T, dir string) {
	t.Helper()
	content := "league: {\n\tpositions: {C: 1}\n\tbench: 1\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "league.cue"), []byte(content), 0644))
}

func writeScenario(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	dir := t.TempDir()
	writeLeague(t, dir)
	path := writeScenario(t, dir, `
name: test_scenario
description: "Test scenario for validation"
league: league.cue
roster:
  - player: {id: c1, primary: C}
    status: active
    position: C_0
steps:
  - add:
      candidates:
        - player: {id: c2, primary: C, eligible: [C]}
          price: 3
          contract_years: 2
      overrides:
        c2: BN
  - move: {player: c1, to: BN}
assertions:
  - type: assigned
    player: c2
    target: BN
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, filepath.Join(dir, "league.cue"), scenario.League)
	require.Len(t, scenario.Roster, 1)
	assert.Equal(t, ir.StatusActive, scenario.Roster[0].Status)
	assert.Equal(t, "C_0", scenario.Roster[0].Position)
	require.Len(t, scenario.Steps, 2)
	require.NotNil(t, scenario.Steps[0].Add)
	assert.Equal(t, int64(3), scenario.Steps[0].Add.Candidates[0].Price)
	assert.Equal(t, "BN", scenario.Steps[0].Add.Overrides["c2"])
	require.NotNil(t, scenario.Steps[1].Move)
	assert.Equal(t, "c1", scenario.Steps[1].Move.Player)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	dir := t.TempDir()
	writeLeague(t, dir)
	path := writeScenario(t, dir, `
name: typo
description: "unknown key"
league: league.cue
stepz: []
steps:
  - drop: {player: c1}
assertions:
  - type: committed_count
    count: 0
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing name",
			content: `
description: d
league: league.cue
steps: [{drop: {player: a}}]
assertions: [{type: committed_count, count: 0}]
`,
			wantErr: "name is required",
		},
		{
			name: "missing league file",
			content: `
name: n
description: d
league: nowhere.cue
steps: [{drop: {player: a}}]
assertions: [{type: committed_count, count: 0}]
`,
			wantErr: "league file not found",
		},
		{
			name: "two operations in one step",
			content: `
name: n
description: d
league: league.cue
steps: [{drop: {player: a}, move: {player: a, to: BN}}]
assertions: [{type: committed_count, count: 0}]
`,
			wantErr: "exactly one of add, move or drop",
		},
		{
			name: "candidate without id",
			content: `
name: n
description: d
league: league.cue
steps: [{add: {candidates: [{price: 1}]}}]
assertions: [{type: committed_count, count: 0}]
`,
			wantErr: "player id is required",
		},
		{
			name: "unknown assertion type",
			content: `
name: n
description: d
league: league.cue
steps: [{drop: {player: a}}]
assertions: [{type: trace_contains}]
`,
			wantErr: "unknown assertion type",
		},
		{
			name: "committed_count without count",
			content: `
name: n
description: d
league: league.cue
steps: [{drop: {player: a}}]
assertions: [{type: committed_count}]
`,
			wantErr: "non-negative count is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeLeague(t, dir)
			_, err := LoadScenario(writeScenario(t, dir, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
