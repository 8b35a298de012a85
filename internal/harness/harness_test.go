package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "assertion failures: %v", result.Errors)
		})
	}
}

func TestRun_IsDeterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/scenario_c_catcher_batch.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, first.Trace, second.Trace)
	assert.Equal(t, first.Issues, second.Issues)
	assert.Equal(t, first.Roster, second.Roster)
}

func TestRun_FinalRoster(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/scenario_c_catcher_batch.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	ids := make([]string, 0, len(result.Roster))
	for _, e := range result.Roster {
		ids = append(ids, e.Player.ID)
	}
	// Imported entries carry seq 0, commits follow in order.
	assert.Equal(t, []string{"c1", "k1", "k2", "k3"}, ids)
	assert.Equal(t, 3, result.Committed())
}

func TestRun_FailingAssertionsReported(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/scenario_a_bench.yaml")
	require.NoError(t, err)

	count := 2
	scenario.Assertions = []Assertion{
		{Type: AssertAssigned, Player: "c2", Target: "C_0"},
		{Type: AssertCommittedCount, Count: &count},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "assigned to BN, expected C_0")
	assert.Contains(t, result.Errors[1], "expected 2 committed players, got 1")
}

func TestRun_BadLeague(t *testing.T) {
	scenario := &Scenario{
		Name:   "bad",
		League: filepath.Join(t.TempDir(), "missing.cue"),
	}
	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile league")
}
