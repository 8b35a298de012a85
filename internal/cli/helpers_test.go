package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const catcherCandidates = `
candidates:
  - player: {id: c1, primary: C, eligible: [C]}
    price: 10
    contract_years: 2
  - player: {id: c2, primary: C, eligible: [C]}
    price: 4
    contract_years: 1
`

// leaguePath points at the shared league fixtures.
func leaguePath(name string) string {
	return filepath.Join("..", "harness", "testdata", "leagues", name+".cue")
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeCandidates(t *testing.T, content string) string {
	t.Helper()
	return writeFile(t, "candidates.yaml", content)
}

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	return writeFile(t, "roster.yaml", content)
}

// dbOptions returns options bound to a fresh database for team t1.
func dbOptions(t *testing.T, format string) *RootOptions {
	t.Helper()
	return &RootOptions{
		Format:   format,
		DB:       filepath.Join(t.TempDir(), "lineup.db"),
		Team:     "t1",
		MaxBatch: 100,
	}
}

// execute runs a subcommand and returns stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
