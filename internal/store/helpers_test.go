package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/lineup/internal/ir"
)

// createTestStore opens a store in a per-test temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testPlayer(id, primary string, eligible ...string) ir.Player {
	return ir.Player{ID: id, Name: "Player " + id, Primary: primary, Eligible: eligible}
}

func strPtr(s string) *string { return &s }
