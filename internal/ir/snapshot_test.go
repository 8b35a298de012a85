package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() CapacitySnapshot {
	return CapacitySnapshot{
		Positions: []PositionCapacity{
			{Code: "C", Capacity: Capacity{Max: 1, Used: 1}, Occupied: []int{0}},
			{Code: "OF", Capacity: Capacity{Max: 3, Used: 1}, Occupied: []int{1}},
		},
		Bench:  Capacity{Max: 2},
		Minors: Capacity{Max: 1},
		Roster: Capacity{Max: 8, Used: 2},
	}
}

func TestCapacityAvailableMayBeNegative(t *testing.T) {
	c := Capacity{Max: 1, Used: 3}
	assert.Equal(t, -2, c.Available())
}

func TestPositionCapacityFreeIndex(t *testing.T) {
	snap := testSnapshot()

	of, ok := snap.Position("of")
	require.True(t, ok)
	assert.Equal(t, 0, of.FreeIndex())

	c, ok := snap.Position("C")
	require.True(t, ok)
	assert.Equal(t, -1, c.FreeIndex())
}

func TestSnapshotClaimAndClone(t *testing.T) {
	snap := testSnapshot()
	work := snap.Clone()

	work.Claim(Proposal{Type: AssignActive, Slot: &SlotID{Position: "OF", Index: 0}})
	work.Claim(Proposal{Type: AssignBench})
	work.Claim(Proposal{Type: AssignMinors})

	of, _ := work.Position("OF")
	assert.Equal(t, 2, of.Used)
	assert.Equal(t, []int{0, 1}, of.Occupied)
	assert.Equal(t, 1, work.Bench.Used)
	assert.Equal(t, 1, work.Minors.Used)
	assert.Equal(t, 5, work.Roster.Used)

	// The original is untouched.
	orig, _ := snap.Position("OF")
	assert.Equal(t, 1, orig.Used)
	assert.Equal(t, []int{1}, orig.Occupied)
	assert.Equal(t, 0, snap.Bench.Used)
	assert.Equal(t, 2, snap.Roster.Used)
}

func TestSnapshotClaimIgnoresUnknownSlot(t *testing.T) {
	snap := testSnapshot()
	snap.Claim(Proposal{Type: AssignActive, Slot: &SlotID{Position: "SS", Index: 0}})
	snap.Claim(Proposal{Type: AssignActive})
	assert.Equal(t, 2, snap.Roster.Used)
}
