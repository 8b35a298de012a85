package ir

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlotID(t *testing.T) {
	tests := []struct {
		raw  string
		want SlotID
	}{
		{"OF_1", SlotID{Position: "OF", Index: 1}},
		{"1B_0", SlotID{Position: "1B", Index: 0}},
		{" util_2 ", SlotID{Position: "UTIL", Index: 2}},
		{"SP_10", SlotID{Position: "SP", Index: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseSlotID(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSlotID_Malformed(t *testing.T) {
	for _, raw := range []string{"", "OF", "_1", "OF_x", "OF_-1", "OF_+1", "C_+0", "OF_", "   "} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseSlotID(raw)
			require.Error(t, err)

			var parseErr *SlotParseError
			assert.True(t, errors.As(err, &parseErr))
			assert.Equal(t, raw, parseErr.Raw)
		})
	}
}

func TestSlotID_StringRoundTrip(t *testing.T) {
	slot := SlotID{Position: "OF", Index: 2}
	assert.Equal(t, "OF_2", slot.String())

	parsed, err := ParseSlotID(slot.String())
	require.NoError(t, err)
	assert.Equal(t, slot, parsed)
}

func TestSlotID_JSONUsesPersistedForm(t *testing.T) {
	p := Proposal{Type: AssignActive, Slot: &SlotID{Position: "MI", Index: 0}}

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"target_slot":"MI_0"`)

	var decoded Proposal
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NotNil(t, decoded.Slot)
	assert.Equal(t, *p.Slot, *decoded.Slot)
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		raw      string
		wantType AssignmentType
		wantName string
	}{
		{"BN", AssignBench, "BN"},
		{"bench", AssignBench, "BN"},
		{"MINORS", AssignMinors, "MINORS"},
		{"na", AssignMinors, "MINORS"},
		{"C_0", AssignActive, "C_0"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseTarget(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantName, got.String())
		})
	}

	_, err := ParseTarget("nowhere")
	assert.Error(t, err)
}
