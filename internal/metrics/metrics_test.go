package metrics

import (
	"bytes"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lineup/internal/ir"
)

func TestRecorderCountsProposalsByTypeAndTier(t *testing.T) {
	rec := NewRecorder()
	rec.RecordProposal(ir.Proposal{Type: ir.AssignActive, Tier: ir.TierDirect})
	rec.RecordProposal(ir.Proposal{Type: ir.AssignActive, Tier: ir.TierDirect})
	rec.RecordProposal(ir.Proposal{Type: ir.AssignMinors, Tier: ir.TierMinors})

	assert.Equal(t, 2.0, promtest.ToFloat64(rec.proposals.WithLabelValues("active", "1")))
	assert.Equal(t, 1.0, promtest.ToFloat64(rec.proposals.WithLabelValues("minors", "4")))
}

func TestRecorderCountsOutcomes(t *testing.T) {
	rec := NewRecorder()
	rec.RecordCommit(OutcomeCommitted)
	rec.RecordCommit(OutcomeFailed)
	rec.RecordCommit(OutcomeCommitted)
	rec.RecordUnassigned("no slot available")
	rec.RecordDiagnostic(ir.Diagnostic{Code: "D004"})
	rec.RecordTransition("", ir.StatusBench)
	rec.RecordTransition(ir.StatusBench, ir.StatusActive)

	assert.Equal(t, 2.0, promtest.ToFloat64(rec.commits.WithLabelValues(OutcomeCommitted)))
	assert.Equal(t, 1.0, promtest.ToFloat64(rec.commits.WithLabelValues(OutcomeFailed)))
	assert.Equal(t, 1.0, promtest.ToFloat64(rec.unassigned.WithLabelValues("no slot available")))
	assert.Equal(t, 1.0, promtest.ToFloat64(rec.diagnostics.WithLabelValues("D004")))
	assert.Equal(t, 1.0, promtest.ToFloat64(rec.transitions.WithLabelValues("acquired", "bench")))
	assert.Equal(t, 1.0, promtest.ToFloat64(rec.transitions.WithLabelValues("bench", "active")))
}

func TestRecorderWriteText(t *testing.T) {
	rec := NewRecorder()
	rec.RecordCommit(OutcomeRejected)
	rec.RecordBatch(3 * time.Millisecond)

	var buf bytes.Buffer
	require.NoError(t, rec.WriteText(&buf))
	out := buf.String()
	assert.Contains(t, out, `lineup_commits_total{outcome="rejected"} 1`)
	assert.Contains(t, out, "lineup_batch_duration_seconds_count 1")
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder
	assert.NotPanics(t, func() {
		rec.RecordProposal(ir.Proposal{})
		rec.RecordCommit(OutcomeCommitted)
		rec.RecordUnassigned("x")
		rec.RecordDiagnostic(ir.Diagnostic{})
		rec.RecordTransition(ir.StatusActive, ir.StatusBench)
		rec.RecordBatch(time.Second)
	})
	assert.Nil(t, rec.Registry())
	assert.NoError(t, rec.WriteText(&bytes.Buffer{}))
}
