// Package metrics counts what the engine decides and commits.
package metrics

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/roach88/lineup/internal/ir"
)

const namespace = "lineup"

// Commit outcomes.
const (
	OutcomeCommitted = "committed"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// Recorder owns a private registry so several engines in one process (and
// tests) never collide on the default registerer.
type Recorder struct {
	registry     *prometheus.Registry
	proposals    *prometheus.CounterVec
	unassigned   *prometheus.CounterVec
	commits      *prometheus.CounterVec
	diagnostics  *prometheus.CounterVec
	transitions  *prometheus.CounterVec
	batchSeconds prometheus.Histogram
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		proposals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proposals_total",
			Help:      "Proposals produced by the planner.",
		}, []string{LabelType, LabelTier}),
		unassigned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unassigned_total",
			Help:      "Candidates left without a proposal.",
		}, []string{LabelReason}),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commits_total",
			Help:      "Per-player commit outcomes.",
		}, []string{LabelOutcome}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Roster data inconsistencies seen while computing capacity.",
		}, []string{LabelCode}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Committed roster status transitions.",
		}, []string{LabelFrom, LabelTo}),
		batchSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time of AddPlayers calls.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
	}
	r.registry.MustRegister(r.proposals, r.unassigned, r.commits, r.diagnostics, r.transitions, r.batchSeconds)
	return r
}

// Registry exposes the collectors, e.g. for promhttp.HandlerFor.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// RecordProposal counts a planned proposal by assignment type and tier.
func (r *Recorder) RecordProposal(p ir.Proposal) {
	if r == nil {
		return
	}
	r.proposals.WithLabelValues(string(p.Type), strconv.Itoa(p.Tier)).Inc()
}

// RecordUnassigned counts a candidate that got no proposal.
func (r *Recorder) RecordUnassigned(reason string) {
	if r == nil {
		return
	}
	r.unassigned.WithLabelValues(reason).Inc()
}

// RecordCommit counts one per-player outcome.
func (r *Recorder) RecordCommit(outcome string) {
	if r == nil {
		return
	}
	r.commits.WithLabelValues(outcome).Inc()
}

func (r *Recorder) RecordDiagnostic(d ir.Diagnostic) {
	if r == nil {
		return
	}
	r.diagnostics.WithLabelValues(d.Code).Inc()
}

// RecordTransition counts a committed status change. Acquisitions use an
// empty from.
func (r *Recorder) RecordTransition(from, to ir.RosterStatus) {
	if r == nil {
		return
	}
	if from == "" {
		from = "acquired"
	}
	r.transitions.WithLabelValues(string(from), string(to)).Inc()
}

func (r *Recorder) RecordBatch(d time.Duration) {
	if r == nil {
		return
	}
	r.batchSeconds.Observe(d.Seconds())
}

// WriteText dumps every collected family in the Prometheus text format.
func (r *Recorder) WriteText(w io.Writer) error {
	if r == nil {
		return nil
	}
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
