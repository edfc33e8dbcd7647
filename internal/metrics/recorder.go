// Package metrics records generation runs for Prometheus.
package metrics

import "time"

// Outcome labels a finished run.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeLoadError Outcome = "load_error"
	OutcomeFailed    Outcome = "failed"
)

// Recorder receives per-run observations. NoopRecorder is used when metrics
// are not configured.
type Recorder interface {
	ObserveRun(outcome Outcome, d time.Duration)
	AddEmitted(tables, columns, relationships int)
	AddSkipped(kind string, n int)
}

// Kinds of skipped entries.
const (
	SkippedTable        = "table"
	SkippedRelationship = "relationship"
)

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveRun(Outcome, time.Duration) {}
func (NoopRecorder) AddEmitted(int, int, int)          {}
func (NoopRecorder) AddSkipped(string, int)            {}
