package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "dbterd"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg         *prom.Registry
	runDuration prom.Histogram
	runOutcomes *prom.CounterVec
	emitted     *prom.CounterVec
	skipped     *prom.CounterVec
	lastSuccess prom.Gauge
}

// NewPrometheusRecorder constructs the run metrics and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of generation runs",
			Buckets:   prom.DefBuckets,
		}),
		runOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Generation runs by outcome",
		}, []string{"outcome"}),
		emitted: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "emitted_total",
			Help:      "Emitted DBML entities by kind",
		}, []string{"kind"}),
		skipped: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_total",
			Help:      "Skipped catalog tables and relationships tests",
		}, []string{"kind"}),
		lastSuccess: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		}),
	}
	reg.MustRegister(pr.runDuration, pr.runOutcomes, pr.emitted, pr.skipped, pr.lastSuccess)
	return pr
}

func (p *PrometheusRecorder) ObserveRun(outcome Outcome, d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
	p.runOutcomes.WithLabelValues(string(outcome)).Inc()
	if outcome == OutcomeSuccess {
		p.lastSuccess.SetToCurrentTime()
	}
}

func (p *PrometheusRecorder) AddEmitted(tables, columns, relationships int) {
	if p == nil {
		return
	}
	p.emitted.WithLabelValues("table").Add(float64(tables))
	p.emitted.WithLabelValues("column").Add(float64(columns))
	p.emitted.WithLabelValues("relationship").Add(float64(relationships))
}

func (p *PrometheusRecorder) AddSkipped(kind string, n int) {
	if p == nil {
		return
	}
	p.skipped.WithLabelValues(kind).Add(float64(n))
}

// WriteTextfile writes every registered metric to path in the text
// exposition format, for the node exporter textfile collector.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
