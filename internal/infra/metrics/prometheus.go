// Package metrics provides a Prometheus-backed pipeline metrics recorder.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"feedstockcore/internal/core"
)

// Recorder exports per-stage run counts and durations to Prometheus.
type Recorder struct {
	registry  *prometheus.Registry
	runs      *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

var _ core.MetricsRecorder = (*Recorder)(nil)

// NewRecorder builds a recorder with its own registry so tests and multiple
// pipelines never collide on metric registration.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	r := &Recorder{
		registry: registry,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "feedstockcore",
			Subsystem: "pipeline",
			Name:      "stage_runs_total",
			Help:      "Pipeline stage executions by outcome.",
		}, []string{"stage", "result"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "feedstockcore",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage wall-clock duration.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"stage"}),
	}
	registry.MustRegister(r.runs, r.durations)
	return r
}

// Observe records one stage execution.
func (r *Recorder) Observe(_ context.Context, stage string, success bool, duration time.Duration) {
	if stage == "" {
		return
	}
	result := "success"
	if !success {
		result = "error"
	}
	r.runs.WithLabelValues(stage, result).Inc()
	r.durations.WithLabelValues(stage).Observe(duration.Seconds())
}

// Handler returns an HTTP handler exposing the recorder's registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for callers that aggregate
// several collectors onto one scrape endpoint.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }
