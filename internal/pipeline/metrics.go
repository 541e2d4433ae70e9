package pipeline

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/joshharrison/critpath/internal/cpm"
	"github.com/joshharrison/critpath/internal/graph"
	"github.com/joshharrison/critpath/internal/task"
)

// Metrics records pipeline activity on its own registry so tests and batch
// runs never share state. A nil *Metrics records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	runs          *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	graphTasks    prometheus.Histogram
	pathDuration  prometheus.Histogram
}

// NewMetrics creates a fresh registry with every pipeline collector.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,

		// runs counts analysed sources by outcome
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "critpath_runs_total",
			Help: "Sources analysed, by result",
		}, []string{"result"}),

		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "critpath_stage_duration_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~1.6s
		}, []string{"stage"}),

		graphTasks: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "critpath_graph_tasks",
			Help:    "Number of tasks per analysed graph",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
		}),

		pathDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "critpath_path_duration",
			Help:    "Total duration of computed critical paths",
			Buckets: prometheus.ExponentialBuckets(1, 2, 16),
		}),
	}
}

// WriteFile writes every metric in text exposition format, for the node
// exporter textfile collector.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}

func (m *Metrics) observeStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func (m *Metrics) observeResult(res *Result, err error) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(resultLabel(err)).Inc()
	if err == nil {
		m.graphTasks.Observe(float64(len(res.Graph.TaskIDs())))
		m.pathDuration.Observe(float64(res.Path.Duration))
	}
}

// resultLabel maps an error onto a small fixed label set.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, task.ErrInvalidTask):
		return "invalid_task"
	case errors.Is(err, graph.ErrMissingPredecessor):
		return "missing_predecessor"
	case errors.Is(err, graph.ErrCyclicGraph):
		return "cyclic"
	case errors.Is(err, graph.ErrInvalidGraph):
		return "invalid_graph"
	case errors.Is(err, ErrGraphTooLarge):
		return "too_large"
	case errors.Is(err, cpm.ErrNoPath):
		return "no_path"
	default:
		return "error"
	}
}
