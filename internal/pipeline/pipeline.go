// Package pipeline runs the load, build, validate, path and schedule stages
// for one task source or a batch of them.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/joshharrison/critpath/internal/config"
	"github.com/joshharrison/critpath/internal/cpm"
	"github.com/joshharrison/critpath/internal/ctxlog"
	"github.com/joshharrison/critpath/internal/graph"
	"github.com/joshharrison/critpath/internal/render"
	"github.com/joshharrison/critpath/internal/task"
)

// ErrGraphTooLarge is returned when a graph exceeds the configured limits.
var ErrGraphTooLarge = errors.New("graph too large")

// GraphTooLargeError reports which limit a graph exceeded.
type GraphTooLargeError struct {
	Tasks, Edges       int
	MaxTasks, MaxEdges int
}

func (e *GraphTooLargeError) Error() string {
	return fmt.Sprintf("graph too large: %d tasks (max %d), %d edges (max %d)",
		e.Tasks, e.MaxTasks, e.Edges, e.MaxEdges)
}

func (e *GraphTooLargeError) Unwrap() error { return ErrGraphTooLarge }

// Result is the full analysis of one source.
type Result struct {
	Source     string
	Tasks      []task.Task
	Graph      *graph.Graph
	Path       cpm.Path
	Projection cpm.Projection
	Schedule   *cpm.Schedule
}

// Input returns the renderer input for r.
func (r *Result) Input() render.Input {
	return render.Input{Graph: r.Graph, Path: r.Projection}
}

// Runner executes the pipeline with a fixed configuration.
type Runner struct {
	cfg     config.Config
	metrics *Metrics
	load    func(ctx context.Context, src string) ([]task.Task, error)
}

// New creates a Runner. metrics may be nil.
func New(cfg config.Config, metrics *Metrics) *Runner {
	return &Runner{cfg: cfg, metrics: metrics, load: task.Load}
}

// Config returns the configuration r runs with.
func (r *Runner) Config() config.Config { return r.cfg }

// Run loads src and analyses it.
func (r *Runner) Run(ctx context.Context, src string) (*Result, error) {
	ctx = ctxlog.WithLogger(ctx, ctxlog.FromContext(ctx).With("source", src))

	start := time.Now()
	tasks, err := r.load(ctx, src)
	r.metrics.observeStage("load", start)
	if err != nil {
		r.metrics.observeResult(nil, err)
		return nil, err
	}

	res, err := r.Analyze(ctx, tasks)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	res.Source = src
	return res, nil
}

// Analyze runs every stage after loading on tasks.
func (r *Runner) Analyze(ctx context.Context, tasks []task.Task) (res *Result, err error) {
	defer func() { r.metrics.observeResult(res, err) }()
	logger := ctxlog.FromContext(ctx)

	opts := []graph.Option{graph.WithAnchors(r.cfg.Anchors.Entry, r.cfg.Anchors.Exit)}
	if r.cfg.Lenient {
		opts = append(opts, graph.WithPhantomPredecessors())
	}

	start := time.Now()
	g, err := graph.Build(ctx, tasks, opts...)
	r.metrics.observeStage("build", start)
	if err != nil {
		return nil, err
	}
	if err := r.checkSize(g); err != nil {
		return nil, err
	}
	logger.Debug("built graph", "nodes", g.NodeCount(), "edges", g.EdgeCount())

	start = time.Now()
	err = graph.Validate(g)
	r.metrics.observeStage("validate", start)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	p, err := cpm.CriticalPath(g, g.Entry, g.Exit)
	r.metrics.observeStage("path", start)
	if err != nil {
		return nil, err
	}
	logger.Debug("critical path", "nodes", p.Nodes, "duration", p.Duration)

	start = time.Now()
	sched, err := cpm.Analyze(g)
	r.metrics.observeStage("schedule", start)
	if err != nil {
		return nil, err
	}

	return &Result{
		Tasks:      tasks,
		Graph:      g,
		Path:       p,
		Projection: cpm.Project(p, g),
		Schedule:   sched,
	}, nil
}

func (r *Runner) checkSize(g *graph.Graph) error {
	lim := r.cfg.Limits
	tasks, edges := len(g.TaskIDs()), g.EdgeCount()
	if (lim.MaxNodes > 0 && tasks > lim.MaxNodes) || (lim.MaxEdges > 0 && edges > lim.MaxEdges) {
		return &GraphTooLargeError{Tasks: tasks, Edges: edges, MaxTasks: lim.MaxNodes, MaxEdges: lim.MaxEdges}
	}
	return nil
}

// OutputPath returns where a rendering of src is written: <src><ext>, inside
// the configured output directory when one is set.
func OutputPath(cfg config.Config, src string, f render.Format) string {
	name := filepath.Base(src) + f.Ext()
	if cfg.Output.Dir != "" {
		return filepath.Join(cfg.Output.Dir, name)
	}
	return filepath.Join(filepath.Dir(src), name)
}
