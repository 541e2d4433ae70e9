package graph

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/joshharrison/critpath/internal/ctxlog"
	"github.com/joshharrison/critpath/internal/task"
)

type buildOptions struct {
	entry    string
	exit     string
	phantoms bool
}

// Option configures Build.
type Option func(*buildOptions)

// WithAnchors renames the virtual entry and exit nodes.
func WithAnchors(entry, exit string) Option {
	return func(o *buildOptions) {
		if entry != "" {
			o.entry = entry
		}
		if exit != "" {
			o.exit = exit
		}
	}
}

// WithPhantomPredecessors accepts predecessor IDs that name no task. Each
// becomes a zero-duration node fed from the entry anchor instead of failing
// the build.
func WithPhantomPredecessors() Option {
	return func(o *buildOptions) { o.phantoms = true }
}

// Build constructs the precedence graph for tasks.
//
// Tasks with predecessors get one edge per predecessor; tasks without get an
// edge from the entry anchor. Once all forward edges exist, every node with no
// successor gets an edge to the exit anchor. Duplicate task IDs are skipped
// after the first. A predecessor naming no task fails with
// *MissingPredecessorError unless WithPhantomPredecessors is set.
func Build(ctx context.Context, tasks []task.Task, opts ...Option) (*Graph, error) {
	o := buildOptions{entry: VirtualEntry, exit: VirtualExit}
	for _, opt := range opts {
		opt(&o)
	}
	if o.entry == o.exit {
		return nil, invalidf("entry and exit anchors share the name %q", o.entry)
	}

	logger := ctxlog.FromContext(ctx)
	g := newGraph(o.entry, o.exit)

	// Index every task first so forward references resolve. Path sums never
	// exceed the total duration, so bounding it keeps every sum within int.
	var (
		ordered []task.Task
		total   int
	)
	for _, t := range tasks {
		id := strings.TrimSpace(t.ID)
		if id == "" {
			return nil, invalidf("task with empty id")
		}
		if id == g.Entry || id == g.Exit {
			return nil, invalidf("task id %q collides with an anchor", id)
		}
		if t.Duration < 0 {
			return nil, invalidf("task %q has negative duration %d", id, t.Duration)
		}
		if _, dup := g.tasks[id]; dup {
			logger.Debug("Build: duplicate task skipped.", "task", id)
			continue
		}
		if t.Duration > math.MaxInt-total {
			return nil, invalidf("total duration overflows at task %q (duration %d)", id, t.Duration)
		}
		total += t.Duration

		t.ID = id
		t.Predecessors = append([]string(nil), t.Predecessors...)
		g.tasks[id] = t
		g.addNode(id, t.Duration)
		ordered = append(ordered, t)
	}

	for _, t := range ordered {
		preds := trimmed(t.Predecessors)
		if len(preds) == 0 {
			g.addEdge(g.Entry, t.ID)
			continue
		}
		for _, p := range preds {
			if g.IsAnchor(p) {
				return nil, &MissingPredecessorError{Task: t.ID, Predecessor: p}
			}
			if !g.HasNode(p) {
				if !o.phantoms {
					return nil, &MissingPredecessorError{Task: t.ID, Predecessor: p}
				}
				logger.Warn("undefined predecessor added as phantom node", "task", t.ID, "predecessor", p)
				g.addNode(p, 0)
				g.phantoms[p] = true
				g.addEdge(g.Entry, p)
			}
			g.addEdge(p, t.ID)
		}
	}

	// Sink completion runs only after all forward edges are known.
	g.order = append(g.order, g.Exit)
	for _, id := range g.order {
		if id != g.Exit && len(g.adj[id]) == 0 {
			g.addEdge(id, g.Exit)
		}
	}

	logger.Debug("Build: graph constructed.", "nodes", len(g.order), "edges", len(g.edges))
	return g, nil
}

func trimmed(preds []string) []string {
	var out []string
	for _, p := range preds {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func newGraph(entry, exit string) *Graph {
	g := &Graph{
		Entry:     entry,
		Exit:      exit,
		durations: map[string]int{entry: 0, exit: 0},
		tasks:     make(map[string]task.Task),
		phantoms:  make(map[string]bool),
		edgeSet:   make(map[Edge]bool),
		adj:       make(map[string][]string),
		radj:      make(map[string][]string),
	}
	g.order = []string{entry}
	return g
}

func (g *Graph) addNode(id string, duration int) {
	g.durations[id] = duration
	g.order = append(g.order, id)
}

func (g *Graph) addEdge(from, to string) {
	e := Edge{From: from, To: to}
	if g.edgeSet[e] {
		return
	}
	g.edgeSet[e] = true
	g.edges = append(g.edges, e)
	g.adj[from] = append(g.adj[from], to)
	g.radj[to] = append(g.radj[to], from)
}

func (g *Graph) clone() *Graph {
	c := newGraph(g.Entry, g.Exit)
	c.order = append([]string(nil), g.order...)
	for k, v := range g.durations {
		c.durations[k] = v
	}
	for k, v := range g.tasks {
		c.tasks[k] = v
	}
	for k := range g.phantoms {
		c.phantoms[k] = true
	}
	for _, e := range g.edges {
		c.addEdge(e.From, e.To)
	}
	return c
}

// WithEdge returns a copy of g with the edge from -> to added. Both nodes must
// already exist. g itself is left unchanged.
func (g *Graph) WithEdge(from, to string) (*Graph, error) {
	if !g.HasNode(from) {
		return nil, invalidf("unknown node %q", from)
	}
	if !g.HasNode(to) {
		return nil, invalidf("unknown node %q", to)
	}
	c := g.clone()
	c.addEdge(from, to)
	return c, nil
}

// Nodes returns every node, anchors included, in insertion order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.order...)
}

// TaskIDs returns the non-anchor nodes in insertion order.
func (g *Graph) TaskIDs() []string {
	ids := make([]string, 0, len(g.order))
	for _, id := range g.order {
		if !g.IsAnchor(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// NodeCount returns the number of nodes, anchors included.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of edges, anchor edges included.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// IsAnchor reports whether id is the entry or exit anchor.
func (g *Graph) IsAnchor(id string) bool { return id == g.Entry || id == g.Exit }

// IsPhantom reports whether id was created for an undefined predecessor.
func (g *Graph) IsPhantom(id string) bool { return g.phantoms[id] }

// HasNode reports whether id is a node of g.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.durations[id]
	return ok
}

// HasEdge reports whether the edge from -> to exists.
func (g *Graph) HasEdge(from, to string) bool { return g.edgeSet[Edge{From: from, To: to}] }

// Duration returns the duration of node id.
func (g *Graph) Duration(id string) (int, bool) {
	d, ok := g.durations[id]
	return d, ok
}

// Durations returns a copy of the node -> duration mapping.
func (g *Graph) Durations() map[string]int {
	out := make(map[string]int, len(g.durations))
	for k, v := range g.durations {
		out[k] = v
	}
	return out
}

// Task returns the record node id was built from. Anchors and phantom nodes
// have no record.
func (g *Graph) Task(id string) (task.Task, bool) {
	t, ok := g.tasks[id]
	return t, ok
}

// Label returns the display label "id:duration".
func (g *Graph) Label(id string) string {
	return fmt.Sprintf("%s:%d", id, g.durations[id])
}

// Edges returns every edge in insertion order.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// Successors returns the nodes id has an edge to.
func (g *Graph) Successors(id string) []string {
	return append([]string(nil), g.adj[id]...)
}

// Predecessors returns the nodes that have an edge to id.
func (g *Graph) Predecessors(id string) []string {
	return append([]string(nil), g.radj[id]...)
}

// OutDegree returns the number of edges leaving id.
func (g *Graph) OutDegree(id string) int { return len(g.adj[id]) }

// InDegree returns the number of edges entering id.
func (g *Graph) InDegree(id string) int { return len(g.radj[id]) }
