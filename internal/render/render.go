// Package render draws a precedence graph with its critical path highlighted.
// Renderers only read the graph and path they are given.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joshharrison/critpath/internal/cpm"
	"github.com/joshharrison/critpath/internal/graph"
)

// Format selects the output representation.
type Format string

const (
	FormatDOT   Format = "dot"
	FormatSVG   Format = "svg"
	FormatASCII Format = "ascii"
)

// Colors used for highlighting, taken from the classic networkx plot.
const (
	criticalColor = "red"
	nodeColor     = "steelblue"
	edgeColor     = "grey"
)

// Input is what a renderer draws: the graph and its projected critical path.
type Input struct {
	Graph *graph.Graph
	Path  cpm.Projection
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatDOT, FormatSVG, FormatASCII:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q (use dot, svg or ascii)", s)
	}
}

// Ext returns the file extension for f.
func (f Format) Ext() string {
	if f == FormatASCII {
		return ".txt"
	}
	return "." + string(f)
}

// Write renders in to w in format f.
func Write(w io.Writer, f Format, in Input) error {
	switch f {
	case FormatDOT:
		return DOT(w, in)
	case FormatSVG:
		return SVG(w, in)
	case FormatASCII:
		return ASCII(w, in)
	default:
		return fmt.Errorf("unsupported format %q", f)
	}
}

// SaveFile renders in to path, creating or truncating it.
func SaveFile(path string, f Format, in Input) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	return Write(out, f, in)
}

// highlight indexes the critical nodes and edges of a path.
type highlight struct {
	nodes map[string]bool
	edges map[graph.Edge]bool
}

func newHighlight(p cpm.Projection) highlight {
	h := highlight{nodes: make(map[string]bool), edges: make(map[graph.Edge]bool)}
	for _, id := range p.Nodes {
		h.nodes[id] = true
	}
	for _, e := range p.Edges {
		h.edges[e] = true
	}
	return h
}

// taskEdges returns the edges between real tasks.
func taskEdges(g *graph.Graph) []graph.Edge {
	var out []graph.Edge
	for _, e := range g.Edges() {
		if !g.IsAnchor(e.From) && !g.IsAnchor(e.To) {
			out = append(out, e)
		}
	}
	return out
}

// layers assigns each task the length of the longest chain of tasks before it.
func layers(g *graph.Graph) (map[string]int, [][]string, error) {
	order, err := graph.TopoSort(g)
	if err != nil {
		return nil, nil, err
	}

	level := make(map[string]int)
	var grouped [][]string
	for _, id := range order {
		if g.IsAnchor(id) {
			continue
		}
		l := 0
		for _, p := range g.Predecessors(id) {
			if pl, ok := level[p]; ok && pl+1 > l {
				l = pl + 1
			}
		}
		level[id] = l
		for len(grouped) <= l {
			grouped = append(grouped, nil)
		}
		grouped[l] = append(grouped[l], id)
	}
	return level, grouped, nil
}
