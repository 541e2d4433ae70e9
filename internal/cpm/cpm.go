package cpm

import (
	"fmt"
	"slices"

	"github.com/joshharrison/critpath/internal/graph"
)

// CriticalPath returns the path from start to end with the largest sum of
// node durations, start and end included.
//
// Nodes are relaxed once in topological order, so the cost is linear in nodes
// plus edges. Ties are settled walking back from end: at every node the
// heaviest predecessor with the smallest ID wins, which selects the path whose
// reversed node sequence is lexicographically smallest. The result does not
// depend on input order. A cyclic graph fails with *graph.CyclicGraphError and
// an unreachable end with *NoPathError.
func CriticalPath(g *graph.Graph, start, end string) (Path, error) {
	for _, id := range []string{start, end} {
		if !g.HasNode(id) {
			return Path{}, fmt.Errorf("%w: %q", ErrUnknownNode, id)
		}
	}

	order, err := graph.TopoSort(g)
	if err != nil {
		return Path{}, err
	}

	dur := func(id string) int {
		d, _ := g.Duration(id)
		return d
	}

	if start == end {
		return Path{Nodes: []string{start}, Duration: dur(start)}, nil
	}

	best := map[string]int{start: dur(start)}
	pred := make(map[string]string)

	for _, v := range order {
		bv, reached := best[v]
		if !reached {
			continue
		}
		for _, w := range g.Successors(v) {
			cand := bv + dur(w)
			bw, seen := best[w]
			switch {
			case !seen, cand > bw:
			case cand == bw && v < pred[w]:
			default:
				continue
			}
			best[w] = cand
			pred[w] = v
		}
	}

	if _, ok := best[end]; !ok {
		return Path{}, &NoPathError{Start: start, End: end}
	}

	nodes := walkBack(pred, start, end)
	return Path{Nodes: nodes, Edges: edgesOf(nodes), Duration: best[end]}, nil
}

func walkBack(pred map[string]string, start, end string) []string {
	nodes := []string{end}
	for cur := end; cur != start; {
		cur = pred[cur]
		nodes = append(nodes, cur)
	}
	slices.Reverse(nodes)
	return nodes
}

func edgesOf(nodes []string) []graph.Edge {
	if len(nodes) < 2 {
		return nil
	}
	edges := make([]graph.Edge, 0, len(nodes)-1)
	for i := 1; i < len(nodes); i++ {
		edges = append(edges, graph.Edge{From: nodes[i-1], To: nodes[i]})
	}
	return edges
}

// Project strips the virtual anchors of g from p. The returned slices and map
// are fresh copies; p and g are not modified.
func Project(p Path, g *graph.Graph) Projection {
	out := Projection{
		Path:      Path{Duration: p.Duration},
		Durations: make(map[string]int),
	}
	for _, id := range p.Nodes {
		if !g.IsAnchor(id) {
			out.Nodes = append(out.Nodes, id)
		}
	}
	for _, e := range p.Edges {
		if !g.IsAnchor(e.From) && !g.IsAnchor(e.To) {
			out.Edges = append(out.Edges, e)
		}
	}
	for id, d := range g.Durations() {
		if !g.IsAnchor(id) {
			out.Durations[id] = d
		}
	}
	return out
}
