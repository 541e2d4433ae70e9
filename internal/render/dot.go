package render

import (
	"bufio"
	"fmt"
	"io"
)

// DOT writes a Graphviz digraph.
func DOT(w io.Writer, in Input) error {
	g := in.Graph
	h := newHighlight(in.Path)
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "digraph critpath {")
	fmt.Fprintln(bw, "  rankdir=LR;")
	fmt.Fprintln(bw, "  node [shape=box, style=filled, fontcolor=white];")
	fmt.Fprintln(bw)

	for _, id := range g.TaskIDs() {
		color := nodeColor
		if h.nodes[id] {
			color = criticalColor
		}
		attrs := fmt.Sprintf("label=%q, fillcolor=%s", g.Label(id), color)
		if t, ok := g.Task(id); ok && t.Description != "" {
			attrs += fmt.Sprintf(", tooltip=%q", t.Description)
		}
		fmt.Fprintf(bw, "  %q [%s];\n", id, attrs)
	}

	fmt.Fprintln(bw)

	for _, e := range taskEdges(g) {
		style := fmt.Sprintf(" [color=%s]", edgeColor)
		if h.edges[e] {
			style = fmt.Sprintf(" [color=%s, penwidth=2]", criticalColor)
		}
		fmt.Fprintf(bw, "  %q -> %q%s;\n", e.From, e.To, style)
	}

	fmt.Fprintln(bw, "}")
	return bw.Flush()
}
