package render

import (
	"bufio"
	"fmt"
	"io"
)

// ASCII writes a plain-text listing of the graph, one section per layer.
// Critical tasks are starred.
func ASCII(w io.Writer, in Input) error {
	g := in.Graph
	h := newHighlight(in.Path)

	_, grouped, err := layers(g)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	for i, layer := range grouped {
		fmt.Fprintf(bw, "-- Layer %d --\n", i+1)
		for _, id := range layer {
			mark := " "
			if h.nodes[id] {
				mark = "*"
			}
			fmt.Fprintf(bw, "  %s [%s]", mark, g.Label(id))
			if t, ok := g.Task(id); ok && t.Description != "" {
				fmt.Fprintf(bw, " %s", t.Description)
			}
			fmt.Fprintln(bw)

			for _, succ := range g.Successors(id) {
				if g.IsAnchor(succ) {
					continue
				}
				arrow := "└──>"
				if h.edges[graphEdge(id, succ)] {
					arrow = "└══>"
				}
				fmt.Fprintf(bw, "      %s %s\n", arrow, succ)
			}
		}
		fmt.Fprintln(bw)
	}
	fmt.Fprintf(bw, "Critical path: %v (%d)\n", in.Path.Nodes, in.Path.Duration)
	return bw.Flush()
}
