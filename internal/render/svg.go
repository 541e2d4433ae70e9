package render

import (
	"bufio"
	"fmt"
	"html"
	"io"

	"github.com/joshharrison/critpath/internal/graph"
)

const (
	svgMargin  = 40
	svgColumn  = 160
	svgRow     = 70
	svgNodeW   = 100
	svgNodeH   = 36
	svgMinSize = 200
)

type point struct{ x, y int }

// SVG writes a static image with tasks laid out left to right by layer.
func SVG(w io.Writer, in Input) error {
	g := in.Graph
	h := newHighlight(in.Path)

	_, grouped, err := layers(g)
	if err != nil {
		return err
	}

	pos := make(map[string]point)
	rows := 0
	for l, layer := range grouped {
		for i, id := range layer {
			pos[id] = point{x: svgMargin + l*svgColumn, y: svgMargin + i*svgRow}
		}
		rows = max(rows, len(layer))
	}
	width := max(svgMinSize, 2*svgMargin+len(grouped)*svgColumn-(svgColumn-svgNodeW))
	height := max(svgMinSize, 2*svgMargin+rows*svgRow-(svgRow-svgNodeH))

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		width, height, width, height)
	fmt.Fprintf(bw, `  <defs>
    <marker id="arrow" markerWidth="10" markerHeight="7" refX="10" refY="3.5" orient="auto"><polygon points="0 0, 10 3.5, 0 7" fill="%[1]s"/></marker>
    <marker id="arrow-critical" markerWidth="10" markerHeight="7" refX="10" refY="3.5" orient="auto"><polygon points="0 0, 10 3.5, 0 7" fill="%[2]s"/></marker>
  </defs>
  <style>
    .label { font-family: Arial, sans-serif; font-size: 12px; fill: white; }
  </style>
`, edgeColor, criticalColor)

	// Non-critical edges first so critical ones paint on top.
	edges := taskEdges(g)
	for _, critical := range []bool{false, true} {
		for _, e := range edges {
			if h.edges[e] != critical {
				continue
			}
			writeSVGEdge(bw, pos[e.From], pos[e.To], critical)
		}
	}

	for _, id := range g.TaskIDs() {
		p := pos[id]
		fill := nodeColor
		if h.nodes[id] {
			fill = criticalColor
		}
		fmt.Fprintf(bw, `  <g class="node"><title>%s</title>`, html.EscapeString(title(g, id)))
		fmt.Fprintf(bw, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>`, p.x, p.y, svgNodeW, svgNodeH, fill)
		fmt.Fprintf(bw, `<text class="label" x="%d" y="%d" text-anchor="middle" dy=".3em">%s</text></g>`+"\n",
			p.x+svgNodeW/2, p.y+svgNodeH/2, html.EscapeString(g.Label(id)))
	}

	fmt.Fprintln(bw, "</svg>")
	return bw.Flush()
}

func writeSVGEdge(w io.Writer, from, to point, critical bool) {
	stroke, marker, width := edgeColor, "arrow", 1
	if critical {
		stroke, marker, width = criticalColor, "arrow-critical", 3
	}
	fmt.Fprintf(w, `  <line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="%d" marker-end="url(#%s)"/>`+"\n",
		from.x+svgNodeW, from.y+svgNodeH/2, to.x, to.y+svgNodeH/2, stroke, width, marker)
}

func title(g *graph.Graph, id string) string {
	if t, ok := g.Task(id); ok && t.Description != "" {
		return id + ": " + t.Description
	}
	return id
}

func graphEdge(from, to string) graph.Edge {
	return graph.Edge{From: from, To: to}
}
