package graph

import (
	"github.com/joshharrison/critpath/internal/task"
)

// Default anchor names. Both anchors carry duration 0.
const (
	VirtualEntry = "VI"
	VirtualExit  = "VO"
)

// Edge is a precedence constraint: From must finish before To starts.
// Edges carry no weight; durations live on nodes.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is a node-weighted precedence graph with a virtual entry and exit.
// It is not modified after Build; accessors return copies.
type Graph struct {
	Entry string
	Exit  string

	order     []string // insertion order, Entry first and Exit last
	durations map[string]int
	tasks     map[string]task.Task
	phantoms  map[string]bool
	edges     []Edge
	edgeSet   map[Edge]bool
	adj       map[string][]string // node -> successors
	radj      map[string][]string // node -> predecessors
}
