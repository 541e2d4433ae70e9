package cpm

import (
	"github.com/joshharrison/critpath/internal/graph"
)

// Path is a chain of nodes joined by graph edges, with the sum of its node
// durations.
type Path struct {
	Nodes    []string     `json:"nodes"`
	Edges    []graph.Edge `json:"edges"`
	Duration int          `json:"duration"`
}

// Projection is a critical path with the virtual anchors removed.
type Projection struct {
	Path
	Durations map[string]int `json:"durations"` // every real node, anchors excluded
}

// Schedule holds the complete critical path analysis.
type Schedule struct {
	Tasks         map[string]*TaskSchedule
	TotalDuration int
	Waves         []Wave // parallelizable groups
	TopoOrder     []string
}

// TaskSchedule holds the scheduling info for a single task.
type TaskSchedule struct {
	TaskID     string
	Duration   int
	ES, EF     int // earliest start/finish
	LS, LF     int // latest start/finish
	Slack      int
	IsCritical bool
	Wave       int // which parallel wave this belongs to
}

// Wave represents a group of tasks that can run in parallel.
type Wave struct {
	Index      int
	TaskIDs    []string
	IsCritical bool // true if wave contains critical tasks
}
