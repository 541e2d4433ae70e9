package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidGraph       = errors.New("invalid task graph")
	ErrMissingPredecessor = errors.New("missing predecessor")
	ErrCyclicGraph        = errors.New("cycle detected")
)

// MissingPredecessorError reports a predecessor ID that names no task.
type MissingPredecessorError struct {
	Task        string
	Predecessor string
}

func (e *MissingPredecessorError) Error() string {
	return fmt.Sprintf("%s: task %q depends on undefined task %q", ErrMissingPredecessor, e.Task, e.Predecessor)
}

func (e *MissingPredecessorError) Unwrap() error { return ErrMissingPredecessor }

// CyclicGraphError carries one cycle found in the graph, first node repeated
// at the end.
type CyclicGraphError struct {
	Cycle []string
}

func (e *CyclicGraphError) Error() string {
	if len(e.Cycle) == 0 {
		return ErrCyclicGraph.Error()
	}
	return fmt.Sprintf("%s: %s", ErrCyclicGraph, strings.Join(e.Cycle, " -> "))
}

func (e *CyclicGraphError) Unwrap() error { return ErrCyclicGraph }

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidGraph, fmt.Sprintf(format, args...))
}
