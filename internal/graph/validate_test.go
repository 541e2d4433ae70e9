package graph

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/joshharrison/critpath/internal/task"
)

func TestIsAcyclic_BuiltGraph(t *testing.T) {
	g := build(t, []task.Task{
		{ID: "A", Duration: 3},
		{ID: "B", Duration: 2, Predecessors: []string{"A"}},
		{ID: "C", Duration: 2, Predecessors: []string{"A"}},
		{ID: "D", Duration: 4, Predecessors: []string{"B", "C"}},
	})
	if !IsAcyclic(g) {
		t.Error("expected diamond to be acyclic")
	}
	if err := Validate(g); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if cycle := g.DetectCycle(); cycle != nil {
		t.Errorf("expected no cycle, got %v", cycle)
	}
}

func TestIsAcyclic_CycleFromInput(t *testing.T) {
	// A -> B -> C -> A
	g := build(t, []task.Task{
		{ID: "A", Duration: 1, Predecessors: []string{"C"}},
		{ID: "B", Duration: 1, Predecessors: []string{"A"}},
		{ID: "C", Duration: 1, Predecessors: []string{"B"}},
	})

	if IsAcyclic(g) {
		t.Fatal("expected cycle to be detected")
	}

	err := Validate(g)
	if !errors.Is(err, ErrCyclicGraph) {
		t.Fatalf("expected ErrCyclicGraph, got %v", err)
	}
	var ce *CyclicGraphError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CyclicGraphError, got %T", err)
	}
	if len(ce.Cycle) != 4 || ce.Cycle[0] != ce.Cycle[len(ce.Cycle)-1] {
		t.Errorf("expected closed cycle of 3 nodes, got %v", ce.Cycle)
	}
	for i := 0; i < len(ce.Cycle)-1; i++ {
		if !g.HasEdge(ce.Cycle[i], ce.Cycle[i+1]) {
			t.Errorf("cycle step %s -> %s is not an edge", ce.Cycle[i], ce.Cycle[i+1])
		}
	}
}

func TestIsAcyclic_SelfLoop(t *testing.T) {
	g := build(t, []task.Task{{ID: "A", Duration: 1, Predecessors: []string{"A"}}})
	if IsAcyclic(g) {
		t.Fatal("expected self-loop to be a cycle")
	}
	cycle := g.DetectCycle()
	if len(cycle) != 2 || cycle[0] != "A" || cycle[1] != "A" {
		t.Errorf("expected [A A], got %v", cycle)
	}
}

func TestTopoSort_RespectsEdges(t *testing.T) {
	g := build(t, []task.Task{
		{ID: "D", Duration: 4, Predecessors: []string{"B", "C"}},
		{ID: "C", Duration: 2, Predecessors: []string{"A"}},
		{ID: "B", Duration: 2, Predecessors: []string{"A"}},
		{ID: "A", Duration: 3},
	})

	order, err := TopoSort(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	for _, e := range g.Edges() {
		if pos[e.From] >= pos[e.To] {
			t.Errorf("edge %s -> %s violates order %v", e.From, e.To, order)
		}
	}
}

// randomDAG wires each task only to earlier tasks, so the result is acyclic.
func randomDAG(t *testing.T, rng *rand.Rand, n int) *Graph {
	t.Helper()
	tasks := make([]task.Task, n)
	for i := range tasks {
		tasks[i] = task.Task{ID: fmt.Sprintf("t%02d", i), Duration: rng.Intn(10)}
		for j := 0; j < i; j++ {
			if rng.Intn(4) == 0 {
				tasks[i].Predecessors = append(tasks[i].Predecessors, tasks[j].ID)
			}
		}
	}
	return build(t, tasks)
}

func TestIsAcyclic_CycleInjection(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		g := randomDAG(t, rng, 12)
		if !IsAcyclic(g) {
			t.Fatalf("trial %d: random DAG reported cyclic", trial)
		}

		// Reverse any edge between real tasks to close a cycle.
		for _, e := range g.Edges() {
			if g.IsAnchor(e.From) || g.IsAnchor(e.To) {
				continue
			}
			mutated, err := g.WithEdge(e.To, e.From)
			if err != nil {
				t.Fatalf("inject edge: %v", err)
			}
			if IsAcyclic(mutated) {
				t.Errorf("trial %d: back edge %s -> %s not detected", trial, e.To, e.From)
			}
			if !IsAcyclic(g) {
				t.Fatalf("trial %d: injection leaked into the original graph", trial)
			}
			break
		}
	}
}
