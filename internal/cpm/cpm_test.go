package cpm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/joshharrison/critpath/internal/graph"
	"github.com/joshharrison/critpath/internal/task"
)

func buildTestGraph(t *testing.T, tasks []task.Task) *graph.Graph {
	t.Helper()
	g, err := graph.Build(context.Background(), tasks)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	return g
}

func criticalPath(t *testing.T, g *graph.Graph) Projection {
	t.Helper()
	p, err := CriticalPath(g, g.Entry, g.Exit)
	if err != nil {
		t.Fatalf("critical path: %v", err)
	}
	return Project(p, g)
}

func TestCriticalPath_LinearPair(t *testing.T) {
	g := buildTestGraph(t, []task.Task{
		{ID: "A", Duration: 3},
		{ID: "B", Duration: 2, Predecessors: []string{"A"}},
	})

	proj := criticalPath(t, g)
	if diff := cmp.Diff([]string{"A", "B"}, proj.Nodes); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
	if proj.Duration != 5 {
		t.Errorf("expected duration 5, got %d", proj.Duration)
	}
	if diff := cmp.Diff([]graph.Edge{{From: "A", To: "B"}}, proj.Edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestCriticalPath_DiamondTieBreak(t *testing.T) {
	// A -> B -> D and A -> C -> D both sum to 9; B sorts before C.
	tasks := []task.Task{
		{ID: "A", Duration: 3},
		{ID: "C", Duration: 2, Predecessors: []string{"A"}},
		{ID: "B", Duration: 2, Predecessors: []string{"A"}},
		{ID: "D", Duration: 4, Predecessors: []string{"C", "B"}},
	}
	g := buildTestGraph(t, tasks)

	proj := criticalPath(t, g)
	if diff := cmp.Diff([]string{"A", "B", "D"}, proj.Nodes); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
	if proj.Duration != 9 {
		t.Errorf("expected duration 9, got %d", proj.Duration)
	}

	// Same answer regardless of row order.
	slices.Reverse(tasks)
	if again := criticalPath(t, buildTestGraph(t, tasks)); !cmp.Equal(again.Nodes, proj.Nodes) {
		t.Errorf("row order changed the result: %v vs %v", again.Nodes, proj.Nodes)
	}
}

func TestCriticalPath_TieBreakWalksBackFromEnd(t *testing.T) {
	// Both routes into E sum to 6. Walking back from E the tied predecessors
	// are B and C; B is smaller, so the shorter route wins.
	g := buildTestGraph(t, []task.Task{
		{ID: "A", Duration: 1},
		{ID: "B", Duration: 1, Predecessors: []string{"A"}},
		{ID: "C", Duration: 0, Predecessors: []string{"B"}},
		{ID: "E", Duration: 4, Predecessors: []string{"C", "B"}},
	})

	proj := criticalPath(t, g)
	if diff := cmp.Diff([]string{"A", "B", "E"}, proj.Nodes); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
	if proj.Duration != 6 {
		t.Errorf("expected duration 6, got %d", proj.Duration)
	}
}

func TestCriticalPath_TieBreakIsPerStep(t *testing.T) {
	// X->Z and Y->Z tie at the end; Z picks X even though the route into Y
	// starts with the smaller task.
	g := buildTestGraph(t, []task.Task{
		{ID: "A", Duration: 1},
		{ID: "B", Duration: 1},
		{ID: "X", Duration: 1, Predecessors: []string{"B"}},
		{ID: "Y", Duration: 1, Predecessors: []string{"A"}},
		{ID: "Z", Duration: 1, Predecessors: []string{"X", "Y"}},
	})

	proj := criticalPath(t, g)
	if diff := cmp.Diff([]string{"B", "X", "Z"}, proj.Nodes); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestCriticalPath_WithEstimates(t *testing.T) {
	// A(5) -> B(1) -> D(1)
	// A(5) -> C(10) -> D(1)
	g := buildTestGraph(t, []task.Task{
		{ID: "A", Duration: 5},
		{ID: "B", Duration: 1, Predecessors: []string{"A"}},
		{ID: "C", Duration: 10, Predecessors: []string{"A"}},
		{ID: "D", Duration: 1, Predecessors: []string{"B", "C"}},
	})

	proj := criticalPath(t, g)
	if diff := cmp.Diff([]string{"A", "C", "D"}, proj.Nodes); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
	if proj.Duration != 16 {
		t.Errorf("expected duration 16, got %d", proj.Duration)
	}
}

func TestCriticalPath_SingleTask(t *testing.T) {
	g := buildTestGraph(t, []task.Task{{ID: "solo", Duration: 4}})

	proj := criticalPath(t, g)
	if diff := cmp.Diff([]string{"solo"}, proj.Nodes); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
	if proj.Duration != 4 {
		t.Errorf("expected duration 4, got %d", proj.Duration)
	}
	if len(proj.Edges) != 0 {
		t.Errorf("expected no edges, got %v", proj.Edges)
	}
}

func TestCriticalPath_NoPath(t *testing.T) {
	g := buildTestGraph(t, []task.Task{
		{ID: "A", Duration: 1},
		{ID: "B", Duration: 2},
	})

	_, err := CriticalPath(g, "A", "B")
	if !errors.Is(err, ErrNoPath) {
		t.Fatalf("expected ErrNoPath, got %v", err)
	}
	var np *NoPathError
	if !errors.As(err, &np) || np.Start != "A" || np.End != "B" {
		t.Errorf("expected NoPathError{A, B}, got %v", err)
	}
}

func TestCriticalPath_StartEqualsEnd(t *testing.T) {
	g := buildTestGraph(t, []task.Task{{ID: "A", Duration: 6}})

	p, err := CriticalPath(g, "A", "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cmp.Equal(p.Nodes, []string{"A"}) || p.Duration != 6 {
		t.Errorf("expected [A] with 6, got %v with %d", p.Nodes, p.Duration)
	}
}

func TestCriticalPath_UnknownNode(t *testing.T) {
	g := buildTestGraph(t, []task.Task{{ID: "A", Duration: 1}})
	if _, err := CriticalPath(g, g.Entry, "Z"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("expected ErrUnknownNode, got %v", err)
	}
}

func TestCriticalPath_Cyclic(t *testing.T) {
	g := buildTestGraph(t, []task.Task{
		{ID: "A", Duration: 1},
		{ID: "B", Duration: 1, Predecessors: []string{"A"}},
	})
	cyclic, err := g.WithEdge("B", "A")
	if err != nil {
		t.Fatal(err)
	}

	_, err = CriticalPath(cyclic, cyclic.Entry, cyclic.Exit)
	if !errors.Is(err, graph.ErrCyclicGraph) {
		t.Fatalf("expected ErrCyclicGraph, got %v", err)
	}
	var ce *graph.CyclicGraphError
	if !errors.As(err, &ce) || len(ce.Cycle) == 0 {
		t.Errorf("expected a cycle witness, got %v", err)
	}
}

func TestCriticalPath_Idempotent(t *testing.T) {
	g := randomGraph(t, rand.New(rand.NewSource(3)), 15)

	first, err := CriticalPath(g, g.Entry, g.Exit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := CriticalPath(g, g.Entry, g.Exit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("results differ (-first +second):\n%s", diff)
	}
}

func TestCriticalPath_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 200; trial++ {
		g := randomGraph(t, rng, 2+rng.Intn(9))
		nodes := g.Nodes()

		pairs := [][2]string{{g.Entry, g.Exit}}
		for i := 0; i < 3; i++ {
			pairs = append(pairs, [2]string{nodes[rng.Intn(len(nodes))], nodes[rng.Intn(len(nodes))]})
		}

		for _, pair := range pairs {
			start, end := pair[0], pair[1]
			wantPath, wantSum, ok := bruteForce(g, start, end)

			got, err := CriticalPath(g, start, end)
			if !ok {
				if !errors.Is(err, ErrNoPath) {
					t.Errorf("trial %d %s->%s: expected ErrNoPath, got %v", trial, start, end, err)
				}
				continue
			}
			if err != nil {
				t.Fatalf("trial %d %s->%s: unexpected error: %v", trial, start, end, err)
			}
			if got.Duration != wantSum {
				t.Errorf("trial %d %s->%s: duration %d, brute force %d", trial, start, end, got.Duration, wantSum)
			}
			if diff := cmp.Diff(wantPath, got.Nodes); diff != "" {
				t.Errorf("trial %d %s->%s: path mismatch (-brute +dp):\n%s", trial, start, end, diff)
			}
			for i := 1; i < len(got.Nodes); i++ {
				if !g.HasEdge(got.Nodes[i-1], got.Nodes[i]) {
					t.Errorf("trial %d: %s -> %s is not an edge", trial, got.Nodes[i-1], got.Nodes[i])
				}
			}
		}
	}
}

func TestCriticalPath_LargeGraph(t *testing.T) {
	// A layered graph with many parallel chains has far too many simple
	// paths to enumerate; the relaxation pass must still be instant.
	const layers, width = 200, 10
	var tasks []task.Task
	for l := 0; l < layers; l++ {
		for w := 0; w < width; w++ {
			tk := task.Task{ID: fmt.Sprintf("L%03dW%d", l, w), Duration: (l*w)%7 + 1}
			if l > 0 {
				for p := 0; p < width; p++ {
					tk.Predecessors = append(tk.Predecessors, fmt.Sprintf("L%03dW%d", l-1, p))
				}
			}
			tasks = append(tasks, tk)
		}
	}
	g := buildTestGraph(t, tasks)

	proj := criticalPath(t, g)
	if len(proj.Nodes) != layers {
		t.Errorf("expected one task per layer, got %d", len(proj.Nodes))
	}
}

func TestCriticalPath_AllTiedScale(t *testing.T) {
	// Zero durations make every relaxation a tie. Each task depends on the
	// ten before it, giving ~50k tied edges; settling ties must stay linear.
	const n, fanIn = 5000, 10
	tasks := make([]task.Task, n)
	for i := range tasks {
		tasks[i] = task.Task{ID: fmt.Sprintf("T%04d", i)}
		for p := max(0, i-fanIn); p < i; p++ {
			tasks[i].Predecessors = append(tasks[i].Predecessors, tasks[p].ID)
		}
	}
	g := buildTestGraph(t, tasks)

	start := time.Now()
	proj := criticalPath(t, g)
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("critical path over %d tied edges took %s", g.EdgeCount(), elapsed)
	}

	// Walking back from T4999 the smallest tied predecessor is always ten
	// steps earlier, down to T0009 whose smallest predecessor is T0000.
	if proj.Duration != 0 {
		t.Errorf("expected duration 0, got %d", proj.Duration)
	}
	if len(proj.Nodes) != 501 {
		t.Fatalf("expected 501 tasks on the path, got %d", len(proj.Nodes))
	}
	if proj.Nodes[0] != "T0000" || proj.Nodes[1] != "T0009" || proj.Nodes[500] != "T4999" {
		t.Errorf("unexpected path ends: %v ... %v", proj.Nodes[:3], proj.Nodes[498:])
	}
}

func TestCriticalPath_HugeDurations(t *testing.T) {
	g := buildTestGraph(t, []task.Task{
		{ID: "A", Duration: math.MaxInt - 6},
		{ID: "B", Duration: 5, Predecessors: []string{"A"}},
		{ID: "C", Duration: 1},
	})

	proj := criticalPath(t, g)
	if diff := cmp.Diff([]string{"A", "B"}, proj.Nodes); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
	if proj.Duration != math.MaxInt-1 {
		t.Errorf("expected duration %d, got %d", math.MaxInt-1, proj.Duration)
	}

	sched, err := Analyze(g)
	if err != nil {
		t.Fatal(err)
	}
	if sched.TotalDuration != math.MaxInt-1 || sched.Tasks["C"].Slack != math.MaxInt-2 {
		t.Errorf("unexpected schedule: total %d, C slack %d", sched.TotalDuration, sched.Tasks["C"].Slack)
	}
}

func TestProject(t *testing.T) {
	g := buildTestGraph(t, []task.Task{
		{ID: "A", Duration: 3},
		{ID: "B", Duration: 2, Predecessors: []string{"A"}},
	})
	p, err := CriticalPath(g, g.Entry, g.Exit)
	if err != nil {
		t.Fatal(err)
	}
	before := slices.Clone(p.Nodes)

	proj := Project(p, g)

	if diff := cmp.Diff([]string{"VI", "A", "B", "VO"}, p.Nodes); diff != "" {
		t.Errorf("internal path mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]int{"A": 3, "B": 2}, proj.Durations); diff != "" {
		t.Errorf("durations mismatch (-want +got):\n%s", diff)
	}
	if proj.Duration != p.Duration {
		t.Errorf("projection changed the duration: %d vs %d", proj.Duration, p.Duration)
	}

	proj.Nodes[0] = "X"
	if !cmp.Equal(before, p.Nodes) {
		t.Error("projection shares storage with the input path")
	}
	if _, ok := g.Duration(g.Entry); !ok {
		t.Error("projection removed the anchor from the graph")
	}
}

// randomGraph builds a DAG where each task depends only on earlier tasks.
func randomGraph(t *testing.T, rng *rand.Rand, n int) *graph.Graph {
	t.Helper()
	tasks := make([]task.Task, n)
	for i := range tasks {
		tasks[i] = task.Task{ID: fmt.Sprintf("n%d", i), Duration: rng.Intn(5)}
		for j := 0; j < i; j++ {
			if rng.Intn(3) == 0 {
				tasks[i].Predecessors = append(tasks[i].Predecessors, tasks[j].ID)
			}
		}
	}
	rng.Shuffle(len(tasks), func(i, j int) { tasks[i], tasks[j] = tasks[j], tasks[i] })
	return buildTestGraph(t, tasks)
}

// bruteForce enumerates every simple path from start to end and keeps the
// heaviest, breaking ties by the lexicographically smallest reversed node
// sequence.
func bruteForce(g *graph.Graph, start, end string) ([]string, int, bool) {
	var (
		best    []string
		bestSum int
		found   bool
		stack   []string
	)
	onStack := make(map[string]bool)

	var dfs func(v string, sum int)
	dfs = func(v string, sum int) {
		d, _ := g.Duration(v)
		sum += d
		stack = append(stack, v)
		onStack[v] = true
		defer func() {
			stack = stack[:len(stack)-1]
			onStack[v] = false
		}()

		if v == end {
			if !found || sum > bestSum || (sum == bestSum && reversedLess(stack, best)) {
				best, bestSum, found = slices.Clone(stack), sum, true
			}
			return
		}
		for _, w := range g.Successors(v) {
			if !onStack[w] {
				dfs(w, sum)
			}
		}
	}
	dfs(start, 0)
	return best, bestSum, found
}

// reversedLess compares a and b last element first.
func reversedLess(a, b []string) bool {
	ra, rb := slices.Clone(a), slices.Clone(b)
	slices.Reverse(ra)
	slices.Reverse(rb)
	return slices.Compare(ra, rb) < 0
}
