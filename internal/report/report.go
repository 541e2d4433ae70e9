// Package report writes human-readable and JSON accounts of an analysis.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/joshharrison/critpath/internal/cpm"
	"github.com/joshharrison/critpath/internal/graph"
	"github.com/joshharrison/critpath/internal/pipeline"
	"github.com/joshharrison/critpath/internal/ui"
)

// Summary writes the plain-text critical path summary:
//
//	The critical path consists of the following tasks:
//	1. A: Select venue (3 days)
//	...
//
//	The total duration of the critical path is 9 days.
func Summary(w io.Writer, p cpm.Projection, g *graph.Graph, unit string) error {
	var b strings.Builder
	b.WriteString("The critical path consists of the following tasks:\n")
	for i, id := range p.Nodes {
		desc := ""
		if t, ok := g.Task(id); ok {
			desc = t.Description
		}
		fmt.Fprintf(&b, "%d. %s: %s (%d %s)\n", i+1, id, desc, p.Durations[id], unit)
	}
	fmt.Fprintf(&b, "\nThe total duration of the critical path is %d %s.\n", p.Duration, unit)
	_, err := io.WriteString(w, b.String())
	return err
}

// SummaryString returns the Summary text.
func SummaryString(p cpm.Projection, g *graph.Graph, unit string) string {
	var b strings.Builder
	_ = Summary(&b, p, g, unit)
	return b.String()
}

// Header writes a one-line colored overview of a result.
func Header(w io.Writer, res *pipeline.Result, unit string) {
	path := res.Projection.Nodes
	ids := make([]string, len(path))
	for i, id := range path {
		ids[i] = ui.TaskID(id, true)
	}
	fmt.Fprintf(w, "%s %s\n", ui.BoldCyan("⚡ Critical path"), ui.Dim(res.Source))
	fmt.Fprintf(w, "  %s  %s\n\n", strings.Join(ids, " → "),
		ui.Bold(fmt.Sprintf("(%d %s)", res.Projection.Duration, unit)))
}

// Schedule writes the per-wave CPM table. Critical tasks are marked ⚡.
func Schedule(w io.Writer, s *cpm.Schedule, g *graph.Graph) {
	fmt.Fprintf(w, "%s %d tasks, %d waves, total duration %s\n\n",
		ui.BoldCyan("📅 Schedule"), len(s.Tasks), len(s.Waves), ui.Bold(s.TotalDuration))

	for _, wave := range s.Waves {
		label := "parallel"
		if wave.IsCritical {
			label = ui.BoldYellow("critical")
		}
		fmt.Fprintf(w, "  🌊 %s %d (%s)\n", ui.BoldWhite("WAVE"), wave.Index+1, label)
		fmt.Fprintf(w, "    %s\n", ui.Dim(fmt.Sprintf("  %-10s %-36s %5s %5s %5s %5s %5s %5s", "ID", "DESCRIPTION", "DUR", "ES", "EF", "LS", "LF", "SLACK")))
		for _, id := range wave.TaskIDs {
			printScheduledTask(w, s.Tasks[id], g)
		}
		fmt.Fprintln(w)
	}
}

func printScheduledTask(w io.Writer, ts *cpm.TaskSchedule, g *graph.Graph) {
	critical := " "
	if ts.IsCritical {
		critical = ui.BoldYellow("⚡")
	}

	desc := ""
	if t, ok := g.Task(ts.TaskID); ok {
		desc = t.Description
	}
	desc = truncate(desc, 36)

	// Pad before styling so escape codes do not skew the columns.
	id := ui.TaskID(fmt.Sprintf("%-10s", ts.TaskID), ts.IsCritical)
	slack := fmt.Sprintf("%5d", ts.Slack)
	if ts.Slack > 0 {
		slack = ui.Green(slack)
	}

	fmt.Fprintf(w, "    %s %s %-36s %5d %5d %5d %5d %5d %s\n",
		critical, id, desc, ts.Duration, ts.ES, ts.EF, ts.LS, ts.LF, slack)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// Batch writes one line per source and a footer with totals.
func Batch(w io.Writer, br *pipeline.BatchResult, unit string) {
	fmt.Fprintf(w, "%s %s\n", ui.BoldCyan("🧮 Batch"), ui.Dim(br.RunID))
	for _, f := range br.Files {
		elapsed := ui.Dim(fmt.Sprintf("[%s]", f.Elapsed.Truncate(time.Millisecond)))
		name := filepath.Base(f.Source)
		if f.Err != nil {
			fmt.Fprintf(w, "  %s %-30s %s  %s\n", ui.StatusIcon("failed"), name, ui.Red(f.Err.Error()), elapsed)
			continue
		}
		line := fmt.Sprintf("%s (%d %s)", strings.Join(f.Result.Projection.Nodes, " → "), f.Result.Projection.Duration, unit)
		if f.Output != "" {
			line += "  " + ui.Dim("→ "+f.Output)
		}
		fmt.Fprintf(w, "  %s %-30s %s  %s\n", ui.StatusIcon("ok"), name, line, elapsed)
	}

	ok := len(br.Files) - br.Failed
	fmt.Fprintf(w, "%s\n", ui.Cyan("──────────────────────────"))
	fmt.Fprintf(w, "Totals:  %s  %s\n",
		ui.Green(fmt.Sprintf("%d ok", ok)),
		ui.Red(fmt.Sprintf("%d failed", br.Failed)))
}

type taskJSON struct {
	ID          string   `json:"id"`
	Description string   `json:"description,omitempty"`
	Duration    int      `json:"duration"`
	ES          int      `json:"es"`
	EF          int      `json:"ef"`
	LS          int      `json:"ls"`
	LF          int      `json:"lf"`
	Slack       int      `json:"slack"`
	Critical    bool     `json:"critical"`
	Wave        int      `json:"wave"`
	Phantom     bool     `json:"phantom,omitempty"`
	Predecessor []string `json:"predecessors,omitempty"`
}

type resultJSON struct {
	Source       string       `json:"source,omitempty"`
	CriticalPath []string     `json:"critical_path"`
	Edges        []graph.Edge `json:"edges"`
	Duration     int          `json:"duration"`
	Unit         string       `json:"unit"`
	Tasks        []taskJSON   `json:"tasks"`
	Error        string       `json:"error,omitempty"`
}

func toJSON(res *pipeline.Result, unit string) resultJSON {
	g := res.Graph
	out := resultJSON{
		Source:       res.Source,
		CriticalPath: res.Projection.Nodes,
		Edges:        res.Projection.Edges,
		Duration:     res.Projection.Duration,
		Unit:         unit,
	}
	if out.CriticalPath == nil {
		out.CriticalPath = []string{}
	}
	if out.Edges == nil {
		out.Edges = []graph.Edge{}
	}

	for _, id := range res.Schedule.TopoOrder {
		ts := res.Schedule.Tasks[id]
		tj := taskJSON{
			ID: id, Duration: ts.Duration,
			ES: ts.ES, EF: ts.EF, LS: ts.LS, LF: ts.LF,
			Slack: ts.Slack, Critical: ts.IsCritical, Wave: ts.Wave,
			Phantom: g.IsPhantom(id),
		}
		if t, ok := g.Task(id); ok {
			tj.Description = t.Description
		}
		for _, p := range g.Predecessors(id) {
			if !g.IsAnchor(p) {
				tj.Predecessor = append(tj.Predecessor, p)
			}
		}
		out.Tasks = append(out.Tasks, tj)
	}
	return out
}

// JSON returns a machine-readable account of res.
func JSON(res *pipeline.Result, unit string) ([]byte, error) {
	return json.MarshalIndent(toJSON(res, unit), "", "  ")
}

// BatchJSON returns a machine-readable account of a batch, failures included.
func BatchJSON(br *pipeline.BatchResult, unit string) ([]byte, error) {
	type output struct {
		RunID  string       `json:"run_id"`
		Failed int          `json:"failed"`
		Files  []resultJSON `json:"files"`
	}
	o := output{RunID: br.RunID, Failed: br.Failed, Files: make([]resultJSON, 0, len(br.Files))}
	for _, f := range br.Files {
		if f.Err != nil {
			o.Files = append(o.Files, resultJSON{Source: f.Source, Error: f.Err.Error(), CriticalPath: []string{}, Edges: []graph.Edge{}, Unit: unit})
			continue
		}
		o.Files = append(o.Files, toJSON(f.Result, unit))
	}
	return json.MarshalIndent(o, "", "  ")
}
