package cpm

import (
	"sort"

	"github.com/joshharrison/critpath/internal/graph"
)

// Analyze performs a critical path method pass over the real tasks of g,
// giving each its earliest and latest start and finish, slack and wave.
func Analyze(g *graph.Graph) (*Schedule, error) {
	full, err := graph.TopoSort(g)
	if err != nil {
		return nil, err
	}

	var order []string
	for _, id := range full {
		if !g.IsAnchor(id) {
			order = append(order, id)
		}
	}

	result := &Schedule{
		Tasks:     make(map[string]*TaskSchedule, len(order)),
		TopoOrder: order,
	}
	for _, id := range order {
		d, _ := g.Duration(id)
		result.Tasks[id] = &TaskSchedule{TaskID: id, Duration: d}
	}

	// Forward pass: ES = max(EF of all predecessors)
	for _, id := range order {
		ts := result.Tasks[id]
		es := 0
		for _, p := range g.Predecessors(id) {
			if predTS, ok := result.Tasks[p]; ok && predTS.EF > es {
				es = predTS.EF
			}
		}
		ts.ES = es
		ts.EF = es + ts.Duration
		if ts.EF > result.TotalDuration {
			result.TotalDuration = ts.EF
		}
	}

	// Backward pass: LF = min(LS of all successors), tasks feeding only the
	// exit anchor finish at the project end.
	for i := len(order) - 1; i >= 0; i-- {
		ts := result.Tasks[order[i]]
		lf := result.TotalDuration
		for _, s := range g.Successors(ts.TaskID) {
			if succTS, ok := result.Tasks[s]; ok && succTS.LS < lf {
				lf = succTS.LS
			}
		}
		ts.LF = lf
		ts.LS = lf - ts.Duration
		ts.Slack = ts.LS - ts.ES
		ts.IsCritical = ts.Slack == 0
	}

	result.Waves = computeWaves(result)
	return result, nil
}

// CriticalTasks returns every zero-slack task in topological order. Unlike
// CriticalPath it includes all tasks of tied critical chains.
func (s *Schedule) CriticalTasks() []string {
	var ids []string
	for _, id := range s.TopoOrder {
		if s.Tasks[id].IsCritical {
			ids = append(ids, id)
		}
	}
	return ids
}

// computeWaves groups tasks by their earliest start time.
func computeWaves(result *Schedule) []Wave {
	esGroups := make(map[int][]string)
	for _, id := range result.TopoOrder {
		es := result.Tasks[id].ES
		esGroups[es] = append(esGroups[es], id)
	}

	esValues := make([]int, 0, len(esGroups))
	for es := range esGroups {
		esValues = append(esValues, es)
	}
	sort.Ints(esValues)

	waves := make([]Wave, len(esValues))
	for i, es := range esValues {
		taskIDs := esGroups[es]
		sort.Strings(taskIDs)

		hasCritical := false
		for _, id := range taskIDs {
			result.Tasks[id].Wave = i
			if result.Tasks[id].IsCritical {
				hasCritical = true
			}
		}

		// Critical tasks first within a wave
		sort.SliceStable(taskIDs, func(a, b int) bool {
			return result.Tasks[taskIDs[a]].IsCritical && !result.Tasks[taskIDs[b]].IsCritical
		})

		waves[i] = Wave{
			Index:      i,
			TaskIDs:    taskIDs,
			IsCritical: hasCritical,
		}
	}
	return waves
}
