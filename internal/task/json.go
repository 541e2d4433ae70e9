package task

import (
	"fmt"
	"math"

	"github.com/tidwall/gjson"
)

// ReadJSON reads task records from a JSON document. The document is either an
// array of task objects or an object with a "tasks" array. "predecessors" may
// be an array of IDs or a comma-separated string; "duration" may be a number
// or a numeric string.
func ReadJSON(data []byte) ([]Task, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidTask)
	}

	root := gjson.ParseBytes(data)
	if root.IsObject() {
		root = root.Get("tasks")
	}
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected an array of tasks", ErrInvalidTask)
	}

	var (
		tasks []Task
		err   error
		i     int
	)
	root.ForEach(func(_, item gjson.Result) bool {
		var t Task
		t, err = parseJSONTask(item)
		if err != nil {
			err = fmt.Errorf("record %d: %w", i, err)
			return false
		}
		tasks = append(tasks, t)
		i++
		return true
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func parseJSONTask(item gjson.Result) (Task, error) {
	if !item.IsObject() {
		return Task{}, fmt.Errorf("%w: expected an object", ErrInvalidTask)
	}

	t := Task{
		ID:          item.Get("id").String(),
		Description: item.Get("description").String(),
	}

	dur := item.Get("duration")
	switch dur.Type {
	case gjson.Null:
	case gjson.Number:
		if dur.Num != math.Trunc(dur.Num) {
			return Task{}, fmt.Errorf("%w: task %q: duration %v is not an integer", ErrInvalidTask, t.ID, dur.Num)
		}
		t.Duration = int(dur.Int())
	case gjson.String:
		n, err := parseDuration(dur.Str)
		if err != nil {
			return Task{}, fmt.Errorf("%w: task %q: %v", ErrInvalidTask, t.ID, err)
		}
		t.Duration = n
	default:
		return Task{}, fmt.Errorf("%w: task %q: unsupported duration %s", ErrInvalidTask, t.ID, dur.Raw)
	}

	preds := item.Get("predecessors")
	switch {
	case preds.IsArray():
		preds.ForEach(func(_, p gjson.Result) bool {
			t.Predecessors = append(t.Predecessors, SplitPredecessors(p.String())...)
			return true
		})
	case preds.Type == gjson.String:
		t.Predecessors = SplitPredecessors(preds.Str)
	}

	if err := t.Validate(); err != nil {
		return Task{}, err
	}
	return t, nil
}
