// Package task defines the task record consumed by the graph builder and the
// loaders that read those records from tabular and structured sources.
package task

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidTask marks a malformed input record.
var ErrInvalidTask = errors.New("invalid task")

var validate = validator.New()

// Task is one activity of the project network.
type Task struct {
	ID           string   `json:"id" yaml:"id" validate:"required"`
	Description  string   `json:"description" yaml:"description"`
	Duration     int      `json:"duration" yaml:"duration" validate:"gte=0"`
	Predecessors []string `json:"predecessors,omitempty" yaml:"predecessors,omitempty" validate:"dive,required"`
}

// Validate checks the record's field constraints.
func (t Task) Validate() error {
	if err := validate.Struct(t); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: task %q: field %s fails %q", ErrInvalidTask, t.ID, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: task %q: %v", ErrInvalidTask, t.ID, err)
	}
	return nil
}

// Dedupe drops every record whose ID was already seen. The first occurrence
// wins; the IDs of dropped records are returned in input order.
func Dedupe(tasks []Task) (kept []Task, dropped []string) {
	seen := make(map[string]bool, len(tasks))
	kept = make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			dropped = append(dropped, t.ID)
			continue
		}
		seen[t.ID] = true
		kept = append(kept, t)
	}
	return kept, dropped
}

// SplitPredecessors parses a comma-separated predecessor cell. Entries are
// trimmed and blanks are dropped.
func SplitPredecessors(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Index maps task IDs to records. Later duplicates do not overwrite earlier ones.
func Index(tasks []Task) map[string]Task {
	idx := make(map[string]Task, len(tasks))
	for _, t := range tasks {
		if _, ok := idx[t.ID]; !ok {
			idx[t.ID] = t
		}
	}
	return idx
}
