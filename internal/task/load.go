package task

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joshharrison/critpath/internal/bd"
	"github.com/joshharrison/critpath/internal/ctxlog"
)

// BeadsPrefix selects a beads database as the task source, e.g. "bd:" for the
// default database or "bd:/path/to/beads.db".
const BeadsPrefix = "bd:"

// Load reads tasks from src, picking the reader by file extension. Records
// with a duplicate ID are dropped after the first occurrence.
func Load(ctx context.Context, src string) ([]Task, error) {
	logger := ctxlog.FromContext(ctx)

	var (
		tasks []Task
		err   error
	)
	if strings.HasPrefix(src, BeadsPrefix) {
		tasks, err = loadBeads(ctx, bd.NewClient("", strings.TrimPrefix(src, BeadsPrefix)))
	} else {
		tasks, err = loadFile(src)
	}
	if err != nil {
		return nil, err
	}

	tasks, dropped := Dedupe(tasks)
	for _, id := range dropped {
		logger.Warn("duplicate task id ignored", "source", src, "task", id)
	}
	logger.Debug("tasks loaded", "source", src, "count", len(tasks))
	return tasks, nil
}

func loadFile(path string) ([]Task, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		tasks, err := ReadJSON(data)
		return wrap(path, tasks, err)
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		tasks, err := ReadYAML(data)
		return wrap(path, tasks, err)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		tasks, err := ReadCSV(f)
		return wrap(path, tasks, err)
	}
}

func wrap(path string, tasks []Task, err error) ([]Task, error) {
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tasks, nil
}

// beadsSource is the part of the bd client the loader needs.
type beadsSource interface {
	OpenTasks(ctx context.Context) ([]bd.RawTask, error)
}

func loadBeads(ctx context.Context, src beadsSource) ([]Task, error) {
	raw, err := src.OpenTasks(ctx)
	if err != nil {
		return nil, err
	}
	return FromBeads(raw), nil
}

// FromBeads converts bd tasks to records. The estimate in minutes becomes the
// duration and blockers become predecessors.
func FromBeads(raw []bd.RawTask) []Task {
	tasks := make([]Task, 0, len(raw))
	for _, r := range raw {
		desc := r.Title
		if desc == "" {
			desc = r.Description
		}
		tasks = append(tasks, Task{
			ID:           r.ID,
			Description:  desc,
			Duration:     max(r.Estimate, 0),
			Predecessors: append([]string(nil), r.BlockedBy...),
		})
	}
	return tasks
}
