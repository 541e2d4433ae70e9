package task

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadCSV reads task records from a CSV stream with a header row. Columns are
// positional: id, description, duration, predecessors. The predecessor column
// may be omitted; extra columns are ignored.
func ReadCSV(r io.Reader) ([]Task, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header row", ErrInvalidTask)
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var tasks []Task
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)

		t, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func parseRow(row []string) (Task, error) {
	if len(row) < 3 {
		return Task{}, fmt.Errorf("%w: expected at least 3 columns, got %d", ErrInvalidTask, len(row))
	}

	t := Task{
		ID:          strings.TrimSpace(row[0]),
		Description: strings.TrimSpace(row[1]),
	}

	dur, err := parseDuration(row[2])
	if err != nil {
		return Task{}, fmt.Errorf("%w: task %q: %v", ErrInvalidTask, t.ID, err)
	}
	t.Duration = dur

	if len(row) > 3 {
		t.Predecessors = SplitPredecessors(row[3])
	}

	if err := t.Validate(); err != nil {
		return Task{}, err
	}
	return t, nil
}

// parseDuration treats a blank cell as zero.
func parseDuration(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("duration %q is not an integer", s)
	}
	return n, nil
}
