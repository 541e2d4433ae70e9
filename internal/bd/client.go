// Package bd reads tasks and dependency edges from a beads database through
// the bd CLI, so a beads project can be analysed like a task table.
package bd

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// Client wraps the bd CLI binary.
type Client struct {
	BdBin  string // path to bd binary (default: "bd")
	DbPath string // --db flag value (optional)
}

// NewClient creates a Client using the given bd binary path and database path.
func NewClient(bdBin, dbPath string) *Client {
	if bdBin == "" {
		bdBin = "bd"
	}
	return &Client{BdBin: bdBin, DbPath: dbPath}
}

func (c *Client) baseArgs() []string {
	if c.DbPath != "" {
		return []string{"--db", c.DbPath}
	}
	return nil
}

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	all := append(c.baseArgs(), args...)
	cmd := exec.CommandContext(ctx, c.BdBin, all...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("bd %s: %w\n%s", strings.Join(args, " "), err, string(out))
	}
	return out, nil
}

// RawTask is the JSON structure returned by bd list.
type RawTask struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	Description string `json:"description"`
	Estimate    int    `json:"estimate,omitempty"` // minutes

	// Not part of bd list output; filled from bd dep list.
	BlockedBy []string `json:"-"`
}

// DepListItem is an issue returned by bd dep list --json.
type DepListItem struct {
	ID string `json:"id"`
}

// ListOpen returns all open tasks.
func (c *Client) ListOpen(ctx context.Context) ([]RawTask, error) {
	out, err := c.run(ctx, "list", "--json", "--status", "open", "--limit", "0")
	if err != nil {
		return nil, err
	}
	return parseList(out)
}

func parseList(out []byte) ([]RawTask, error) {
	var tasks []RawTask
	if err := json.Unmarshal(out, &tasks); err != nil {
		return nil, fmt.Errorf("parse bd list output: %w", err)
	}
	return tasks, nil
}

// BlockedBy returns the IDs of the tasks that must finish before id.
func (c *Client) BlockedBy(ctx context.Context, id string) ([]string, error) {
	out, err := c.run(ctx, "dep", "list", id, "--direction=down", "--json")
	if err != nil {
		// dep list fails when a task has no deps
		out = []byte("[]")
	}
	return parseDeps(out)
}

func parseDeps(out []byte) ([]string, error) {
	var deps []DepListItem
	if err := json.Unmarshal(out, &deps); err != nil {
		return nil, fmt.Errorf("parse bd dep list: %w", err)
	}
	ids := make([]string, 0, len(deps))
	for _, d := range deps {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// OpenTasks lists open tasks and fills in their blockers. Blockers that are
// not themselves open are dropped, since closed work no longer constrains the
// schedule.
func (c *Client) OpenTasks(ctx context.Context) ([]RawTask, error) {
	tasks, err := c.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("list open tasks: %w", err)
	}

	open := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		open[t.ID] = true
	}

	for i := range tasks {
		deps, err := c.BlockedBy(ctx, tasks[i].ID)
		if err != nil {
			return nil, fmt.Errorf("deps for %s: %w", tasks[i].ID, err)
		}
		for _, d := range deps {
			if open[d] {
				tasks[i].BlockedBy = append(tasks[i].BlockedBy, d)
			}
		}
	}
	return tasks, nil
}
