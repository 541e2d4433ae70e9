// Package narrate asks Claude for a plain-language reading of a computed
// critical path. The path itself is always computed locally.
package narrate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// TaskBrief is the per-task context sent alongside the summary.
type TaskBrief struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	Duration    int    `json:"duration"`
	Slack       int    `json:"slack"`
	Critical    bool   `json:"critical"`
}

// Input is everything the narrator sees.
type Input struct {
	Source  string      // file the tasks came from
	Summary string      // the deterministic report text
	Unit    string      // duration unit, e.g. "days"
	Tasks   []TaskBrief // every task with its schedule slack
}

// Client wraps the Anthropic SDK.
type Client struct {
	inner     anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewClient creates a narrator. apiKey defaults to ANTHROPIC_API_KEY env and
// model defaults to Claude Sonnet.
func NewClient(apiKey, model string, maxTokens int, opts ...option.RequestOption) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	inner := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)

	m := anthropic.Model("claude-sonnet-4-5")
	if model != "" {
		m = anthropic.Model(model)
	}

	return &Client{inner: inner, model: m, maxTokens: int64(maxTokens)}, nil
}

const systemPrompt = `You are an experienced project scheduler explaining a critical path analysis to a project owner.

You will receive:
1. A report listing the tasks on the critical path and its total duration.
2. Every task in the network with its duration and schedule slack, as JSON.

Explain in one or two short paragraphs:
- Why these tasks determine the earliest finish of the project.
- Which non-critical tasks have the least slack and could become critical.
- Where shortening a task would actually shorten the project.

Use only the numbers you are given. Do not invent tasks or durations.
`

// buildPrompt constructs the user message for Narrate.
func buildPrompt(in Input) (string, error) {
	data, err := json.MarshalIndent(in.Tasks, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal tasks: %w", err)
	}

	var b strings.Builder
	if in.Source != "" {
		fmt.Fprintf(&b, "## Source\n\n%s\n\n", in.Source)
	}
	b.WriteString("## Critical Path Report\n\n")
	b.WriteString(strings.TrimSpace(in.Summary))
	fmt.Fprintf(&b, "\n\n## Tasks (durations in %s)\n\n", in.Unit)
	b.Write(data)
	b.WriteString("\n")
	return b.String(), nil
}

// Narrate returns Claude's explanation of the analysis in in.
func (c *Client) Narrate(ctx context.Context, in Input) (string, error) {
	prompt, err := buildPrompt(in)
	if err != nil {
		return "", err
	}

	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude API call: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return strings.TrimSpace(text), nil
}
