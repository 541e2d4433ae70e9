package narrate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
)

func sampleInput() Input {
	return Input{
		Source:  "event_planning.csv",
		Summary: "The critical path consists of the following tasks:\n1. A: Select venue (3 days)\n",
		Unit:    "days",
		Tasks: []TaskBrief{
			{ID: "A", Description: "Select venue", Duration: 3, Critical: true},
			{ID: "C", Description: "Send invitations", Duration: 1, Slack: 4},
		},
	}
}

func TestNewClient_MissingKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := NewClient("", "", 0); err == nil {
		t.Fatal("expected error without an API key")
	}
}

func TestBuildPrompt_ContainsReportAndTasks(t *testing.T) {
	prompt, err := buildPrompt(sampleInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"event_planning.csv",
		"1. A: Select venue (3 days)",
		"durations in days",
		`"id": "C"`,
		`"slack": 4`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestNarrate(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &gotBody); err != nil {
			t.Errorf("request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [{"type": "text", "text": "  Venue selection drives the schedule.  "}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 6}
		}`)
	}))
	defer srv.Close()

	c, err := NewClient("test-key", "claude-test", 256, option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	got, err := c.Narrate(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("Narrate: %v", err)
	}
	if got != "Venue selection drives the schedule." {
		t.Errorf("Narrate = %q", got)
	}
	if gotBody["model"] != "claude-test" {
		t.Errorf("model = %v", gotBody["model"])
	}
	if gotBody["max_tokens"] != float64(256) {
		t.Errorf("max_tokens = %v", gotBody["max_tokens"])
	}
}
