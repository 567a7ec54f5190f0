package summary

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/voicedesk/voicedesk/internal/convlog"
)

func TestTemplateSummarizer(t *testing.T) {
	rec, err := convlog.NewRecord("sess-1", "15550100100", "Ann", []convlog.ToolCall{
		{Action: "identify_user", Kind: "ok", At: time.Now()},
		{Action: "book_appointment", Kind: "ok", At: time.Now()},
	}, 95*time.Second)
	if err != nil {
		t.Fatalf("new record: %v", err)
	}

	out, err := NewTemplateSummarizer().Summarize(context.Background(), rec)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	for _, want := range []string{"Ann (15550100100)", "95s", "2 tool call(s)", "identify_user, book_appointment"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q: %s", want, out)
		}
	}
}

func TestTemplateSummarizer_UnidentifiedCaller(t *testing.T) {
	rec, err := convlog.NewRecord("sess-2", "", "", nil, time.Second)
	if err != nil {
		t.Fatalf("new record: %v", err)
	}

	out, err := NewTemplateSummarizer().Summarize(context.Background(), rec)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if !strings.Contains(out, "unidentified caller") {
		t.Errorf("expected unidentified caller wording: %s", out)
	}
	if strings.Contains(out, "Actions:") {
		t.Errorf("empty trace must not render an action list: %s", out)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register("Template", func(ctx context.Context) (Summarizer, error) {
		return NewTemplateSummarizer(), nil
	})

	// lookup is case and whitespace insensitive
	if _, err := reg.Get(context.Background(), "  template "); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := reg.Get(context.Background(), "llm"); err == nil {
		t.Fatalf("expected unknown summarizer error")
	}
}
