package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/voicedesk/voicedesk/internal/convlog"
)

// TemplateSummarizer renders a plain-text summary from the tool-call trace.
type TemplateSummarizer struct{}

func NewTemplateSummarizer() *TemplateSummarizer {
	return &TemplateSummarizer{}
}

func (t *TemplateSummarizer) Summarize(ctx context.Context, rec *convlog.Record) (string, error) {
	_ = ctx

	calls, err := rec.Calls()
	if err != nil {
		return "", fmt.Errorf("decode tool calls: %w", err)
	}

	caller := rec.Phone
	if rec.Name != "" {
		caller = fmt.Sprintf("%s (%s)", rec.Name, rec.Phone)
	}
	if caller == "" {
		caller = "unidentified caller"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Conversation with %s lasted %ds with %d tool call(s).",
		caller, rec.DurationMS/1000, len(calls))

	if len(calls) > 0 {
		names := make([]string, 0, len(calls))
		for _, c := range calls {
			names = append(names, c.Action)
		}
		fmt.Fprintf(&b, " Actions: %s.", strings.Join(names, ", "))
	}
	return b.String(), nil
}
