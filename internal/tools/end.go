package tools

import (
	"context"

	"go.uber.org/zap"

	"github.com/voicedesk/voicedesk/internal/convlog"
	"github.com/voicedesk/voicedesk/internal/dialog"
	"github.com/voicedesk/voicedesk/internal/logging"
)

// End freezes the session into a write-once conversation log record and hands
// it to the summary queue. Summarization itself happens outside this core;
// a queue failure leaves the record pending rather than failing the call.
type End struct {
	deps Deps
}

func (t *End) Action() dialog.Action { return dialog.ActionEndConversation }

func (t *End) Args() []dialog.ArgSpec { return nil }

func (t *End) Invoke(ctx context.Context, sess *dialog.Session, args dialog.Args) (*dialog.Result, error) {
	_ = args

	calls := make([]convlog.ToolCall, 0, len(sess.Invocations))
	for _, inv := range sess.Invocations {
		calls = append(calls, convlog.ToolCall{
			Action: string(inv.Action),
			Kind:   string(inv.Kind),
			At:     inv.At,
		})
	}

	rec, err := convlog.NewRecord(sess.ID, sess.Phone, sess.Name, calls, sess.Duration())
	if err != nil {
		return nil, err
	}
	if sess.PendingAppointment != nil {
		rec.PendingAppointmentID = sess.PendingAppointment.ID
	}
	if err := t.deps.Logs.Create(ctx, rec); err != nil {
		return nil, err
	}

	if t.deps.Queue != nil {
		if err := t.deps.Queue.PublishLog(ctx, rec.ID); err != nil {
			logging.L().Warn("summary enqueue failed, log left pending",
				zap.String("log_id", rec.ID), zap.Error(err))
		}
	}

	payload := map[string]any{
		"log_id":           rec.ID,
		"tool_calls":       len(calls),
		"duration_seconds": int(sess.Duration().Seconds()),
	}
	if sess.PendingAppointment != nil {
		payload["pending_appointment"] = sess.PendingAppointment
	}

	return dialog.OK(
		"Thank you for using our appointment system. Goodbye!",
		payload,
	), nil
}
