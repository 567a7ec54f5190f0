// Package tools implements the conversation tools dispatched by the intent
// router. Each tool is a narrow operation over the booking store and/or the
// session context; state legality is the router's job, but tools that need an
// identified phone number still guard for it defensively.
package tools

import (
	"context"
	"time"

	"github.com/voicedesk/voicedesk/internal/booking"
	"github.com/voicedesk/voicedesk/internal/convlog"
	"github.com/voicedesk/voicedesk/internal/dialog"
)

// BookingStore is the slice of the booking repository the tools consume.
type BookingStore interface {
	Book(ctx context.Context, appt *booking.Appointment) error
	GetByID(ctx context.Context, id string) (*booking.Appointment, error)
	Cancel(ctx context.Context, id, phone string) (*booking.Appointment, error)
	Transfer(ctx context.Context, id, phone, newDate, newTime string) (*booking.Appointment, error)
	ListOwned(ctx context.Context, phone string) ([]booking.Appointment, error)
	ClaimedBetween(ctx context.Context, fromDate, toDate string) ([]booking.SlotClaim, error)
}

// LogStore persists the write-once conversation log record.
type LogStore interface {
	Create(ctx context.Context, rec *convlog.Record) error
}

// Publisher enqueues a conversation log for asynchronous summarization. It
// may be nil when no queue is configured.
type Publisher interface {
	PublishLog(ctx context.Context, logID string) error
}

type Deps struct {
	Store BookingStore
	Logs  LogStore
	Queue Publisher
	Grid  booking.Grid
	Now   func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// RegisterAll wires the seven tools into the router.
func RegisterAll(r *dialog.Router, deps Deps) {
	r.Register(&Identify{})
	r.Register(&FetchSlots{deps: deps})
	r.Register(&Book{deps: deps})
	r.Register(&Retrieve{deps: deps})
	r.Register(&Cancel{deps: deps})
	r.Register(&Modify{deps: deps})
	r.Register(&End{deps: deps})
}

func unidentified() *dialog.Result {
	return dialog.Failure(dialog.KindOwnershipError,
		"no identified phone number on this session")
}
