package dialog

import (
	"time"

	"github.com/google/uuid"

	"github.com/voicedesk/voicedesk/internal/booking"
)

// Session is the per-conversation mutable record. It is owned exclusively by
// its conversation: mutation is single-threaded per session and nothing here
// is shared across sessions.
type Session struct {
	ID    string `json:"id"`
	State State  `json:"state"`
	Ended bool   `json:"ended"`

	Phone string `json:"phone,omitempty"`
	Name  string `json:"name,omitempty"`

	// PendingAppointment snapshots the last booking made in this
	// conversation for the end-of-call summary.
	PendingAppointment *booking.Appointment `json:"pending_appointment,omitempty"`

	Invocations []Invocation `json:"invocations"`
	StartedAt   time.Time    `json:"started_at"`
}

// Invocation is one entry of the append-only tool-call log.
type Invocation struct {
	Action Action    `json:"action"`
	Kind   Kind      `json:"kind"`
	At     time.Time `json:"at"`
}

func NewSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		State:     StateUnidentified,
		StartedAt: time.Now(),
	}
}

func (s *Session) Identified() bool {
	return s.Phone != "" && s.State != StateUnidentified
}

func (s *Session) Duration() time.Duration {
	return time.Since(s.StartedAt)
}
