package convlog

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

type SummaryStatus string

const (
	SummaryPending SummaryStatus = "pending"
	SummaryRunning SummaryStatus = "running"
	Summarized     SummaryStatus = "summarized"
	SummaryFailed  SummaryStatus = "failed"
)

// ToolCall is one entry of the persisted tool-call trace.
type ToolCall struct {
	Action string    `json:"action"`
	Kind   string    `json:"kind"`
	At     time.Time `json:"at"`
}

// Record is the write-once conversation log row produced at end of
// conversation. Only the summary lifecycle fields mutate afterwards, and only
// by the summary worker.
type Record struct {
	ID         string        `gorm:"primaryKey;size:26"` // ULID
	SessionID  string        `gorm:"size:36;uniqueIndex;not null"`
	Phone      string        `gorm:"size:20;index"`
	Name       string        `gorm:"size:100"`
	ToolCalls  string        `gorm:"type:text;not null"` // JSON []ToolCall
	DurationMS int64         `gorm:"not null"`
	Status     SummaryStatus `gorm:"type:varchar(16);index;not null"`

	// PendingAppointmentID references the booking made during the
	// conversation, if any.
	PendingAppointmentID string `gorm:"size:26"`

	// Filled by the worker
	Summary *string `gorm:"type:text"`
	Error   *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Record) TableName() string { return "conversation_logs" }

func NewRecord(sessionID, phone, name string, calls []ToolCall, duration time.Duration) (*Record, error) {
	raw, err := json.Marshal(calls)
	if err != nil {
		return nil, err
	}
	return &Record{
		ID:         ulid.Make().String(),
		SessionID:  sessionID,
		Phone:      phone,
		Name:       name,
		ToolCalls:  string(raw),
		DurationMS: duration.Milliseconds(),
		Status:     SummaryPending,
	}, nil
}

func (r *Record) Calls() ([]ToolCall, error) {
	var calls []ToolCall
	if err := json.Unmarshal([]byte(r.ToolCalls), &calls); err != nil {
		return nil, err
	}
	return calls, nil
}
