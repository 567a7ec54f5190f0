package booking

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type Status string

const (
	StatusBooked    Status = "booked"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Appointment is a soft-deleted booking row: status flips, rows are never
// removed, and a cancelled row is never reused for a new booking.
type Appointment struct {
	ID        string    `gorm:"primaryKey;size:26" json:"id"` // ULID
	Phone     string    `gorm:"size:20;not null;index:idx_appt_phone_status,priority:1" json:"phone"`
	Name      string    `gorm:"size:100" json:"name,omitempty"`
	Date      string    `gorm:"size:10;not null" json:"date"` // YYYY-MM-DD
	Time      string    `gorm:"size:5;not null" json:"time"`  // HH:MM
	Status    Status    `gorm:"type:varchar(16);not null;index:idx_appt_phone_status,priority:2" json:"status"`
	Notes     string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Appointment) TableName() string { return "appointments" }

// SlotClaim enforces the one-active-booking-per-slot invariant at the store:
// the composite primary key makes a second claim for the same (date, time) a
// duplicate-key error. A claim row exists exactly while its booking is active.
type SlotClaim struct {
	Date          string    `gorm:"primaryKey;size:10"`
	Time          string    `gorm:"primaryKey;size:5"`
	AppointmentID string    `gorm:"size:26;not null;index"`
	CreatedAt     time.Time
}

func (SlotClaim) TableName() string { return "slot_claims" }

func NewAppointmentID() string {
	return ulid.Make().String()
}
