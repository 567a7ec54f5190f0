package booking

import "errors"

var (
	// ErrSlotTaken reports a store-level uniqueness conflict on (date, time).
	ErrSlotTaken = errors.New("slot already booked")
	// ErrNotFound covers unknown ids and rows with no active booking left.
	ErrNotFound = errors.New("appointment not found")
	// ErrAlreadyCancelled reports a cancel/modify against a cancelled row.
	ErrAlreadyCancelled = errors.New("appointment already cancelled")
	// ErrOwnership reports a phone mismatch between caller and row.
	ErrOwnership = errors.New("appointment owned by another phone")
)
