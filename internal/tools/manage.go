package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/voicedesk/voicedesk/internal/booking"
	"github.com/voicedesk/voicedesk/internal/dialog"
)

// Retrieve lists the caller's active bookings, ordered by date then time.
type Retrieve struct {
	deps Deps
}

func (t *Retrieve) Action() dialog.Action { return dialog.ActionRetrieveAppointments }

func (t *Retrieve) Args() []dialog.ArgSpec { return nil }

func (t *Retrieve) Invoke(ctx context.Context, sess *dialog.Session, args dialog.Args) (*dialog.Result, error) {
	_ = args
	if !sess.Identified() {
		return unidentified(), nil
	}

	appts, err := t.deps.Store.ListOwned(ctx, sess.Phone)
	if err != nil {
		return nil, err
	}
	return dialog.OK(
		fmt.Sprintf("You have %d upcoming appointment(s).", len(appts)),
		map[string]any{"appointments": appts, "count": len(appts)},
	), nil
}

// Cancel flips one of the caller's bookings to cancelled. The store performs
// the ownership check inside its transaction.
type Cancel struct {
	deps Deps
}

func (t *Cancel) Action() dialog.Action { return dialog.ActionCancelAppointment }

func (t *Cancel) Args() []dialog.ArgSpec {
	return []dialog.ArgSpec{{Name: "appointment_id", Required: true}}
}

func (t *Cancel) Invoke(ctx context.Context, sess *dialog.Session, args dialog.Args) (*dialog.Result, error) {
	if !sess.Identified() {
		return unidentified(), nil
	}

	id := args.OptionalString("appointment_id")
	appt, err := t.deps.Store.Cancel(ctx, id, sess.Phone)
	if err != nil {
		if res := storeFailure(err); res != nil {
			return res, nil
		}
		return nil, err
	}
	return dialog.OK(
		"Your appointment has been cancelled successfully.",
		map[string]any{"appointment": appt},
	), nil
}

// Modify reschedules a booking: logically cancel-old plus book-new, executed
// atomically by the store. If the new slot is taken the original booking
// remains booked.
type Modify struct {
	deps Deps
}

func (t *Modify) Action() dialog.Action { return dialog.ActionModifyAppointment }

func (t *Modify) Args() []dialog.ArgSpec {
	return []dialog.ArgSpec{
		{Name: "appointment_id", Required: true},
		{Name: "new_date"},
		{Name: "new_time"},
	}
}

func (t *Modify) Invoke(ctx context.Context, sess *dialog.Session, args dialog.Args) (*dialog.Result, error) {
	if !sess.Identified() {
		return unidentified(), nil
	}

	id := args.OptionalString("appointment_id")
	newDate := args.OptionalString("new_date")
	newTime := args.OptionalString("new_time")
	if newDate == "" && newTime == "" {
		return dialog.Failure(dialog.KindArgumentValidation,
			"at least one of new_date and new_time is required"), nil
	}

	current, err := t.deps.Store.GetByID(ctx, id)
	if err != nil {
		if res := storeFailure(err); res != nil {
			return res, nil
		}
		return nil, err
	}
	if current.Phone != sess.Phone {
		return dialog.Failure(dialog.KindOwnershipError,
			"this appointment belongs to a different phone number"), nil
	}

	if newDate == "" {
		newDate = current.Date
	}
	if newTime == "" {
		newTime = current.Time
	}
	if res := validateSlot(t.deps, newDate, newTime); res != nil {
		return res, nil
	}

	appt, err := t.deps.Store.Transfer(ctx, id, sess.Phone, newDate, newTime)
	if err != nil {
		if errors.Is(err, booking.ErrSlotTaken) {
			return dialog.Failure(dialog.KindSlotTaken,
				"The new time slot is already booked. Your original appointment is unchanged."), nil
		}
		if res := storeFailure(err); res != nil {
			return res, nil
		}
		return nil, err
	}
	return dialog.OK(
		fmt.Sprintf("Your appointment has been moved to %s at %s.", appt.Date, appt.Time),
		map[string]any{"appointment": appt},
	), nil
}

// storeFailure maps the expected booking-store outcomes onto result kinds.
// Anything else is a persistence failure the caller surfaces upward.
func storeFailure(err error) *dialog.Result {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		return dialog.Failure(dialog.KindNotFound, "Appointment not found.")
	case errors.Is(err, booking.ErrAlreadyCancelled):
		return dialog.Failure(dialog.KindAlreadyCancelled, "That appointment is already cancelled.")
	case errors.Is(err, booking.ErrOwnership):
		return dialog.Failure(dialog.KindOwnershipError, "this appointment belongs to a different phone number")
	}
	return nil
}
