package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/voicedesk/voicedesk/internal/booking"
	"github.com/voicedesk/voicedesk/internal/dialog"
)

// Book attempts to claim (date, time) for the identified caller. A concurrent
// booking of the same slot comes back as slot_taken; the caller must pick a
// different slot, there is no automatic retry.
type Book struct {
	deps Deps
}

func (t *Book) Action() dialog.Action { return dialog.ActionBookAppointment }

func (t *Book) Args() []dialog.ArgSpec {
	return []dialog.ArgSpec{
		{Name: "date", Required: true},
		{Name: "time", Required: true},
		{Name: "notes"},
	}
}

// validateSlot checks a candidate slot against the calendar and the business
// hours policy. Returns nil when the slot is bookable.
func (t *Book) validateSlot(date, tod string) *dialog.Result {
	return validateSlot(t.deps, date, tod)
}

func validateSlot(deps Deps, date, tod string) *dialog.Result {
	day, err := parseDate(date)
	if err != nil {
		return dialog.Failure(dialog.KindArgumentValidation,
			fmt.Sprintf("argument %q: expected YYYY-MM-DD", "date"))
	}
	if _, err := parseTime(tod); err != nil {
		return dialog.Failure(dialog.KindArgumentValidation,
			fmt.Sprintf("argument %q: expected HH:MM", "time"))
	}
	if beforeToday(day, deps.now()) {
		return dialog.Failure(dialog.KindArgumentValidation,
			fmt.Sprintf("argument %q: cannot book appointments in the past", "date"))
	}
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return dialog.Failure(dialog.KindArgumentValidation,
			fmt.Sprintf("argument %q: appointments are available on weekdays only", "date"))
	}
	if !deps.Grid.InBusinessHours(tod) {
		return dialog.Failure(dialog.KindArgumentValidation,
			fmt.Sprintf("argument %q: appointments are available on the hour between %02d:00 and %02d:00",
				"time", deps.Grid.OpenHour, deps.Grid.CloseHour))
	}
	return nil
}

func (t *Book) Invoke(ctx context.Context, sess *dialog.Session, args dialog.Args) (*dialog.Result, error) {
	if !sess.Identified() {
		return unidentified(), nil
	}

	date := args.OptionalString("date")
	tod := args.OptionalString("time")
	if res := t.validateSlot(date, tod); res != nil {
		return res, nil
	}

	appt := &booking.Appointment{
		Phone: sess.Phone,
		Name:  sess.Name,
		Date:  date,
		Time:  tod,
		Notes: args.OptionalString("notes"),
	}
	if err := t.deps.Store.Book(ctx, appt); err != nil {
		if errors.Is(err, booking.ErrSlotTaken) {
			return dialog.Failure(dialog.KindSlotTaken,
				"This time slot is already booked. Please choose another time."), nil
		}
		return nil, err
	}

	sess.PendingAppointment = appt

	return dialog.OK(
		fmt.Sprintf("Perfect! I've booked your appointment for %s at %s. Confirmation ID: %s",
			date, tod, appt.ID),
		map[string]any{"appointment": appt, "confirmation_id": appt.ID},
	), nil
}
