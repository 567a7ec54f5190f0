package tools

import (
	"context"
	"fmt"

	"github.com/voicedesk/voicedesk/internal/booking"
	"github.com/voicedesk/voicedesk/internal/dialog"
)

// FetchSlots enumerates the free availability grid minus every actively
// claimed slot. Read-only. With no date argument it scans the configured
// default window starting tomorrow.
type FetchSlots struct {
	deps Deps
}

func (t *FetchSlots) Action() dialog.Action { return dialog.ActionFetchSlots }

func (t *FetchSlots) Args() []dialog.ArgSpec {
	return []dialog.ArgSpec{{Name: "date"}}
}

func (t *FetchSlots) Invoke(ctx context.Context, sess *dialog.Session, args dialog.Args) (*dialog.Result, error) {
	if !sess.Identified() {
		return unidentified(), nil
	}

	grid := t.deps.Grid
	now := t.deps.now()

	var fromDate, toDate string
	if date, ok := args.String("date"); ok {
		if _, err := parseDate(date); err != nil {
			return dialog.Failure(dialog.KindArgumentValidation,
				fmt.Sprintf("argument %q: expected YYYY-MM-DD", "date")), nil
		}
		fromDate, toDate = date, date
	} else {
		fromDate, toDate = grid.Window(now)
	}

	claims, err := t.deps.Store.ClaimedBetween(ctx, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	taken := make(map[booking.Slot]bool, len(claims))
	for _, c := range claims {
		taken[booking.Slot{Date: c.Date, Time: c.Time}] = true
	}

	var slots []booking.Slot
	if fromDate == toDate {
		slots, err = grid.FreeOn(fromDate, taken)
		if err != nil {
			return nil, err
		}
	} else {
		slots = grid.Free(now, taken)
	}

	return dialog.OK(
		fmt.Sprintf("I found %d available slots.", len(slots)),
		map[string]any{"slots": slots, "total_available": len(slots)},
	), nil
}
