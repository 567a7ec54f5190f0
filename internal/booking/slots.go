package booking

import "time"

// Slot is a bookable (date, time-of-day) unit of availability.
type Slot struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Grid is the fixed availability window: hourly slots between OpenHour and
// CloseHour, weekdays only, scanned over WindowDays calendar days. All three
// knobs come from configuration.
type Grid struct {
	OpenHour   int
	CloseHour  int
	WindowDays int
}

func NewGrid(openHour, closeHour, windowDays int) Grid {
	if openHour < 0 || openHour > 23 {
		openHour = 9
	}
	if closeHour <= openHour || closeHour > 24 {
		closeHour = openHour + 8
	}
	if windowDays <= 0 {
		windowDays = 14
	}
	return Grid{OpenHour: openHour, CloseHour: closeHour, WindowDays: windowDays}
}

func isWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// Window returns the inclusive date range the grid scans starting the day
// after `from`.
func (g Grid) Window(from time.Time) (fromDate, toDate string) {
	start := from.AddDate(0, 0, 1)
	end := from.AddDate(0, 0, g.WindowDays)
	return start.Format(DateLayout), end.Format(DateLayout)
}

// Free enumerates the grid over its window minus the taken slots, in date
// then time order.
func (g Grid) Free(from time.Time, taken map[Slot]bool) []Slot {
	slots := make([]Slot, 0, g.WindowDays*(g.CloseHour-g.OpenHour))
	for offset := 1; offset <= g.WindowDays; offset++ {
		day := from.AddDate(0, 0, offset)
		if !isWeekday(day) {
			continue
		}
		slots = append(slots, g.freeOn(day.Format(DateLayout), taken)...)
	}
	return slots
}

// FreeOn enumerates a single day, which must lie on a weekday to yield
// anything.
func (g Grid) FreeOn(date string, taken map[Slot]bool) ([]Slot, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return nil, err
	}
	if !isWeekday(day) {
		return nil, nil
	}
	return g.freeOn(date, taken), nil
}

func (g Grid) freeOn(date string, taken map[Slot]bool) []Slot {
	var slots []Slot
	for hour := g.OpenHour; hour < g.CloseHour; hour++ {
		s := Slot{Date: date, Time: hourToTime(hour)}
		if !taken[s] {
			slots = append(slots, s)
		}
	}
	return slots
}

// InBusinessHours reports whether a parsed HH:MM lies on an hour boundary
// inside the grid's opening hours.
func (g Grid) InBusinessHours(tod string) bool {
	t, err := time.Parse(TimeLayout, tod)
	if err != nil {
		return false
	}
	if t.Minute() != 0 {
		return false
	}
	return t.Hour() >= g.OpenHour && t.Hour() < g.CloseHour
}

func hourToTime(hour int) string {
	return time.Date(0, 1, 1, hour, 0, 0, 0, time.UTC).Format(TimeLayout)
}
