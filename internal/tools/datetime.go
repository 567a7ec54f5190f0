package tools

import (
	"time"

	"github.com/voicedesk/voicedesk/internal/booking"
)

func parseDate(s string) (time.Time, error) {
	return time.Parse(booking.DateLayout, s)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(booking.TimeLayout, s)
}

func beforeToday(day, now time.Time) bool {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return day.Before(today)
}
