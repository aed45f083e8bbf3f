package testhelpers

import (
	"time"
)

// StayDates returns a booking window starting days from today and lasting
// nights, formatted the way the inquiry endpoint expects.
func (h *TestHelper) StayDates(days, nights int) (string, string) {
	start := time.Now().UTC().AddDate(0, 0, days)
	end := start.AddDate(0, 0, nights)
	return start.Format("2006-01-02"), end.Format("2006-01-02")
}
