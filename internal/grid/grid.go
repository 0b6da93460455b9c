package grid

import (
	"time"

	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/model"
)

// Cells is the fixed size of a month view: 6 full weeks, padded with
// adjacent-month days regardless of how many weeks the month spans.
const Cells = 42

// Options control grid generation.
type Options struct {
	// WeekStart is "sunday" (default) or "monday".
	WeekStart string

	// Now decides the IsToday flag. Zero means time.Now in the
	// anchor's location.
	Now time.Time
}

// Month builds the 42-cell grid for the month containing anchor.
// Leading cells spill over from the previous month, trailing cells
// from the next. Events are matched to cells by calendar-date
// equality in the anchor's location, never by instant equality.
func Month(anchor time.Time, events []model.Event, opts Options) []model.Day {
	loc := anchor.Location()
	now := opts.Now
	if now.IsZero() {
		now = time.Now().In(loc)
	}

	year, month, _ := anchor.Date()
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	_ = daysInMonth

	lead := int(firstOfMonth.Weekday())
	if opts.WeekStart == "monday" {
		lead = (lead + 6) % 7
	}

	days := make([]model.Day, 0, Cells)
	for i := 0; i < Cells; i++ {
		cellDate := firstOfMonth.AddDate(0, 0, i-lead)
		days = append(days, makeDay(cellDate, cellDate.Month() == month, now, events))
	}
	return days
}

func makeDay(date time.Time, isCurrentMonth bool, now time.Time, events []model.Event) model.Day {
	matched := eventsOn(date, events)
	return model.Day{
		Date:           date.Day(),
		FullDate:       date,
		IsCurrentMonth: isCurrentMonth,
		IsToday:        sameDate(date, now),
		Events:         matched,
		HasEvents:      len(matched) > 0,
	}
}

// eventsOn returns the events starting on the given calendar date.
func eventsOn(date time.Time, events []model.Event) []model.Event {
	out := make([]model.Event, 0)
	for _, ev := range events {
		if ev.OnDate(date) {
			out = append(out, ev)
		}
	}
	return out
}

func sameDate(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.In(a.Location()).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
