package stats

import (
	"sort"
	"time"

	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/model"
)

// DefaultUpcomingWindow is how far ahead of "now" an event may start
// and still count as upcoming.
const DefaultUpcomingWindow = 7 * 24 * time.Hour

// Compute aggregates counts over the full event list. The breakdown
// maps always carry every known category and priority, so their values
// sum to Total even when some buckets are zero.
//
// Buckets:
//   - Today:    events on the same calendar date as now
//   - Upcoming: events starting strictly after now, within the window
//   - Overdue:  events whose end is before now
func Compute(events []model.Event, now time.Time, window time.Duration) model.Stats {
	if window <= 0 {
		window = DefaultUpcomingWindow
	}
	horizon := now.Add(window)

	s := model.Stats{
		Total:      len(events),
		ByCategory: make(map[model.Category]int, len(model.Categories())),
		ByPriority: make(map[model.Priority]int, len(model.Priorities())),
	}
	for _, c := range model.Categories() {
		s.ByCategory[c] = 0
	}
	for _, p := range model.Priorities() {
		s.ByPriority[p] = 0
	}

	for _, ev := range events {
		s.ByCategory[ev.Category]++
		s.ByPriority[ev.Priority]++

		if ev.OnDate(now) {
			s.Today++
		}
		if ev.Start.After(now) && !ev.Start.After(horizon) {
			s.Upcoming++
		}
		if ev.End.Before(now) {
			s.Overdue++
		}
	}
	return s
}

// UpcomingEvents returns the events starting strictly after now and
// within the window, sorted ascending by start time.
func UpcomingEvents(events []model.Event, now time.Time, window time.Duration) []model.Event {
	if window <= 0 {
		window = DefaultUpcomingWindow
	}
	horizon := now.Add(window)

	out := make([]model.Event, 0)
	for _, ev := range events {
		if ev.Start.After(now) && !ev.Start.After(horizon) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}
