package query

import (
	"strings"
	"time"

	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/model"
)

// Filter selects the visible subset of the event list. All criteria
// are multi-select: an empty Categories or Priorities slice matches
// every event, and an empty Search matches everything.
//
// From/To, when non-zero, restrict to events whose time window
// overlaps [From, To].
type Filter struct {
	Search     string
	Categories []model.Category
	Priorities []model.Priority
	From       time.Time
	To         time.Time
}

// Apply returns the events matching the filter. It is a pure function
// of its inputs: applying the same filter twice yields the same list.
func (f Filter) Apply(events []model.Event) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if f.Matches(&ev) {
			out = append(out, ev)
		}
	}
	return out
}

// Matches reports whether a single event passes every criterion.
func (f Filter) Matches(ev *model.Event) bool {
	if !matchesSearch(ev, f.Search) {
		return false
	}
	if len(f.Categories) > 0 && !containsCategory(f.Categories, ev.Category) {
		return false
	}
	if len(f.Priorities) > 0 && !containsPriority(f.Priorities, ev.Priority) {
		return false
	}
	if !f.From.IsZero() && ev.End.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && ev.Start.After(f.To) {
		return false
	}
	return true
}

// matchesSearch is a case-insensitive substring match against title
// and description. An empty query matches everything.
func matchesSearch(ev *model.Event, search string) bool {
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(ev.Title), q) {
		return true
	}
	return strings.Contains(strings.ToLower(ev.Description), q)
}

func containsCategory(set []model.Category, c model.Category) bool {
	for _, v := range set {
		if v == c {
			return true
		}
	}
	return false
}

func containsPriority(set []model.Priority, p model.Priority) bool {
	for _, v := range set {
		if v == p {
			return true
		}
	}
	return false
}
