package event

import (
	"testing"
	"time"

	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/model"
)

func recurringEvent(r *model.Recurrence) model.Event {
	start := time.Date(2025, 9, 12, 10, 0, 0, 0, time.UTC)
	return model.Event{
		ID:         "base",
		Title:      "Team Sync",
		Category:   model.CategoryWork,
		Priority:   model.PriorityHigh,
		Start:      start,
		End:        start.Add(time.Hour),
		Recurrence: r,
	}
}

func TestExpandWeeklyCount(t *testing.T) {
	base := recurringEvent(&model.Recurrence{
		Type:     model.RecurWeekly,
		Interval: 1,
		Count:    4,
	})

	occurrences, err := Expand(base, DefaultMaxOccurrences)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(occurrences) != 4 {
		t.Fatalf("got %d occurrences, want 4", len(occurrences))
	}

	prev := base
	for i, occ := range occurrences {
		if got := occ.Start.Sub(prev.Start); got != 7*24*time.Hour {
			t.Errorf("occurrence %d starts %v after previous, want 168h", i, got)
		}
		if got := occ.Duration(); got != base.Duration() {
			t.Errorf("occurrence %d duration = %v, want %v", i, got, base.Duration())
		}
		if occ.ID == "" || occ.ID == base.ID {
			t.Errorf("occurrence %d id %q not freshly assigned", i, occ.ID)
		}
		if occ.Recurrence != nil {
			t.Errorf("occurrence %d carries a recurrence rule", i)
		}
		if occ.Title != base.Title || occ.Category != base.Category || occ.Priority != base.Priority {
			t.Errorf("occurrence %d did not copy base fields", i)
		}
		prev = occ
	}
}

func TestExpandDailyInterval(t *testing.T) {
	base := recurringEvent(&model.Recurrence{
		Type:     model.RecurDaily,
		Interval: 2,
		Count:    3,
	})

	occurrences, err := Expand(base, DefaultMaxOccurrences)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(occurrences) != 3 {
		t.Fatalf("got %d occurrences, want 3", len(occurrences))
	}
	for i, occ := range occurrences {
		want := base.Start.AddDate(0, 0, 2*(i+1))
		if !occ.Start.Equal(want) {
			t.Errorf("occurrence %d start = %v, want %v", i, occ.Start, want)
		}
	}
}

func TestExpandUntil(t *testing.T) {
	until := time.Date(2025, 10, 3, 23, 59, 59, 0, time.UTC)
	base := recurringEvent(&model.Recurrence{
		Type:     model.RecurWeekly,
		Interval: 1,
		Until:    &until,
	})

	occurrences, err := Expand(base, DefaultMaxOccurrences)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	// Base is Sep 12; Sep 19, Sep 26, Oct 3 fit under the bound.
	if len(occurrences) != 3 {
		t.Fatalf("got %d occurrences, want 3", len(occurrences))
	}
	for _, occ := range occurrences {
		if occ.Start.After(until) {
			t.Errorf("occurrence at %v exceeds until bound %v", occ.Start, until)
		}
	}
}

func TestExpandUnboundedHitsCap(t *testing.T) {
	base := recurringEvent(&model.Recurrence{
		Type:     model.RecurDaily,
		Interval: 1,
	})

	occurrences, err := Expand(base, 10)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(occurrences) != 10 {
		t.Errorf("got %d occurrences, want cap of 10", len(occurrences))
	}
}

func TestExpandMonthlySkipsShortMonths(t *testing.T) {
	start := time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC)
	base := model.Event{
		ID:       "base",
		Title:    "Month end review",
		Category: model.CategoryWork,
		Priority: model.PriorityMedium,
		Start:    start,
		End:      start.Add(30 * time.Minute),
		Recurrence: &model.Recurrence{
			Type:     model.RecurMonthly,
			Interval: 1,
			Count:    3,
		},
	}

	occurrences, err := Expand(base, DefaultMaxOccurrences)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(occurrences) != 3 {
		t.Fatalf("got %d occurrences, want 3", len(occurrences))
	}

	// Months without a 31st are skipped, not drifted into.
	want := []time.Time{
		time.Date(2026, 3, 31, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 5, 31, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC),
	}
	for i, occ := range occurrences {
		if !occ.Start.Equal(want[i]) {
			t.Errorf("occurrence %d start = %v, want %v", i, occ.Start, want[i])
		}
	}
}

func TestExpandNoRule(t *testing.T) {
	base := recurringEvent(nil)
	occurrences, err := Expand(base, DefaultMaxOccurrences)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(occurrences) != 0 {
		t.Errorf("got %d occurrences for non-recurring event, want 0", len(occurrences))
	}
}
