package grid

import (
	"testing"
	"time"

	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/model"
)

func TestMonthAlwaysEmits42Cells(t *testing.T) {
	tests := []struct {
		name        string
		anchor      time.Time
		daysInMonth int
	}{
		{
			name:        "28-day February",
			anchor:      time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
			daysInMonth: 28,
		},
		{
			name:        "29-day leap February",
			anchor:      time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			daysInMonth: 29,
		},
		{
			name:        "30-day April",
			anchor:      time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
			daysInMonth: 30,
		},
		{
			name:        "31-day January",
			anchor:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			daysInMonth: 31,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days := Month(tt.anchor, nil, Options{Now: tt.anchor})
			if len(days) != Cells {
				t.Fatalf("got %d cells, want %d", len(days), Cells)
			}

			current := 0
			for _, d := range days {
				if d.IsCurrentMonth {
					current++
				}
			}
			if current != tt.daysInMonth {
				t.Errorf("got %d current-month cells, want %d", current, tt.daysInMonth)
			}
		})
	}
}

func TestMonthCellDatesAreContiguous(t *testing.T) {
	anchor := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	days := Month(anchor, nil, Options{Now: anchor})

	for i := 1; i < len(days); i++ {
		want := days[i-1].FullDate.AddDate(0, 0, 1)
		if !days[i].FullDate.Equal(want) {
			t.Fatalf("cell %d is %v, want %v", i, days[i].FullDate, want)
		}
	}
}

func TestMonthWeekStart(t *testing.T) {
	// September 1, 2025 is a Monday.
	anchor := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	sunday := Month(anchor, nil, Options{WeekStart: "sunday", Now: anchor})
	if sunday[0].FullDate.Weekday() != time.Sunday {
		t.Errorf("sunday grid opens on %v", sunday[0].FullDate.Weekday())
	}
	// One leading cell spills over from August.
	if sunday[0].IsCurrentMonth || sunday[0].Date != 31 {
		t.Errorf("leading cell = day %d (current=%v), want Aug 31 spillover", sunday[0].Date, sunday[0].IsCurrentMonth)
	}

	monday := Month(anchor, nil, Options{WeekStart: "monday", Now: anchor})
	if monday[0].FullDate.Weekday() != time.Monday {
		t.Errorf("monday grid opens on %v", monday[0].FullDate.Weekday())
	}
	if !monday[0].IsCurrentMonth || monday[0].Date != 1 {
		t.Errorf("monday grid leading cell = day %d, want Sep 1", monday[0].Date)
	}
}

func TestMonthPlacesEventsByCalendarDate(t *testing.T) {
	anchor := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	ev := model.Event{
		ID:       "sync",
		Title:    "Team Sync",
		Category: model.CategoryWork,
		Priority: model.PriorityHigh,
		Start:    time.Date(2025, 9, 12, 10, 0, 0, 0, time.UTC),
		End:      time.Date(2025, 9, 12, 11, 0, 0, 0, time.UTC),
	}

	days := Month(anchor, []model.Event{ev}, Options{Now: anchor})

	matched := 0
	for _, d := range days {
		if !d.HasEvents {
			continue
		}
		matched++
		if d.Date != 12 || !d.IsCurrentMonth {
			t.Errorf("event landed on day %d (current=%v), want Sep 12", d.Date, d.IsCurrentMonth)
		}
		if len(d.Events) != 1 || d.Events[0].ID != "sync" {
			t.Errorf("cell events = %v, want the single sync event", d.Events)
		}
	}
	if matched != 1 {
		t.Errorf("event appeared in %d cells, want exactly 1", matched)
	}
}

func TestMonthIsToday(t *testing.T) {
	anchor := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 9, 12, 15, 30, 0, 0, time.UTC)

	days := Month(anchor, nil, Options{Now: now})

	todays := 0
	for _, d := range days {
		if d.IsToday {
			todays++
			if d.Date != 12 {
				t.Errorf("IsToday set on day %d, want 12", d.Date)
			}
		}
	}
	if todays != 1 {
		t.Errorf("IsToday set on %d cells, want exactly 1", todays)
	}
}
