package export

import (
	"strings"
	"testing"
	"time"

	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/model"
)

func TestICS(t *testing.T) {
	start := time.Date(2025, 9, 12, 10, 0, 0, 0, time.UTC)
	events := []model.Event{
		{
			ID:          "ev-1",
			Title:       "Team Sync",
			Description: "Weekly catch-up",
			Location:    "Room 4",
			Category:    model.CategoryWork,
			Priority:    model.PriorityHigh,
			Start:       start,
			End:         start.Add(time.Hour),
			Attendees:   []string{"alice@example.com"},
		},
		{
			ID:       "ev-2",
			Title:    "Company offsite",
			Category: model.CategorySocial,
			Priority: model.PriorityLow,
			AllDay:   true,
			Start:    time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC),
			End:      time.Date(2025, 9, 16, 0, 0, 0, 0, time.UTC),
		},
	}

	out := ICS(events)

	if got := strings.Count(out, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("feed contains %d VEVENTs, want 2", got)
	}
	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"END:VCALENDAR",
		"SUMMARY:Team Sync",
		"LOCATION:Room 4",
		"CATEGORIES:WORK",
		"SUMMARY:Company offsite",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("feed missing %q", want)
		}
	}
}

func TestICSEmpty(t *testing.T) {
	out := ICS(nil)
	if !strings.Contains(out, "BEGIN:VCALENDAR") {
		t.Error("empty feed is not a valid calendar")
	}
	if strings.Contains(out, "BEGIN:VEVENT") {
		t.Error("empty feed contains events")
	}
}
