package export

import (
	"strings"

	ics "github.com/arran4/golang-ical"

	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/model"
)

const productID = "-//dashforge//calendar//EN"

// ICS renders events as an iCalendar feed. External calendar apps
// subscribe to this through the dashboard's /api/export.ics endpoint.
func ICS(events []model.Event) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	for _, ev := range events {
		ve := cal.AddEvent(ev.ID)
		ve.SetSummary(ev.Title)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if !ev.CreatedAt.IsZero() {
			ve.SetCreatedTime(ev.CreatedAt)
		}
		if !ev.UpdatedAt.IsZero() {
			ve.SetModifiedAt(ev.UpdatedAt)
		}

		if ev.AllDay {
			ve.SetAllDayStartAt(ev.Start)
			ve.SetAllDayEndAt(ev.End)
		} else {
			ve.SetStartAt(ev.Start)
			ve.SetEndAt(ev.End)
		}

		ve.SetProperty(ics.ComponentPropertyCategories, strings.ToUpper(string(ev.Category)))
		for _, attendee := range ev.Attendees {
			ve.AddAttendee(attendee)
		}
	}

	return cal.Serialize()
}
