package remote

import (
	"fmt"
	"strings"
	"time"

	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/model"
)

// The backend speaks a slightly different dialect than the internal
// model: enum values are upper-case, and timestamps are local-format
// ISO-like strings with no zone suffix. The codec in this file is the
// only place that dialect is allowed to exist.

// wireTimeLayout is the backend's timestamp format. Values carry no
// zone; they are interpreted in the client's configured location.
const wireTimeLayout = "2006-01-02T15:04:05"

type wireEvent struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Location    string          `json:"location,omitempty"`
	Attendees   []string        `json:"attendees,omitempty"`
	Color       string          `json:"color,omitempty"`
	Category    string          `json:"category"`
	Priority    string          `json:"priority"`
	IsAllDay    bool            `json:"isAllDay"`
	StartTime   string          `json:"startTime"`
	EndTime     string          `json:"endTime"`
	Recurring   *wireRecurrence `json:"recurring,omitempty"`
	CreatedAt   string          `json:"createdAt,omitempty"`
	UpdatedAt   string          `json:"updatedAt,omitempty"`
}

type wireRecurrence struct {
	Type                string `json:"type"`
	Interval            int    `json:"interval"`
	EndDate             string `json:"endDate,omitempty"`
	EndAfterOccurrences int    `json:"endAfterOccurrences,omitempty"`
}

type wireStats struct {
	TotalEvents    int            `json:"totalEvents"`
	TodayEvents    int            `json:"todayEvents"`
	UpcomingEvents int            `json:"upcomingEvents"`
	OverdueEvents  int            `json:"overdueEvents"`
	ByCategory     map[string]int `json:"byCategory"`
	ByPriority     map[string]int `json:"byPriority"`
	CompletionRate float64        `json:"completionRate"`
}

func encodeTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(wireTimeLayout)
}

func decodeTime(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(wireTimeLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse wire time %q: %w", s, err)
	}
	return t, nil
}

func encodeEvent(ev model.Event, loc *time.Location) wireEvent {
	w := wireEvent{
		ID:          ev.ID,
		Title:       ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		Attendees:   ev.Attendees,
		Color:       ev.Color,
		Category:    strings.ToUpper(string(ev.Category)),
		Priority:    strings.ToUpper(string(ev.Priority)),
		IsAllDay:    ev.AllDay,
		StartTime:   encodeTime(ev.Start, loc),
		EndTime:     encodeTime(ev.End, loc),
	}
	if !ev.CreatedAt.IsZero() {
		w.CreatedAt = encodeTime(ev.CreatedAt, loc)
	}
	if !ev.UpdatedAt.IsZero() {
		w.UpdatedAt = encodeTime(ev.UpdatedAt, loc)
	}
	if r := ev.Recurrence; r != nil {
		wr := &wireRecurrence{
			Type:                strings.ToUpper(string(r.Type)),
			Interval:            r.Interval,
			EndAfterOccurrences: r.Count,
		}
		if r.Until != nil {
			wr.EndDate = encodeTime(*r.Until, loc)
		}
		w.Recurring = wr
	}
	return w
}

func decodeEvent(w wireEvent, loc *time.Location) (model.Event, error) {
	category, err := model.ParseCategory(w.Category)
	if err != nil {
		return model.Event{}, err
	}
	priority, err := model.ParsePriority(w.Priority)
	if err != nil {
		return model.Event{}, err
	}
	start, err := decodeTime(w.StartTime, loc)
	if err != nil {
		return model.Event{}, err
	}
	end, err := decodeTime(w.EndTime, loc)
	if err != nil {
		return model.Event{}, err
	}
	createdAt, err := decodeTime(w.CreatedAt, loc)
	if err != nil {
		return model.Event{}, err
	}
	updatedAt, err := decodeTime(w.UpdatedAt, loc)
	if err != nil {
		return model.Event{}, err
	}

	ev := model.Event{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Location:    w.Location,
		Attendees:   w.Attendees,
		Color:       w.Color,
		Category:    category,
		Priority:    priority,
		AllDay:      w.IsAllDay,
		Start:       start,
		End:         end,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
	if ev.Color == "" {
		ev.Color = category.DefaultColor()
	}
	if w.Recurring != nil {
		rt := model.RecurrenceType(strings.ToLower(w.Recurring.Type))
		if !rt.Valid() {
			return model.Event{}, fmt.Errorf("unknown recurrence type %q", w.Recurring.Type)
		}
		r := &model.Recurrence{
			Type:     rt,
			Interval: w.Recurring.Interval,
			Count:    w.Recurring.EndAfterOccurrences,
		}
		if w.Recurring.EndDate != "" {
			until, derr := decodeTime(w.Recurring.EndDate, loc)
			if derr != nil {
				return model.Event{}, derr
			}
			r.Until = &until
		}
		ev.Recurrence = r
	}
	return ev, nil
}

func decodeEvents(ws []wireEvent, loc *time.Location) ([]model.Event, error) {
	out := make([]model.Event, 0, len(ws))
	for _, w := range ws {
		ev, err := decodeEvent(w, loc)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

func decodeStats(w wireStats) model.Stats {
	s := model.Stats{
		Total:          w.TotalEvents,
		Today:          w.TodayEvents,
		Upcoming:       w.UpcomingEvents,
		Overdue:        w.OverdueEvents,
		ByCategory:     make(map[model.Category]int, len(w.ByCategory)),
		ByPriority:     make(map[model.Priority]int, len(w.ByPriority)),
		CompletionRate: w.CompletionRate,
	}
	for k, v := range w.ByCategory {
		if c, err := model.ParseCategory(k); err == nil {
			s.ByCategory[c] = v
		}
	}
	for k, v := range w.ByPriority {
		if p, err := model.ParsePriority(k); err == nil {
			s.ByPriority[p] = v
		}
	}
	return s
}
