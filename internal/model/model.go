package model

import (
	"fmt"
	"strings"
	"time"
)

// Category classifies an event for filtering and statistics.
type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryHealth   Category = "health"
	CategorySocial   Category = "social"
	CategoryOther    Category = "other"
)

// Categories lists all valid categories in display order.
func Categories() []Category {
	return []Category{CategoryWork, CategoryPersonal, CategoryHealth, CategorySocial, CategoryOther}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryHealth, CategorySocial, CategoryOther:
		return true
	}
	return false
}

// DefaultColor returns the display color assigned to events of this
// category when no explicit color is set.
func (c Category) DefaultColor() string {
	switch c {
	case CategoryWork:
		return "#3b82f6"
	case CategoryPersonal:
		return "#8b5cf6"
	case CategoryHealth:
		return "#10b981"
	case CategorySocial:
		return "#f59e0b"
	default:
		return "#6b7280"
	}
}

// ParseCategory parses a category name case-insensitively. The wire
// format uses upper-case names; internal code uses lower-case.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Priority orders events by urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists all valid priorities in ascending order.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority parses a priority name case-insensitively.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q", s)
	}
	return p, nil
}

// RecurrenceType is the unit a recurrence rule advances by.
type RecurrenceType string

const (
	RecurDaily   RecurrenceType = "daily"
	RecurWeekly  RecurrenceType = "weekly"
	RecurMonthly RecurrenceType = "monthly"
	RecurYearly  RecurrenceType = "yearly"
)

// Valid reports whether t is one of the known recurrence types.
func (t RecurrenceType) Valid() bool {
	switch t {
	case RecurDaily, RecurWeekly, RecurMonthly, RecurYearly:
		return true
	}
	return false
}

// Recurrence describes how an event repeats. Expansion stops at Until
// (if set) or after Count derived occurrences (if set); with neither
// set, expansion is capped by the store's default.
type Recurrence struct {
	Type     RecurrenceType `json:"type"`
	Interval int            `json:"interval"`
	Until    *time.Time     `json:"until,omitempty"`
	Count    int            `json:"count,omitempty"`
}

// Event is a single calendar entry. A recurring base event carries a
// Recurrence rule; derived occurrences do not.
type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Location    string      `json:"location,omitempty"`
	Attendees   []string    `json:"attendees,omitempty"`
	Color       string      `json:"color,omitempty"`
	Category    Category    `json:"category"`
	Priority    Priority    `json:"priority"`
	AllDay      bool        `json:"allDay"`
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	Recurrence  *Recurrence `json:"recurrence,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Duration returns the event's length.
func (e *Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// OnDate reports whether the event starts on the same calendar date as
// t, compared in t's location. Grid placement and "today" bucketing use
// calendar-date equality, never instant equality.
func (e *Event) OnDate(t time.Time) bool {
	y1, m1, d1 := e.Start.In(t.Location()).Date()
	y2, m2, d2 := t.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// ValidationError reports a field-level validation failure. These are
// raised before any network call is made.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// Validate checks the invariants that must hold before an event is
// persisted. It returns the first violation as a *ValidationError.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return &ValidationError{Field: "title", Msg: "must not be empty"}
	}
	if !e.Category.Valid() {
		return &ValidationError{Field: "category", Msg: fmt.Sprintf("unknown value %q", e.Category)}
	}
	if !e.Priority.Valid() {
		return &ValidationError{Field: "priority", Msg: fmt.Sprintf("unknown value %q", e.Priority)}
	}
	if e.Start.IsZero() || e.End.IsZero() {
		return &ValidationError{Field: "time", Msg: "start and end are required"}
	}
	if !e.Start.Before(e.End) {
		return &ValidationError{Field: "time", Msg: "start must be before end"}
	}
	if r := e.Recurrence; r != nil {
		if !r.Type.Valid() {
			return &ValidationError{Field: "recurrence.type", Msg: fmt.Sprintf("unknown value %q", r.Type)}
		}
		if r.Interval <= 0 {
			return &ValidationError{Field: "recurrence.interval", Msg: "must be a positive integer"}
		}
		if r.Count < 0 {
			return &ValidationError{Field: "recurrence.count", Msg: "must not be negative"}
		}
		if r.Until != nil && r.Until.Before(e.Start) {
			return &ValidationError{Field: "recurrence.until", Msg: "must not precede the event start"}
		}
	}
	return nil
}

// Day is one cell of the 42-cell month grid. It is derived state,
// regenerated from the current event list and anchor month on demand.
type Day struct {
	Date           int       `json:"date"`
	FullDate       time.Time `json:"fullDate"`
	IsCurrentMonth bool      `json:"isCurrentMonth"`
	IsToday        bool      `json:"isToday"`
	Events         []Event   `json:"events"`
	HasEvents      bool      `json:"hasEvents"`
}

// Stats aggregates counts over the full event list. CompletionRate is
// reported by the backend's stats endpoint; locally computed stats
// leave it zero.
type Stats struct {
	Total          int              `json:"total"`
	Today          int              `json:"today"`
	Upcoming       int              `json:"upcoming"`
	Overdue        int              `json:"overdue"`
	ByCategory     map[Category]int `json:"byCategory"`
	ByPriority     map[Priority]int `json:"byPriority"`
	CompletionRate float64          `json:"completionRate,omitempty"`
}
