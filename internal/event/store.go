package event

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/model"
)

// ErrNotFound is returned when an operation references an id that is
// not present in the store.
var ErrNotFound = errors.New("event not found")

// Store holds the authoritative in-memory event set for one session.
// Persistence lives behind the remote client; a failed remote write is
// reconciled by the session's full refetch, not by the store itself.
type Store struct {
	mu       sync.RWMutex
	events   []model.Event
	selected string

	// now is swappable for tests.
	now func() time.Time

	// maxOccurrences caps recurrence expansion per base event.
	maxOccurrences int
}

// NewStore creates an empty store with the default expansion cap.
func NewStore() *Store {
	return &Store{
		now:            time.Now,
		maxOccurrences: DefaultMaxOccurrences,
	}
}

// Add validates eventData, assigns an id and audit timestamps, and
// appends it. If the event carries a recurrence rule, the derived
// occurrences are expanded and appended as well. It returns the stored
// base event.
func (s *Store) Add(ev model.Event) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.Color == "" {
		ev.Color = ev.Category.DefaultColor()
	}
	if err := ev.Validate(); err != nil {
		return model.Event{}, err
	}

	now := s.now()
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	ev.CreatedAt = now
	ev.UpdatedAt = now

	s.events = append(s.events, ev)

	if ev.Recurrence != nil {
		occurrences, err := Expand(ev, s.maxOccurrences)
		if err != nil {
			return model.Event{}, err
		}
		s.events = append(s.events, occurrences...)
	}

	return ev, nil
}

// Patch is a partial event update. Nil fields are left untouched.
// ClearRecurrence removes an existing rule; it wins over Recurrence.
type Patch struct {
	Title           *string
	Description     *string
	Location        *string
	Attendees       []string
	Color           *string
	Category        *model.Category
	Priority        *model.Priority
	AllDay          *bool
	Start           *time.Time
	End             *time.Time
	Recurrence      *model.Recurrence
	ClearRecurrence bool
}

func (p Patch) apply(ev model.Event) model.Event {
	if p.Title != nil {
		ev.Title = *p.Title
	}
	if p.Description != nil {
		ev.Description = *p.Description
	}
	if p.Location != nil {
		ev.Location = *p.Location
	}
	if p.Attendees != nil {
		ev.Attendees = p.Attendees
	}
	if p.Color != nil {
		ev.Color = *p.Color
	}
	if p.Category != nil {
		ev.Category = *p.Category
	}
	if p.Priority != nil {
		ev.Priority = *p.Priority
	}
	if p.AllDay != nil {
		ev.AllDay = *p.AllDay
	}
	if p.Start != nil {
		ev.Start = *p.Start
	}
	if p.End != nil {
		ev.End = *p.End
	}
	if p.ClearRecurrence {
		ev.Recurrence = nil
	} else if p.Recurrence != nil {
		ev.Recurrence = p.Recurrence
	}
	return ev
}

// Update merges patch into the matching event and refreshes UpdatedAt.
// The merged result is validated before it replaces the original; an
// invalid patch leaves the store unchanged.
func (s *Store) Update(id string, patch Patch) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.events {
		if s.events[i].ID != id {
			continue
		}
		merged := patch.apply(s.events[i])
		if err := merged.Validate(); err != nil {
			return model.Event{}, err
		}
		merged.UpdatedAt = s.now()
		s.events[i] = merged
		return merged, nil
	}
	return model.Event{}, ErrNotFound
}

// Delete removes the matching event. If the deleted event was
// selected, the selection is cleared.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.events {
		if s.events[i].ID != id {
			continue
		}
		s.events = append(s.events[:i], s.events[i+1:]...)
		if s.selected == id {
			s.selected = ""
		}
		return nil
	}
	return ErrNotFound
}

// Replace swaps the whole event set, as after a refetch from the
// backend. A selection pointing at an id that no longer exists is
// cleared.
func (s *Store) Replace(events []model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append([]model.Event(nil), events...)
	if s.selected != "" {
		found := false
		for i := range s.events {
			if s.events[i].ID == s.selected {
				found = true
				break
			}
		}
		if !found {
			s.selected = ""
		}
	}
}

// Events returns a copy of the current event list.
func (s *Store) Events() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Event(nil), s.events...)
}

// Get returns the event with the given id.
func (s *Store) Get(id string) (model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.events {
		if s.events[i].ID == id {
			return s.events[i], nil
		}
	}
	return model.Event{}, ErrNotFound
}

// Select marks the event with the given id as the current selection.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.events {
		if s.events[i].ID == id {
			s.selected = id
			return nil
		}
	}
	return ErrNotFound
}

// Selected returns the currently selected event, if any.
func (s *Store) Selected() (model.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.selected == "" {
		return model.Event{}, false
	}
	for i := range s.events {
		if s.events[i].ID == s.selected {
			return s.events[i], true
		}
	}
	return model.Event{}, false
}

// Len returns the number of events currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
