package session

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/event"
	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/grid"
	appLog "github.com/thanseerjelani/dashforge-dashboard-sub000/internal/log"
	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/model"
	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/query"
	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/remote"
	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/stats"
)

// Session is the explicit state container for one dashboard session:
// the in-memory store, the remote client, the active filter, and the
// anchor month, all under one mutex. It replaces the ambient global
// store the SPA used; construct it on session start, Close it on
// teardown.
type Session struct {
	mu     sync.Mutex
	client *remote.Client
	store  *event.Store

	filter query.Filter
	anchor time.Time

	loc          *time.Location
	weekStart    string
	upcomingDays int

	// remoteStats is the backend's aggregate view, refreshed together
	// with the event list. Until the first successful refresh, Stats
	// computes locally instead.
	remoteStats model.Stats
	statsLoaded bool

	// generation orders overlapping refreshes. A response is applied
	// only if no newer refresh started after it; rapid navigation can
	// no longer overwrite fresh state with a stale response.
	generation uint64

	cron *cron.Cron
	now  func() time.Time
}

// Options configure a Session.
type Options struct {
	// Location is the display timezone. Default time.Local.
	Location *time.Location

	// WeekStart is "sunday" (default) or "monday".
	WeekStart string

	// UpcomingDays sizes the upcoming window. Default 7.
	UpcomingDays int

	// Now is swappable for tests.
	Now func() time.Time
}

// New creates a session around the given remote client. The anchor
// month starts at the current month.
func New(client *remote.Client, opts Options) *Session {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.WeekStart == "" {
		opts.WeekStart = "sunday"
	}
	if opts.UpcomingDays <= 0 {
		opts.UpcomingDays = 7
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Session{
		client:       client,
		store:        event.NewStore(),
		loc:          opts.Location,
		weekStart:    opts.WeekStart,
		upcomingDays: opts.UpcomingDays,
		now:          opts.Now,
	}
	s.anchor = s.now().In(s.loc)
	return s
}

// Refresh fetches the full event list and stats from the backend and
// replaces local state as one unit. If another refresh started while
// this one was in flight, the result is discarded as stale.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	events, err := s.client.List(ctx, remote.ListQuery{})
	if err != nil {
		return err
	}
	st, err := s.client.Stats(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		appLog.Debug("refresh result discarded as stale", "generation", gen, "current", s.generation)
		return nil
	}
	s.store.Replace(events)
	s.remoteStats = st
	s.statsLoaded = true
	return nil
}

// CreateEvent validates ev, persists it remotely, then refetches. The
// local store is only updated through the refetch; a failed create
// leaves it untouched.
func (s *Session) CreateEvent(ctx context.Context, ev model.Event) (model.Event, error) {
	if ev.Color == "" {
		ev.Color = ev.Category.DefaultColor()
	}
	if err := ev.Validate(); err != nil {
		return model.Event{}, err
	}

	created, err := s.client.Create(ctx, ev)
	if err != nil {
		return model.Event{}, err
	}
	if err := s.Refresh(ctx); err != nil {
		appLog.Error("refetch after create failed", err, "id", created.ID)
	}
	return created, nil
}

// UpdateEvent validates the replacement event, persists it, then
// refetches.
func (s *Session) UpdateEvent(ctx context.Context, id string, ev model.Event) (model.Event, error) {
	if err := ev.Validate(); err != nil {
		return model.Event{}, err
	}

	updated, err := s.client.Update(ctx, id, ev)
	if err != nil {
		return model.Event{}, err
	}
	if err := s.Refresh(ctx); err != nil {
		appLog.Error("refetch after update failed", err, "id", id)
	}
	return updated, nil
}

// DeleteEvent removes the event remotely, then refetches. The refetch
// clears any selection that pointed at the deleted id.
func (s *Session) DeleteEvent(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.Refresh(ctx); err != nil {
		appLog.Error("refetch after delete failed", err, "id", id)
	}
	return nil
}

// CheckConflicts asks the backend for events overlapping ev's window.
func (s *Session) CheckConflicts(ctx context.Context, ev model.Event, excludeID string) ([]model.Event, error) {
	return s.client.CheckConflicts(ctx, ev, excludeID)
}

// SetFilter replaces the active filter.
func (s *Session) SetFilter(f query.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
}

// Filter returns the active filter.
func (s *Session) Filter() query.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// SetMonth moves the anchor to the given month.
func (s *Session) SetMonth(year int, month time.Month) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anchor = time.Date(year, month, 1, 0, 0, 0, 0, s.loc)
}

// NextMonth advances the anchor by one month.
func (s *Session) NextMonth() {
	s.shiftMonth(1)
}

// PrevMonth moves the anchor back by one month.
func (s *Session) PrevMonth() {
	s.shiftMonth(-1)
}

func (s *Session) shiftMonth(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	y, m, _ := s.anchor.Date()
	s.anchor = time.Date(y, m+time.Month(delta), 1, 0, 0, 0, 0, s.loc)
}

// Anchor returns the first day of the currently viewed month.
func (s *Session) Anchor() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	y, m, _ := s.anchor.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, s.loc)
}

// Events returns the full unfiltered event list.
func (s *Session) Events() []model.Event {
	return s.store.Events()
}

// VisibleEvents applies the active filter to the event list.
func (s *Session) VisibleEvents() []model.Event {
	s.mu.Lock()
	f := s.filter
	s.mu.Unlock()
	return f.Apply(s.store.Events())
}

// Grid builds the 42-cell month view for the anchor month from the
// currently visible events.
func (s *Session) Grid() []model.Day {
	s.mu.Lock()
	anchor := s.anchor
	weekStart := s.weekStart
	s.mu.Unlock()

	return grid.Month(anchor, s.VisibleEvents(), grid.Options{
		WeekStart: weekStart,
		Now:       s.now().In(s.loc),
	})
}

// Stats returns the backend's aggregate counts from the last refresh,
// or a locally computed aggregate if none has succeeded yet. Stats are
// always computed over the full list, not the filtered one.
func (s *Session) Stats() model.Stats {
	s.mu.Lock()
	loaded := s.statsLoaded
	st := s.remoteStats
	upcomingDays := s.upcomingDays
	s.mu.Unlock()

	if loaded {
		return st
	}
	window := time.Duration(upcomingDays) * 24 * time.Hour
	return stats.Compute(s.store.Events(), s.now().In(s.loc), window)
}

// SelectEvent marks an event as selected.
func (s *Session) SelectEvent(id string) error {
	return s.store.Select(id)
}

// SelectedEvent returns the current selection, if any.
func (s *Session) SelectedEvent() (model.Event, bool) {
	return s.store.Selected()
}

// ApplyConfig updates the filter-independent settings that are safe to
// hot-reload.
func (s *Session) ApplyConfig(weekStart string, upcomingDays int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if weekStart == "sunday" || weekStart == "monday" {
		s.weekStart = weekStart
	}
	if upcomingDays > 0 {
		s.upcomingDays = upcomingDays
	}
}

// StartAutoRefresh schedules background refreshes on the given cron
// expression. Each run gets its own timeout; failures are logged and
// the next run proceeds normally.
func (s *Session) StartAutoRefresh(cronSpec string) error {
	c := cron.New()
	_, err := c.AddFunc(cronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.Refresh(ctx); err != nil {
			appLog.Error("scheduled refresh failed", err)
		}
	})
	if err != nil {
		return err
	}
	c.Start()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		s.cron.Stop()
	}
	s.cron = c
	return nil
}

// Close stops background work. The session must not be used after.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
	}
}
