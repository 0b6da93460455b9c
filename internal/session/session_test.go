package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/model"
	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/query"
	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/remote"
)

// backendEvent mirrors the backend's wire shape.
type backendEvent struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	Priority  string `json:"priority"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func wireEvent(id, title, category string) backendEvent {
	return backendEvent{
		ID:        id,
		Title:     title,
		Category:  category,
		Priority:  "MEDIUM",
		StartTime: "2025-09-12T10:00:00",
		EndTime:   "2025-09-12T11:00:00",
	}
}

// fakeBackend is a minimal stand-in for the external CRUD backend.
type fakeBackend struct {
	mu     sync.Mutex
	events []backendEvent
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /events", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		_ = json.NewEncoder(w).Encode(b.events)
	})
	mux.HandleFunc("GET /events/stats", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"totalEvents": len(b.events),
			"byCategory":  map[string]int{},
			"byPriority":  map[string]int{},
		})
	})
	mux.HandleFunc("POST /events", func(w http.ResponseWriter, r *http.Request) {
		var ev backendEvent
		_ = json.NewDecoder(r.Body).Decode(&ev)
		ev.ID = "assigned"
		b.mu.Lock()
		b.events = append(b.events, ev)
		b.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(ev)
	})
	mux.HandleFunc("DELETE /events/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		b.mu.Lock()
		defer b.mu.Unlock()
		for i := range b.events {
			if b.events[i].ID == id {
				b.events = append(b.events[:i], b.events[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"no such event"}`))
	})
	return mux
}

func newTestSession(t *testing.T, b *fakeBackend) (*Session, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	client := remote.NewClient(srv.URL, remote.Options{Location: time.UTC})
	sess := New(client, Options{
		Location: time.UTC,
		Now: func() time.Time {
			return time.Date(2025, 9, 12, 12, 0, 0, 0, time.UTC)
		},
	})
	t.Cleanup(sess.Close)
	return sess, srv
}

func TestRefreshPopulatesStoreAndStats(t *testing.T) {
	b := &fakeBackend{events: []backendEvent{
		wireEvent("ev-1", "Team Sync", "WORK"),
		wireEvent("ev-2", "Gym", "HEALTH"),
	}}
	sess, _ := newTestSession(t, b)

	if err := sess.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if got := len(sess.Events()); got != 2 {
		t.Errorf("store holds %d events, want 2", got)
	}
	if got := sess.Stats().Total; got != 2 {
		t.Errorf("stats total = %d, want 2", got)
	}
}

func TestCreateEventRefetches(t *testing.T) {
	b := &fakeBackend{events: []backendEvent{wireEvent("ev-1", "Team Sync", "WORK")}}
	sess, _ := newTestSession(t, b)
	if err := sess.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	start := time.Date(2025, 9, 13, 9, 0, 0, 0, time.UTC)
	created, err := sess.CreateEvent(context.Background(), model.Event{
		Title:    "Dentist",
		Category: model.CategoryHealth,
		Priority: model.PriorityHigh,
		Start:    start,
		End:      start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	if created.ID != "assigned" {
		t.Errorf("created id = %q, want backend-assigned id", created.ID)
	}
	// The local store reflects the refetch, not an optimistic patch.
	if got := len(sess.Events()); got != 2 {
		t.Errorf("store holds %d events after create, want 2", got)
	}
}

func TestCreateEventValidatesBeforeNetwork(t *testing.T) {
	b := &fakeBackend{}
	sess, _ := newTestSession(t, b)

	start := time.Date(2025, 9, 13, 9, 0, 0, 0, time.UTC)
	_, err := sess.CreateEvent(context.Background(), model.Event{
		Title:    "Backwards",
		Category: model.CategoryWork,
		Priority: model.PriorityLow,
		Start:    start,
		End:      start.Add(-time.Hour),
	})

	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("CreateEvent error = %v, want *model.ValidationError", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) != 0 {
		t.Error("invalid event reached the backend")
	}
}

func TestDeleteEventNotFound(t *testing.T) {
	b := &fakeBackend{}
	sess, _ := newTestSession(t, b)

	err := sess.DeleteEvent(context.Background(), "missing")
	if !errors.Is(err, remote.ErrNotFound) {
		t.Errorf("DeleteEvent(missing) = %v, want remote.ErrNotFound", err)
	}
}

func TestVisibleEventsApplyFilter(t *testing.T) {
	b := &fakeBackend{events: []backendEvent{
		wireEvent("ev-1", "Team Sync", "WORK"),
		wireEvent("ev-2", "Gym", "HEALTH"),
		wireEvent("ev-3", "Dentist", "HEALTH"),
	}}
	sess, _ := newTestSession(t, b)
	if err := sess.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	sess.SetFilter(query.Filter{Categories: []model.Category{model.CategoryHealth}})
	if got := len(sess.VisibleEvents()); got != 2 {
		t.Errorf("visible events = %d, want 2", got)
	}
	// The unfiltered list is untouched.
	if got := len(sess.Events()); got != 3 {
		t.Errorf("full list = %d, want 3", got)
	}
}

func TestGridUsesAnchorMonth(t *testing.T) {
	b := &fakeBackend{events: []backendEvent{wireEvent("ev-1", "Team Sync", "WORK")}}
	sess, _ := newTestSession(t, b)
	if err := sess.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	sess.SetMonth(2025, time.September)
	days := sess.Grid()
	if len(days) != 42 {
		t.Fatalf("grid has %d cells, want 42", len(days))
	}

	found := false
	for _, d := range days {
		if d.HasEvents && d.Date == 12 && d.IsCurrentMonth {
			found = true
		}
	}
	if !found {
		t.Error("event missing from its grid cell")
	}

	sess.NextMonth()
	if got := sess.Anchor().Month(); got != time.October {
		t.Errorf("anchor month = %v after NextMonth, want October", got)
	}
}

func TestStaleRefreshDiscarded(t *testing.T) {
	slowEvents := []backendEvent{wireEvent("stale", "Old list", "WORK")}
	freshEvents := []backendEvent{
		wireEvent("fresh-1", "New list", "WORK"),
		wireEvent("fresh-2", "New list too", "HEALTH"),
	}

	var (
		mu        sync.Mutex
		listCalls int
	)
	entered := make(chan struct{})
	release := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /events", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		listCalls++
		call := listCalls
		mu.Unlock()

		if call == 1 {
			// First refresh: park until the second one has finished.
			close(entered)
			<-release
			_ = json.NewEncoder(w).Encode(slowEvents)
			return
		}
		_ = json.NewEncoder(w).Encode(freshEvents)
	})
	mux.HandleFunc("GET /events/stats", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"totalEvents": 2,
			"byCategory":  map[string]int{},
			"byPriority":  map[string]int{},
		})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := remote.NewClient(srv.URL, remote.Options{Location: time.UTC})
	sess := New(client, Options{Location: time.UTC})
	defer sess.Close()

	done := make(chan error, 1)
	go func() {
		done <- sess.Refresh(context.Background())
	}()

	// Wait until the first refresh is in flight, then complete a
	// second, newer refresh.
	<-entered
	if err := sess.Refresh(context.Background()); err != nil {
		t.Fatalf("second Refresh failed: %v", err)
	}

	// Let the first (now stale) refresh finish; its result must be
	// discarded rather than overwrite the fresh list.
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Refresh failed: %v", err)
	}

	events := sess.Events()
	if len(events) != 2 {
		t.Fatalf("store holds %d events, want the 2 fresh ones", len(events))
	}
	for _, ev := range events {
		if ev.ID == "stale" {
			t.Error("stale refresh overwrote the fresh event list")
		}
	}
}
