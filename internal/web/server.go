package web

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/config"
	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/event"
	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/export"
	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/grid"
	appLog "github.com/thanseerjelani/dashforge-dashboard-sub000/internal/log"
	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/model"
	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/query"
	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/remote"
	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/session"
)

// Server exposes the dashboard's calendar state over a local HTTP API.
// This is what the SPA widgets poll; the heavy lifting lives in the
// session.
type Server struct {
	cfg     *config.Config
	session *session.Session
	mux     *http.ServeMux
}

// NewServer constructs a Server around an already-initialized session.
func NewServer(cfg *config.Config, sess *session.Session) *Server {
	s := &Server{
		cfg:     cfg,
		session: sess,
		mux:     http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for this server, with basic auth
// applied when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password counts as disabled.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="dashforge", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/events", s.handleListEvents)
	s.mux.HandleFunc("POST /api/events", s.handleCreateEvent)
	s.mux.HandleFunc("GET /api/events/{id}", s.handleGetEvent)
	s.mux.HandleFunc("PUT /api/events/{id}", s.handleUpdateEvent)
	s.mux.HandleFunc("DELETE /api/events/{id}", s.handleDeleteEvent)
	s.mux.HandleFunc("GET /api/grid", s.handleGrid)
	s.mux.HandleFunc("GET /api/stats", s.handleStats)
	s.mux.HandleFunc("GET /api/export.ics", s.handleExport)
	s.mux.HandleFunc("POST /api/refresh", s.handleRefresh)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleListEvents returns the visible event list.
//
// GET /api/events?search=&categories=work,health&priorities=high
//
// Query parameters, when present, form a one-off filter; otherwise the
// session's active filter applies.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if !q.Has("search") && !q.Has("categories") && !q.Has("priorities") {
		writeJSON(w, http.StatusOK, s.session.VisibleEvents())
		return
	}

	f, err := filterFromQuery(q.Get("search"), q.Get("categories"), q.Get("priorities"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, f.Apply(s.session.Events()))
}

func filterFromQuery(search, categories, priorities string) (query.Filter, error) {
	f := query.Filter{Search: search}
	for _, part := range splitList(categories) {
		c, err := model.ParseCategory(part)
		if err != nil {
			return query.Filter{}, err
		}
		f.Categories = append(f.Categories, c)
	}
	for _, part := range splitList(priorities) {
		p, err := model.ParsePriority(part)
		if err != nil {
			return query.Filter{}, err
		}
		f.Priorities = append(f.Priorities, p)
	}
	return f, nil
}

func splitList(s string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var ev model.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created, err := s.session.CreateEvent(r.Context(), ev)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	for _, ev := range s.session.Events() {
		if ev.ID == id {
			writeJSON(w, http.StatusOK, ev)
			return
		}
	}
	writeError(w, http.StatusNotFound, "event not found")
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var ev model.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	updated, err := s.session.UpdateEvent(r.Context(), id, ev)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.session.DeleteEvent(r.Context(), r.PathValue("id")); err != nil {
		s.writeOpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGrid returns the 42-cell month grid.
//
// GET /api/grid?year=2025&month=9
//
// With no parameters, the session's anchor month is used; with both,
// the requested month is rendered without moving the anchor.
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	type gridResponse struct {
		Year  int         `json:"year"`
		Month int         `json:"month"`
		Days  []model.Day `json:"days"`
	}

	if !q.Has("year") && !q.Has("month") {
		anchor := s.session.Anchor()
		writeJSON(w, http.StatusOK, gridResponse{
			Year:  anchor.Year(),
			Month: int(anchor.Month()),
			Days:  s.session.Grid(),
		})
		return
	}

	year := parseIntDefault(q.Get("year"), 0)
	month := parseIntDefault(q.Get("month"), 0)
	if year < 1 || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "year and month are required; month must be 1-12")
		return
	}

	anchor := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, s.session.Anchor().Location())
	days := grid.Month(anchor, s.session.VisibleEvents(), grid.Options{
		WeekStart: s.cfg.WeekStart,
	})
	writeJSON(w, http.StatusOK, gridResponse{Year: year, Month: month, Days: days})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Stats())
}

// handleExport serves the visible events as an iCalendar feed.
func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="dashforge.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(export.ICS(s.session.VisibleEvents())))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Refresh(r.Context()); err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"events": len(s.session.Events())})
}

// writeOpError maps the error taxonomy onto HTTP statuses: local and
// backend validation map to 422, missing ids to 404, and everything
// the transport coughed up to 502.
func (s *Server) writeOpError(w http.ResponseWriter, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusUnprocessableEntity, ve.Error())
	case errors.Is(err, remote.ErrNotFound), errors.Is(err, event.ErrNotFound):
		writeError(w, http.StatusNotFound, "event not found")
	case remote.IsValidation(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		appLog.Error("backend operation failed", err)
		writeError(w, http.StatusBadGateway, "backend request failed")
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
