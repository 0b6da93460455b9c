package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	appLog "github.com/thanseerjelani/dashforge-dashboard-sub000/internal/log"
	"github.com/thanseerjelani/dashforge-dashboard-sub000/internal/model"
)

// Client talks to the external CRUD backend that owns event
// persistence. All methods translate between the wire dialect and the
// internal model; see wire.go.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	loc     *time.Location

	// snapshot caches the last successful unfiltered list so the
	// dashboard can still render when the backend is unreachable.
	snapshot *snapshotCache
}

// Options configure a Client. Zero values select sensible defaults.
type Options struct {
	// Timeout bounds each HTTP round trip. Default 15s.
	Timeout time.Duration

	// Token, if set, is sent as a bearer token on every request.
	Token string

	// Location interprets the backend's zone-less timestamps.
	// Default time.Local.
	Location *time.Location

	// CacheDir, if set, enables the on-disk snapshot fallback for
	// unfiltered List calls.
	CacheDir string
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	c := &Client{
		http:    &http.Client{Timeout: opts.Timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   opts.Token,
		loc:     opts.Location,
	}
	if opts.CacheDir != "" {
		c.snapshot = newSnapshotCache(opts.CacheDir)
	}
	return c
}

// ListQuery mirrors the backend's list filter parameters. Zero fields
// are omitted from the request.
type ListQuery struct {
	Category  model.Category
	Priority  model.Priority
	Search    string
	StartDate time.Time
	EndDate   time.Time
}

func (q ListQuery) isZero() bool {
	return q.Category == "" && q.Priority == "" && q.Search == "" &&
		q.StartDate.IsZero() && q.EndDate.IsZero()
}

func (q ListQuery) values(loc *time.Location) url.Values {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", strings.ToUpper(string(q.Category)))
	}
	if q.Priority != "" {
		v.Set("priority", strings.ToUpper(string(q.Priority)))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if !q.StartDate.IsZero() {
		v.Set("startDate", encodeTime(q.StartDate, loc))
	}
	if !q.EndDate.IsZero() {
		v.Set("endDate", encodeTime(q.EndDate, loc))
	}
	return v
}

// List fetches events matching the query. When the backend is
// unreachable and the query is unfiltered, the last on-disk snapshot
// is returned instead, so a dead backend degrades to stale data
// rather than an empty dashboard.
func (c *Client) List(ctx context.Context, q ListQuery) ([]model.Event, error) {
	var ws []wireEvent
	err := c.do(ctx, "list", http.MethodGet, "/events", q.values(c.loc), nil, &ws)
	if err != nil {
		if c.snapshot != nil && q.isZero() && IsTransport(err) {
			if cached, cerr := c.snapshot.load(c.loc); cerr == nil {
				appLog.Error("event list fetch failed; serving cached snapshot", err,
					"cached_events", len(cached))
				return cached, nil
			}
		}
		return nil, err
	}

	events, derr := decodeEvents(ws, c.loc)
	if derr != nil {
		return nil, &Error{Kind: KindTransport, Op: "list", Err: derr}
	}
	if c.snapshot != nil && q.isZero() {
		if serr := c.snapshot.save(ws); serr != nil {
			appLog.Error("event snapshot save failed", serr)
		}
	}
	return events, nil
}

// Get fetches a single event by id.
func (c *Client) Get(ctx context.Context, id string) (model.Event, error) {
	var w wireEvent
	if err := c.do(ctx, "get", http.MethodGet, "/events/"+url.PathEscape(id), nil, nil, &w); err != nil {
		return model.Event{}, err
	}
	ev, err := decodeEvent(w, c.loc)
	if err != nil {
		return model.Event{}, &Error{Kind: KindTransport, Op: "get", Err: err}
	}
	return ev, nil
}

// Create persists a new event and returns the backend's copy,
// including its assigned id and audit timestamps.
func (c *Client) Create(ctx context.Context, ev model.Event) (model.Event, error) {
	var w wireEvent
	if err := c.do(ctx, "create", http.MethodPost, "/events", nil, encodeEvent(ev, c.loc), &w); err != nil {
		return model.Event{}, err
	}
	out, err := decodeEvent(w, c.loc)
	if err != nil {
		return model.Event{}, &Error{Kind: KindTransport, Op: "create", Err: err}
	}
	return out, nil
}

// Update replaces the event with the given id.
func (c *Client) Update(ctx context.Context, id string, ev model.Event) (model.Event, error) {
	var w wireEvent
	if err := c.do(ctx, "update", http.MethodPut, "/events/"+url.PathEscape(id), nil, encodeEvent(ev, c.loc), &w); err != nil {
		return model.Event{}, err
	}
	out, err := decodeEvent(w, c.loc)
	if err != nil {
		return model.Event{}, &Error{Kind: KindTransport, Op: "update", Err: err}
	}
	return out, nil
}

// Delete removes the event with the given id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, "delete", http.MethodDelete, "/events/"+url.PathEscape(id), nil, nil, nil)
}

// Stats fetches the backend's aggregate counts.
func (c *Client) Stats(ctx context.Context) (model.Stats, error) {
	var w wireStats
	if err := c.do(ctx, "stats", http.MethodGet, "/events/stats", nil, nil, &w); err != nil {
		return model.Stats{}, err
	}
	return decodeStats(w), nil
}

// Today fetches the events on the current calendar date.
func (c *Client) Today(ctx context.Context) ([]model.Event, error) {
	var ws []wireEvent
	if err := c.do(ctx, "today", http.MethodGet, "/events/today", nil, nil, &ws); err != nil {
		return nil, err
	}
	events, err := decodeEvents(ws, c.loc)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: "today", Err: err}
	}
	return events, nil
}

// Upcoming fetches events within the next N days.
func (c *Client) Upcoming(ctx context.Context, days int) ([]model.Event, error) {
	v := url.Values{}
	if days > 0 {
		v.Set("days", strconv.Itoa(days))
	}
	var ws []wireEvent
	if err := c.do(ctx, "upcoming", http.MethodGet, "/events/upcoming", v, nil, &ws); err != nil {
		return nil, err
	}
	events, err := decodeEvents(ws, c.loc)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: "upcoming", Err: err}
	}
	return events, nil
}

// CheckConflicts asks the backend for events overlapping the candidate
// time window. excludeID, when non-empty, exempts an existing event
// from the check (for updates).
func (c *Client) CheckConflicts(ctx context.Context, ev model.Event, excludeID string) ([]model.Event, error) {
	v := url.Values{}
	if excludeID != "" {
		v.Set("eventId", excludeID)
	}
	var ws []wireEvent
	if err := c.do(ctx, "conflicts", http.MethodPost, "/events/conflicts", v, encodeEvent(ev, c.loc), &ws); err != nil {
		return nil, err
	}
	events, err := decodeEvents(ws, c.loc)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: "conflicts", Err: err}
	}
	return events, nil
}

// do performs one HTTP round trip and maps the outcome onto the typed
// error taxonomy: network failures and 5xx become KindTransport, 404
// becomes KindNotFound, and remaining 4xx become KindValidation.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindTransport, Op: op, Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Kind: KindTransport, Op: op, Status: resp.StatusCode, Err: err}
		}
		return nil
	}

	msg := readErrorMessage(resp.Body)
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &Error{Kind: KindNotFound, Op: op, Status: resp.StatusCode, Message: msg}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &Error{Kind: KindValidation, Op: op, Status: resp.StatusCode, Message: msg}
	default:
		return &Error{Kind: KindTransport, Op: op, Status: resp.StatusCode, Message: msg}
	}
}

// readErrorMessage pulls a human-readable detail out of an error
// response body, accepting either {"error": "..."} or raw text.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return strings.TrimSpace(string(data))
}
