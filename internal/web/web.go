package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"dtpick/internal/config"
	"dtpick/internal/datetime"
	"dtpick/internal/feed"
	appLog "dtpick/internal/log"
	"dtpick/internal/picker"
)

// Server exposes the datetime engine over HTTP: parsing, rendering,
// merging and picker column generation.
type Server struct {
	cfg *config.Config
	mux *http.ServeMux

	// Current picker bounds. Recomputed by RefreshBounds (config
	// values, feed-derived values, or year-relative defaults).
	boundsMu sync.RWMutex
	min      datetime.Value
	max      datetime.Value

	// Single-entry cache for /api/columns responses, keyed by the raw
	// query string. Column lists are fully determined by the query
	// plus the current bounds, so a short TTL is enough.
	colMu    sync.RWMutex
	colCache *columnsCache
}

const columnsCacheTTL = 30 * time.Second

type columnsCache struct {
	key       string
	resp      columnsResponse
	updatedAt time.Time
}

// NewServer constructs a new Server with bounds already resolved once.
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		cfg: cfg,
		mux: http.NewServeMux(),
	}
	s.registerRoutes()
	s.RefreshBounds(context.Background())
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password is treated as disabled.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /health stays reachable without credentials.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="dtpick", charset="UTF-8"`)
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
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/parse", s.handleParse)
	s.mux.HandleFunc("/api/render", s.handleRender)
	s.mux.HandleFunc("/api/columns", s.handleColumns)
	s.mux.HandleFunc("/api/merge", s.handleMerge)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// RefreshBounds recomputes the picker min/max. Resolution order:
// configured min/max strings, then bounds derived from the configured
// ICS feed, then year-relative defaults. Defaults depend on "today",
// which is why a long-running server re-runs this on a cron schedule.
func (s *Server) RefreshBounds(ctx context.Context) {
	min, max := picker.DefaultBounds(time.Now())

	if v := datetime.ParseString(s.cfg.Min); v.Kind != datetime.KindInvalid {
		min = v
	}
	if v := datetime.ParseString(s.cfg.Max); v.Kind != datetime.KindInvalid {
		max = v
	}

	if s.cfg.BoundsICS != "" {
		if fmin, fmax, ok := s.feedBounds(ctx, min, max); ok {
			min, max = fmin, fmax
		}
	}

	s.boundsMu.Lock()
	s.min, s.max = min, max
	s.boundsMu.Unlock()

	// Bounds changed, so cached columns are stale.
	s.colMu.Lock()
	s.colCache = nil
	s.colMu.Unlock()

	appLog.Info("picker bounds refreshed", "min", min.ISO(), "max", max.ISO())
}

// feedBounds fetches the configured ICS feed and derives bounds from
// its event starts, expanding recurrences within the current bounds
// window.
func (s *Server) feedBounds(ctx context.Context, min, max datetime.Value) (datetime.Value, datetime.Value, bool) {
	body, err := feed.Fetch(ctx, s.cfg.BoundsICS)
	if err != nil {
		appLog.Error("bounds feed fetch failed", err, "url", s.cfg.BoundsICS)
		return min, max, false
	}

	starts, err := feed.EventStarts(body, feed.Window{Start: min.Time(), End: max.Time()})
	if err != nil {
		appLog.Error("bounds feed parse failed", err, "url", s.cfg.BoundsICS)
		return min, max, false
	}

	fmin, fmax, ok := feed.Bounds(starts)
	if !ok {
		appLog.Info("bounds feed contained no events in window", "url", s.cfg.BoundsICS)
		return min, max, false
	}
	return fmin, fmax, true
}

func (s *Server) bounds() (datetime.Value, datetime.Value) {
	s.boundsMu.RLock()
	defer s.boundsMu.RUnlock()
	return s.min, s.max
}

// valueResponse is the JSON shape for a normalized value.
type valueResponse struct {
	Valid bool           `json:"valid"`
	Value datetime.Value `json:"value"`
	ISO   string         `json:"iso"`
	Text  string         `json:"text"`
}

func (s *Server) valueResponse(v datetime.Value) valueResponse {
	return valueResponse{
		Valid: v.Kind != datetime.KindInvalid,
		Value: v,
		ISO:   v.ISO(),
		Text:  datetime.Render(s.cfg.DisplayFormat, v),
	}
}

// handleParse normalizes a raw value string.
//
// GET /api/parse?value=1994-12-15T13:47:20Z
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	v := datetime.ParseString(r.URL.Query().Get("value"))
	writeJSON(w, http.StatusOK, s.valueResponse(v))
}

// handleRender renders a value through a template.
//
// GET /api/render?value=...&format=h:mm a
// format defaults to the configured display format.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	format := q.Get("format")
	if format == "" {
		format = s.cfg.DisplayFormat
	}

	v := datetime.ParseString(q.Get("value"))

	type renderResponse struct {
		Text string `json:"text"`
	}
	writeJSON(w, http.StatusOK, renderResponse{Text: datetime.Render(format, v)})
}

// columnsResponse is the JSON response shape for /api/columns.
type columnsResponse struct {
	Columns []picker.Column `json:"columns"`
	Min     string          `json:"min"`
	Max     string          `json:"max"`
}

// handleColumns builds picker columns for a template within the
// server's current bounds.
//
// GET /api/columns?format=MMM|D|YYYY&value=1995-12-15
//   - format: column template (defaults to the configured picker format)
//   - value:  optional existing value used to pre-select options
func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	key := r.URL.RawQuery
	now := time.Now()

	s.colMu.RLock()
	cc := s.colCache
	s.colMu.RUnlock()
	if cc != nil && cc.key == key && now.Sub(cc.updatedAt) < columnsCacheTTL {
		writeJSON(w, http.StatusOK, cc.resp)
		return
	}

	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = s.cfg.PickerFormat
	}

	selected := datetime.ParseString(q.Get("value"))
	min, max := s.bounds()

	cols := picker.Build(format, min, max, selected)
	if cols == nil {
		cols = []picker.Column{}
	}

	resp := columnsResponse{
		Columns: cols,
		Min:     min.ISO(),
		Max:     max.ISO(),
	}

	s.colMu.Lock()
	s.colCache = &columnsCache{key: key, resp: resp, updatedAt: time.Now()}
	s.colMu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// mergeRequest is the JSON request shape for /api/merge: an existing
// value plus the fields the user actually changed.
type mergeRequest struct {
	Value   string         `json:"value"`
	Updates map[string]int `json:"updates"`
}

// handleMerge applies partial field updates to an existing value.
//
// POST /api/merge {"value": "1994-12-15T13:47:20Z", "updates": {"month": 2}}
func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	existing := datetime.ParseString(req.Value)

	picks := make(map[datetime.Field]int, len(req.Updates))
	for k, n := range req.Updates {
		picks[datetime.Field(k)] = n
	}

	merged := picker.Apply(existing, picks)
	writeJSON(w, http.StatusOK, s.valueResponse(merged))
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
