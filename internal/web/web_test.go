package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dtpick/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{
		DisplayFormat: "MMM D, YYYY",
		PickerFormat:  "MMM|D|YYYY",
		Min:           "1994-01-01T00:00:00Z",
		Max:           "1996-12-31T23:59:59Z",
	}
	cfg.Normalize()
	return cfg
}

func doJSON(t *testing.T, h http.Handler, req *http.Request, out any) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func TestHealth(t *testing.T) {
	s := NewServer(testConfig())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestParseEndpoint(t *testing.T) {
	s := NewServer(testConfig())

	var resp struct {
		Valid bool   `json:"valid"`
		ISO   string `json:"iso"`
		Text  string `json:"text"`
		Value struct {
			Kind            string `json:"kind"`
			Year            int    `json:"year"`
			TZOffsetMinutes int    `json:"tz_offset_minutes"`
		} `json:"value"`
	}

	req := httptest.NewRequest(http.MethodGet, "/api/parse?value=1994-12-15T13:47:20.789%2B05:30", nil)
	rec := doJSON(t, s.Handler(), req, &resp)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Valid)
	assert.Equal(t, "date", resp.Value.Kind)
	assert.Equal(t, 1994, resp.Value.Year)
	assert.Equal(t, 330, resp.Value.TZOffsetMinutes)
	assert.Equal(t, "1994-12-15T13:47:20.789+05:30", resp.ISO)
	assert.Equal(t, "Dec 15, 1994", resp.Text)
}

func TestParseEndpointInvalid(t *testing.T) {
	s := NewServer(testConfig())

	var resp struct {
		Valid bool   `json:"valid"`
		ISO   string `json:"iso"`
		Text  string `json:"text"`
	}

	req := httptest.NewRequest(http.MethodGet, "/api/parse?value=12/15/1994", nil)
	doJSON(t, s.Handler(), req, &resp)

	assert.False(t, resp.Valid)
	assert.Empty(t, resp.ISO)
	assert.Empty(t, resp.Text)
}

func TestRenderEndpoint(t *testing.T) {
	s := NewServer(testConfig())

	var resp struct {
		Text string `json:"text"`
	}

	req := httptest.NewRequest(http.MethodGet,
		"/api/render?value=1994-12-15T13:47:20.789Z&format=h:mm+a", nil)
	doJSON(t, s.Handler(), req, &resp)
	assert.Equal(t, "1:47 pm", resp.Text)

	// Missing format falls back to the display format.
	req = httptest.NewRequest(http.MethodGet, "/api/render?value=1994-12-15", nil)
	doJSON(t, s.Handler(), req, &resp)
	assert.Equal(t, "Dec 15, 1994", resp.Text)
}

func TestColumnsEndpoint(t *testing.T) {
	s := NewServer(testConfig())

	var resp struct {
		Columns []struct {
			Name          string `json:"name"`
			SelectedIndex int    `json:"selected_index"`
			Options       []struct {
				Value int    `json:"value"`
				Text  string `json:"text"`
			} `json:"options"`
		} `json:"columns"`
		Min string `json:"min"`
		Max string `json:"max"`
	}

	req := httptest.NewRequest(http.MethodGet, "/api/columns?value=1995-12-15", nil)
	doJSON(t, s.Handler(), req, &resp)

	require.Len(t, resp.Columns, 3)
	assert.Equal(t, "month", resp.Columns[0].Name)
	assert.Equal(t, 11, resp.Columns[0].SelectedIndex)
	assert.Equal(t, "Dec", resp.Columns[0].Options[11].Text)

	assert.Equal(t, "year", resp.Columns[2].Name)
	require.Len(t, resp.Columns[2].Options, 3)
	assert.Equal(t, 1996, resp.Columns[2].Options[0].Value)
	assert.Equal(t, 1, resp.Columns[2].SelectedIndex)

	assert.Equal(t, "1994-01-01T00:00:00Z", resp.Min)

	// Second identical request is served from cache and must match.
	var cached struct {
		Columns []json.RawMessage `json:"columns"`
	}
	doJSON(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/api/columns?value=1995-12-15", nil), &cached)
	assert.Len(t, cached.Columns, 3)
}

func TestMergeEndpoint(t *testing.T) {
	s := NewServer(testConfig())

	body := `{"value": "1994-12-15T13:47:20Z", "updates": {"month": 2, "day": 3}}`
	req := httptest.NewRequest(http.MethodPost, "/api/merge", strings.NewReader(body))

	var resp struct {
		Valid bool `json:"valid"`
		Value struct {
			Year  int `json:"year"`
			Month int `json:"month"`
			Day   int `json:"day"`
			Hour  int `json:"hour"`
		} `json:"value"`
	}
	rec := doJSON(t, s.Handler(), req, &resp)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Valid)
	assert.Equal(t, 1994, resp.Value.Year)
	assert.Equal(t, 2, resp.Value.Month)
	assert.Equal(t, 3, resp.Value.Day)
	assert.Equal(t, 13, resp.Value.Hour)
}

func TestMergeEndpointRejectsBadBody(t *testing.T) {
	s := NewServer(testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/merge", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/merge", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestBasicAuth(t *testing.T) {
	cfg := testConfig()
	cfg.BasicAuth = &config.BasicAuthConfig{Username: "user", Password: "secret"}
	s := NewServer(cfg)
	h := s.Handler()

	// API requires credentials.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/parse?value=1994", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// /health stays open.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Correct credentials pass through.
	req := httptest.NewRequest(http.MethodGet, "/api/parse?value=1994", nil)
	req.SetBasicAuth("user", "secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
