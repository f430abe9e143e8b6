// Package feed derives picker bounds from a subscribed iCalendar
// feed: the earliest and latest event start times become the min/max
// values offered to the picker.
package feed

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"dtpick/internal/datetime"
	appLog "dtpick/internal/log"
)

// maxOccurrencesPerEvent caps recurrence expansion so an unbounded
// rule cannot blow up bounds derivation.
const maxOccurrencesPerEvent = 1000

var fetchClient = &http.Client{Timeout: 15 * time.Second}

// Window bounds recurrence expansion when collecting event starts.
type Window struct {
	Start time.Time
	End   time.Time
}

// Fetch retrieves an ICS payload over HTTP.
func Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, errors.New("feed URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	appLog.Info("feed fetch start", "url", url)

	resp, err := fetchClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	appLog.Info("feed fetch success", "url", url, "bytes", len(body))
	return body, nil
}

// EventStarts parses an ICS payload and collects the start time of
// every event instance inside the window. Plain events contribute
// their DTSTART; events carrying an RRULE are expanded so later
// occurrences of a recurring event widen the derived bounds.
func EventStarts(body []byte, w Window) ([]time.Time, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	if w.End.Before(w.Start) {
		return nil, errors.New("window end is before window start")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	starts := make([]time.Time, 0)

	for _, ve := range cal.Events() {
		start, err := ve.GetStartAt()
		if err != nil {
			appLog.Error("feed: event has no usable DTSTART, skipping", err)
			continue
		}

		rruleProp := ve.GetProperty(ical.ComponentPropertyRrule)
		if rruleProp == nil || rruleProp.Value == "" {
			if inWindow(start, w) {
				starts = append(starts, start)
			}
			continue
		}

		occ, err := expandRule(rruleProp.Value, start, w)
		if err != nil {
			appLog.Error("feed: failed to expand RRULE, using DTSTART only", err, "rrule", rruleProp.Value)
			if inWindow(start, w) {
				starts = append(starts, start)
			}
			continue
		}
		starts = append(starts, occ...)
	}

	return starts, nil
}

// expandRule expands a single RRULE within the window, in the event's
// own location, capped at maxOccurrencesPerEvent.
func expandRule(raw string, start time.Time, w Window) ([]time.Time, error) {
	r, err := rrule.StrToRRule(raw)
	if err != nil {
		return nil, err
	}
	r.DTStart(start)

	var set rrule.Set
	set.RRule(r)

	occ := set.Between(w.Start.In(start.Location()), w.End.In(start.Location()), true)
	if len(occ) > maxOccurrencesPerEvent {
		occ = occ[:maxOccurrencesPerEvent]
	}
	return occ, nil
}

// Bounds reduces collected starts to min/max picker bounds. ok is
// false when there is nothing to derive from.
func Bounds(starts []time.Time) (min, max datetime.Value, ok bool) {
	if len(starts) == 0 {
		return datetime.Invalid(), datetime.Invalid(), false
	}

	earliest, latest := starts[0], starts[0]
	for _, s := range starts[1:] {
		if s.Before(earliest) {
			earliest = s
		}
		if s.After(latest) {
			latest = s
		}
	}
	return datetime.FromTime(earliest), datetime.FromTime(latest), true
}

func inWindow(t time.Time, w Window) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
