package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dtpick/internal/datetime"
)

func sampleICS() []byte {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//dtpick//test//EN",
		"BEGIN:VEVENT",
		"UID:single@test",
		"DTSTAMP:20250101T000000Z",
		"DTSTART:20250310T090000Z",
		"SUMMARY:Standup",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:weekly@test",
		"DTSTAMP:20250101T000000Z",
		"DTSTART:20250301T120000Z",
		"RRULE:FREQ=WEEKLY;COUNT=4",
		"SUMMARY:Weekly sync",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}
	return []byte(strings.Join(lines, "\r\n"))
}

func marchWindow() Window {
	return Window{
		Start: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.March, 31, 23, 59, 59, 0, time.UTC),
	}
}

func TestEventStarts(t *testing.T) {
	starts, err := EventStarts(sampleICS(), marchWindow())
	require.NoError(t, err)

	// One plain event plus four weekly occurrences.
	require.Len(t, starts, 5)

	earliest, latest := starts[0], starts[0]
	for _, s := range starts {
		if s.Before(earliest) {
			earliest = s
		}
		if s.After(latest) {
			latest = s
		}
	}
	assert.Equal(t, time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC), earliest.UTC())
	assert.Equal(t, time.Date(2025, time.March, 22, 12, 0, 0, 0, time.UTC), latest.UTC())
}

func TestEventStartsWindowFilters(t *testing.T) {
	w := Window{
		Start: time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC),
	}

	starts, err := EventStarts(sampleICS(), w)
	require.NoError(t, err)
	assert.Empty(t, starts)
}

func TestEventStartsRejectsEmptyBody(t *testing.T) {
	_, err := EventStarts(nil, marchWindow())
	assert.Error(t, err)
}

func TestEventStartsRejectsInvertedWindow(t *testing.T) {
	w := marchWindow()
	w.Start, w.End = w.End, w.Start
	_, err := EventStarts(sampleICS(), w)
	assert.Error(t, err)
}

func TestBounds(t *testing.T) {
	starts, err := EventStarts(sampleICS(), marchWindow())
	require.NoError(t, err)

	min, max, ok := Bounds(starts)
	require.True(t, ok)

	assert.Equal(t, datetime.KindNative, min.Kind)
	assert.Equal(t, 2025, min.Year)
	assert.Equal(t, 3, min.Month)
	assert.Equal(t, 1, min.Day)

	assert.Equal(t, 2025, max.Year)
	assert.Equal(t, 3, max.Month)
	assert.Equal(t, 22, max.Day)
}

func TestBoundsEmpty(t *testing.T) {
	_, _, ok := Bounds(nil)
	assert.False(t, ok)
}
