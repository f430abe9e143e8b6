// Package datetime is the value engine behind the picker: it normalizes
// heterogeneous date/time input (ISO-like strings, bare time strings,
// native time.Time values) into a single Value record, renders Values
// back to text through format templates, and enumerates the legal
// values for each template token.
//
// Every function here is total: parse failures come back as a Value
// with KindInvalid and epoch-default fields, never as an error.
package datetime

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Kind records the provenance/shape of a Value so serialization can
// reproduce the matching textual form on the way out.
type Kind string

const (
	KindInvalid Kind = "invalid"
	KindTime    Kind = "time"   // bare time string, e.g. "13:47"
	KindDate    Kind = "date"   // ISO-like date string, e.g. "1994-12-15T13:47:20Z"
	KindNative  Kind = "native" // built from a time.Time
)

// Field names one numeric component of a Value.
type Field string

const (
	FieldYear        Field = "year"
	FieldMonth       Field = "month"
	FieldDay         Field = "day"
	FieldHour        Field = "hour"
	FieldMinute      Field = "minute"
	FieldSecond      Field = "second"
	FieldMillisecond Field = "millisecond"
)

// Value is the normalized internal date/time record. Hour is always
// stored in 24-hour form; 12-hour/meridiem rendering is a display-time
// transform. TZOffsetMinutes is a signed offset from UTC; zero means
// either "Z" or "no offset present" (the two are not distinguished).
//
// Values are plain immutable data: construct via ParseString, FromTime
// or Merge, never mutate one in place.
type Value struct {
	Kind            Kind `json:"kind"`
	Year            int  `json:"year"`
	Month           int  `json:"month"`
	Day             int  `json:"day"`
	Hour            int  `json:"hour"`
	Minute          int  `json:"minute"`
	Second          int  `json:"second"`
	Millisecond     int  `json:"millisecond"`
	TZOffsetMinutes int  `json:"tz_offset_minutes"`
}

// Anchored patterns for the two accepted string shapes. Submatch slots
// are aligned so both map to [year month day hour minute second ms Z
// sign tzHour tzMinute] once the time match is padded with empty
// year/month/day slots.
var (
	// YYYY[-MM[-DD]][THH:MM[:SS[.SSS]]][Z | ±HH[:MM]]; 6-digit signed years allowed.
	isoPattern = regexp.MustCompile(`^(\d{4}|[+-]\d{6})(?:-(\d{2})(?:-(\d{2}))?)?(?:T(\d{2}):(\d{2})(?::(\d{2})(?:\.(\d{3}))?)?(?:(Z)|([+-])(\d{2})(?::(\d{2}))?)?)?$`)

	// HH:MM[:SS[.SSS]][Z | ±HH[:MM]]
	timePattern = regexp.MustCompile(`^(\d{2}):(\d{2})(?::(\d{2})(?:\.(\d{3}))?)?(?:(Z)|([+-])(\d{2})(?::(\d{2}))?)?$`)
)

// Invalid returns the all-default failure Value: epoch fields so
// downstream code can always read them without nil checks.
func Invalid() Value {
	return Value{Kind: KindInvalid, Year: 1970, Month: 1, Day: 1}
}

// ParseString parses a textual date or time into a Value. The input is
// tried against the bare-time shape first, then the extended-ISO date
// shape; anything else (including trailing unconsumed characters)
// yields KindInvalid. Parsing is strict, not forgiving: "1994-12-15T13"
// and "12/15/1994" are both rejected.
func ParseString(s string) Value {
	if s == "" {
		return Invalid()
	}

	var (
		kind Kind
		m    []string
	)
	if tm := timePattern.FindStringSubmatch(s); tm != nil {
		kind = KindTime
		// Pad with empty year/month/day slots so the field offsets
		// line up with the ISO submatch layout.
		m = append([]string{tm[0], "", "", ""}, tm[1:]...)
	} else if dm := isoPattern.FindStringSubmatch(s); dm != nil {
		kind = KindDate
		m = dm
	} else {
		return Invalid()
	}

	num := func(i int) int {
		if m[i] == "" {
			return 0
		}
		n, _ := strconv.Atoi(m[i])
		return n
	}

	v := Value{
		Kind:        kind,
		Year:        num(1),
		Month:       num(2),
		Day:         num(3),
		Hour:        num(4),
		Minute:      num(5),
		Second:      num(6),
		Millisecond: num(7),
	}

	// Timezone suffix: m[8] is "Z", m[9]/m[10]/m[11] are sign/HH/MM.
	// The sign only applies when both sign and hour digits matched.
	if m[9] != "" && m[10] != "" {
		off := num(10)*60 + num(11)
		if m[9] == "-" {
			off = -off
		}
		v.TZOffsetMinutes = off
	}

	// A literally-zero year means "not captured", not "year zero";
	// month and day likewise fall back to their minimum.
	if v.Year == 0 {
		v.Year = 1970
	}
	if v.Month == 0 {
		v.Month = 1
	}
	if v.Day == 0 {
		v.Day = 1
	}

	return v
}

// FromTime builds a Value from a native time.Time. Fields are copied
// as local wall-clock components; no zone math is applied and the
// offset is recorded as zero.
func FromTime(t time.Time) Value {
	return Value{
		Kind:        KindNative,
		Year:        t.Year(),
		Month:       int(t.Month()),
		Day:         t.Day(),
		Hour:        t.Hour(),
		Minute:      t.Minute(),
		Second:      t.Second(),
		Millisecond: t.Nanosecond() / int(time.Millisecond),
	}
}

// Merge returns a copy of v with the named fields overwritten. The
// kind is preserved and untouched fields keep their values. Merging
// into an invalid Value is a no-op; out-of-range updates are not
// validated here.
func Merge(v Value, updates map[Field]int) Value {
	if v.Kind == KindInvalid {
		return v
	}
	out := v
	for f, n := range updates {
		switch f {
		case FieldYear:
			out.Year = n
		case FieldMonth:
			out.Month = n
		case FieldDay:
			out.Day = n
		case FieldHour:
			out.Hour = n
		case FieldMinute:
			out.Minute = n
		case FieldSecond:
			out.Second = n
		case FieldMillisecond:
			out.Millisecond = n
		}
	}
	return out
}

// FieldValue reads one named field. Unknown fields read as zero.
func (v Value) FieldValue(f Field) int {
	switch f {
	case FieldYear:
		return v.Year
	case FieldMonth:
		return v.Month
	case FieldDay:
		return v.Day
	case FieldHour:
		return v.Hour
	case FieldMinute:
		return v.Minute
	case FieldSecond:
		return v.Second
	case FieldMillisecond:
		return v.Millisecond
	}
	return 0
}

// ISO serializes the Value back into the textual shape matching its
// kind: "HH:MM:SS[.SSS]" for time values, full extended ISO with a "Z"
// or "±HH:MM" suffix for everything else. Invalid values serialize to
// the empty string.
func (v Value) ISO() string {
	switch v.Kind {
	case KindInvalid:
		return ""
	case KindTime:
		s := fmt.Sprintf("%02d:%02d:%02d", v.Hour, v.Minute, v.Second)
		if v.Millisecond > 0 {
			s += fmt.Sprintf(".%03d", v.Millisecond)
		}
		return s
	default:
		s := fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d",
			v.Year, v.Month, v.Day, v.Hour, v.Minute, v.Second)
		if v.Millisecond > 0 {
			s += fmt.Sprintf(".%03d", v.Millisecond)
		}
		if v.TZOffsetMinutes == 0 {
			return s + "Z"
		}
		off := v.TZOffsetMinutes
		sign := "+"
		if off < 0 {
			sign = "-"
			off = -off
		}
		return s + fmt.Sprintf("%s%02d:%02d", sign, off/60, off%60)
	}
}

// Time converts the Value into a time.Time in a fixed zone derived
// from its offset (UTC when the offset is zero).
func (v Value) Time() time.Time {
	loc := time.UTC
	if v.TZOffsetMinutes != 0 {
		loc = time.FixedZone("", v.TZOffsetMinutes*60)
	}
	return time.Date(v.Year, time.Month(v.Month), v.Day,
		v.Hour, v.Minute, v.Second, v.Millisecond*int(time.Millisecond), loc)
}
