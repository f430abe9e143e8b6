package datetime

import (
	"strconv"
	"strings"
)

// Token is one recognized symbol in a format template. The string
// value of a Token is its literal template spelling, which keeps the
// template scanner trivial.
type Token string

const (
	TokenYearLong      Token = "YYYY"
	TokenYearShort     Token = "YY"
	TokenMonthName     Token = "MMMM"
	TokenMonthAbbr     Token = "MMM"
	TokenMonthPad      Token = "MM"
	TokenMonth         Token = "M"
	TokenDayName       Token = "DDDD"
	TokenDayAbbr       Token = "DDD"
	TokenDayPad        Token = "DD"
	TokenDay           Token = "D"
	TokenHour24Pad     Token = "HH"
	TokenHour24        Token = "H"
	TokenHour12Pad     Token = "hh"
	TokenHour12        Token = "h"
	TokenMinutePad     Token = "mm"
	TokenMinute        Token = "m"
	TokenMeridiemUpper Token = "A"
	TokenMeridiemLower Token = "a"
)

// tokenOrder lists every token with longer spellings before their
// prefixes, so trying them in order at a scan position is
// longest-match-wins ("YYYY" is one year token, not two short ones).
var tokenOrder = []Token{
	TokenYearLong,
	TokenMonthName,
	TokenDayName,
	TokenMonthAbbr,
	TokenDayAbbr,
	TokenYearShort,
	TokenMonthPad,
	TokenDayPad,
	TokenHour24Pad,
	TokenHour12Pad,
	TokenMinutePad,
	TokenMonth,
	TokenDay,
	TokenHour24,
	TokenHour12,
	TokenMinute,
	TokenMeridiemUpper,
	TokenMeridiemLower,
}

// Field returns the Value field a token reads. Both meridiem tokens
// read the hour.
func (t Token) Field() Field {
	switch t {
	case TokenYearLong, TokenYearShort:
		return FieldYear
	case TokenMonthName, TokenMonthAbbr, TokenMonthPad, TokenMonth:
		return FieldMonth
	case TokenDayName, TokenDayAbbr, TokenDayPad, TokenDay:
		return FieldDay
	case TokenHour24Pad, TokenHour24, TokenHour12Pad, TokenHour12,
		TokenMeridiemUpper, TokenMeridiemLower:
		return FieldHour
	case TokenMinutePad, TokenMinute:
		return FieldMinute
	}
	return ""
}

var (
	monthNames = []string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	}
	monthAbbrs = []string{
		"Jan", "Feb", "Mar", "Apr", "May", "Jun",
		"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
	}
	dayNames = []string{
		"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
	}
	dayAbbrs = []string{
		"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat",
	}
)

// segment is one piece of a scanned template: either a literal span
// or a single token. Exactly one of the two fields is set.
type segment struct {
	literal string
	token   Token
}

// scan tokenizes a template left to right into literal/token segments.
// Matching is case-sensitive; unrecognized characters become literal
// spans. The template is scanned exactly once, so substitution can
// never re-match inside already-rendered output.
func scan(template string) []segment {
	var (
		segs []segment
		lit  strings.Builder
	)

	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, segment{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(template); {
		var match Token
		for _, t := range tokenOrder {
			if strings.HasPrefix(template[i:], string(t)) {
				match = t
				break
			}
		}
		if match == "" {
			lit.WriteByte(template[i])
			i++
			continue
		}
		flush()
		segs = append(segs, segment{token: match})
		i += len(match)
	}
	flush()
	return segs
}

// Tokens returns every recognized token in the template, ordered by
// first occurrence. A token matched at several positions appears once.
func Tokens(template string) []Token {
	var (
		out  []Token
		seen = map[Token]bool{}
	)
	for _, seg := range scan(template) {
		if seg.token == "" || seen[seg.token] {
			continue
		}
		seen[seg.token] = true
		out = append(out, seg.token)
	}
	return out
}

// Render substitutes every token in the template with its rendered
// text for the given value; non-token characters pass through
// unchanged. An invalid value or empty template renders to "".
func Render(template string, v Value) string {
	if v.Kind == KindInvalid || template == "" {
		return ""
	}
	var b strings.Builder
	for _, seg := range scan(template) {
		if seg.token == "" {
			b.WriteString(seg.literal)
			continue
		}
		b.WriteString(RenderToken(seg.token, v.FieldValue(seg.token.Field())))
	}
	return b.String()
}

// RenderToken renders a single field value for one token: zero-padded
// digits for the padded numeric tokens, name-table lookups for month
// and weekday names, am/pm mapping and 0/12 wraparound for the
// 12-hour clock, and the plain integer string otherwise.
func RenderToken(t Token, value int) string {
	switch t {
	case TokenYearLong:
		return fmt4(value)
	case TokenYearShort:
		// Last two digits of the year, zero-padded.
		return fmt2(((value % 100) + 100) % 100)
	case TokenMonthPad, TokenDayPad, TokenHour24Pad, TokenMinutePad:
		return fmt2(value)
	case TokenMonthName:
		return nameOrNumber(monthNames, value)
	case TokenMonthAbbr:
		return nameOrNumber(monthAbbrs, value)
	case TokenDayName:
		return nameOrNumber(dayNames, value)
	case TokenDayAbbr:
		return nameOrNumber(dayAbbrs, value)
	case TokenMeridiemLower:
		if value < 12 {
			return "am"
		}
		return "pm"
	case TokenMeridiemUpper:
		if value < 12 {
			return "AM"
		}
		return "PM"
	case TokenHour12Pad, TokenHour12:
		if value == 0 {
			return "12"
		}
		if value > 12 {
			value -= 12
		}
		if t == TokenHour12Pad {
			return fmt2(value)
		}
		return strconv.Itoa(value)
	}
	return strconv.Itoa(value)
}

// nameOrNumber does a 1-indexed table lookup, falling back to the
// plain number for values outside the table so rendering stays total.
func nameOrNumber(names []string, value int) string {
	if value >= 1 && value <= len(names) {
		return names[value-1]
	}
	return strconv.Itoa(value)
}

func fmt2(n int) string {
	if n >= 0 && n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func fmt4(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 4 {
		s = "0" + s
	}
	return s
}
