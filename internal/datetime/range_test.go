package datetime

import (
	"reflect"
	"testing"
)

func TestRange(t *testing.T) {
	t.Parallel()

	min := ParseString("1994-01-01T00:00:00Z")
	max := ParseString("1996-12-31T23:59:59Z")

	tests := []struct {
		name  string
		token Token
		want  []int
	}{
		{"years descend from max to min", TokenYearLong, []int{1996, 1995, 1994}},
		{"short year token uses same range", TokenYearShort, []int{1996, 1995, 1994}},
		{"months ignore bounds", TokenMonthPad, span(1, 12)},
		{"month names enumerate numerically", TokenMonthName, span(1, 12)},
		{"days are always 1..31", TokenDay, span(1, 31)},
		{"hours 24h", TokenHour24Pad, span(0, 23)},
		{"hours 12h", TokenHour12, span(1, 12)},
		{"minutes", TokenMinutePad, span(0, 59)},
		{"meridiem sentinels", TokenMeridiemLower, []int{0, 12}},
		{"meridiem upper sentinels", TokenMeridiemUpper, []int{0, 12}},
		{"weekday names have no range", TokenDayName, nil},
		{"unknown token", Token("x"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Range(tt.token, min, max)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Range(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestRangeSingleYear(t *testing.T) {
	t.Parallel()

	b := ParseString("2020-01-01")
	if got := Range(TokenYearLong, b, b); !reflect.DeepEqual(got, []int{2020}) {
		t.Errorf("Range = %v, want [2020]", got)
	}
}

func TestRangeInvertedYearBounds(t *testing.T) {
	t.Parallel()

	min := ParseString("2020-01-01")
	max := ParseString("2010-01-01")
	if got := Range(TokenYearLong, min, max); got != nil {
		t.Errorf("Range with inverted bounds = %v, want nil", got)
	}
}
