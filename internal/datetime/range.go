package datetime

// Range enumerates the legal selectable values for one token within
// the given bounds. Only the year tokens consult min/max: years run
// descending from max.Year to min.Year (most-recent-first picker
// order). Month and day ranges are fixed; day-of-month is always 1..31
// regardless of month, validation against month length is deliberately
// left to callers. The meridiem tokens yield the sentinel hours 0 and
// 12, which RenderToken maps back to am/pm.
//
// Tokens with no enumerable range (the weekday-name tokens, or
// anything unrecognized) yield nil.
func Range(t Token, min, max Value) []int {
	switch t {
	case TokenYearLong, TokenYearShort:
		if max.Year < min.Year {
			return nil
		}
		out := make([]int, 0, max.Year-min.Year+1)
		for y := max.Year; y >= min.Year; y-- {
			out = append(out, y)
		}
		return out
	case TokenMonthName, TokenMonthAbbr, TokenMonthPad, TokenMonth:
		return span(1, 12)
	case TokenDayPad, TokenDay:
		return span(1, 31)
	case TokenHour24Pad, TokenHour24:
		return span(0, 23)
	case TokenHour12Pad, TokenHour12:
		return span(1, 12)
	case TokenMinutePad, TokenMinute:
		return span(0, 59)
	case TokenMeridiemUpper, TokenMeridiemLower:
		return []int{0, 12}
	}
	return nil
}

func span(lo, hi int) []int {
	out := make([]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, i)
	}
	return out
}
