// Package picker turns format templates plus min/max bounds into the
// selectable column data a picker UI consumes. It owns no
// presentation: just the (value, label) option lists and the
// pre-selected index for an existing value.
package picker

import (
	"fmt"
	"time"

	"dtpick/internal/datetime"
)

// Option is one selectable entry in a column: the raw field value and
// its rendered label.
type Option struct {
	Value int    `json:"value"`
	Text  string `json:"text"`
}

// Column is the option list for one template token. Name is the Value
// field the column edits. SelectedIndex is -1 when no existing value
// matched.
type Column struct {
	Name          string   `json:"name"`
	Options       []Option `json:"options"`
	SelectedIndex int      `json:"selected_index"`
}

// Build creates one column per recognized token in the template,
// ordered as the tokens first occur. The template may use any literal
// separators between tokens ("MMM|D|YYYY" and "MMM D YYYY" build the
// same columns). Tokens that enumerate no values produce no column.
//
// When selected is a valid value, each column pre-selects the option
// whose raw integer equals the corresponding field; matching is by
// value, never by rendered text.
func Build(template string, min, max, selected datetime.Value) []Column {
	var cols []Column
	for _, tok := range datetime.Tokens(template) {
		values := datetime.Range(tok, min, max)
		if len(values) == 0 {
			continue
		}

		col := Column{
			Name:          string(tok.Field()),
			Options:       make([]Option, 0, len(values)),
			SelectedIndex: -1,
		}
		for i, v := range values {
			col.Options = append(col.Options, Option{
				Value: v,
				Text:  datetime.RenderToken(tok, v),
			})
			if selected.Kind != datetime.KindInvalid && selected.FieldValue(tok.Field()) == v {
				col.SelectedIndex = i
			}
		}
		cols = append(cols, col)
	}
	return cols
}

// DefaultBounds returns the fallback min/max used when no explicit
// bounds are configured: January 1st a hundred years before now, and
// the last second of the current year.
func DefaultBounds(now time.Time) (min, max datetime.Value) {
	min = datetime.ParseString(fmt.Sprintf("%04d-01-01T00:00:00Z", now.Year()-100))
	max = datetime.ParseString(fmt.Sprintf("%04d-12-31T23:59:59Z", now.Year()))
	return min, max
}

// Apply folds a set of per-field picks back into a value. A valid
// existing value keeps its untouched fields; otherwise the picks are
// applied over a fresh epoch date value.
func Apply(existing datetime.Value, picks map[datetime.Field]int) datetime.Value {
	if existing.Kind == datetime.KindInvalid {
		existing = datetime.ParseString("1970-01-01T00:00:00Z")
	}
	return datetime.Merge(existing, picks)
}
