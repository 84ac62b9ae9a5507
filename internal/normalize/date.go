package normalize

import (
	"strings"
	"time"
)

// OutputDateLayout is the layout of every reformatted date.
const OutputDateLayout = "2006.01.02"

// dateLayouts are tried in order against free-text dates. Month-first
// slashed dates precede day-first dotted ones, matching how the shipment
// sheets are filled in.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"2006.01.02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"02.01.2006",
	"2.1.2006",
	"01/02/06",
	"1/2/06",
	"2 January 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"20060102",
}

// FormatDate reformats a date cell as YYYY.MM.DD. Structured date-times are
// formatted directly; text is parsed best-effort and passed through verbatim
// when no layout fits.
func FormatDate(v any) any {
	if t, ok := v.(time.Time); ok {
		if t.IsZero() {
			return nil
		}
		return t.Format(OutputDateLayout)
	}
	s := Text(v)
	if s == "" {
		return nil
	}
	if t, ok := ParseDate(s); ok {
		return t.Format(OutputDateLayout)
	}
	return s
}

// ParseDate parses s against the known layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
