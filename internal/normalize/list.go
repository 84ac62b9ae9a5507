package normalize

import "regexp"

// listDelimiter splits on comma, semicolon, pipe, and a whitespace-bounded
// "and" or "&".
var listDelimiter = regexp.MustCompile(`,|;|\||\s+and\s+|\s+&\s+`)

// SplitDelimitedList splits a cell into trimmed, non-empty pieces. It never
// returns an empty slice: a blank or missing cell yields [""] so callers that
// emit one row per item always emit at least one.
func SplitDelimitedList(v any) []string {
	s := Text(v)
	var out []string
	for _, piece := range listDelimiter.Split(s, -1) {
		piece = Text(piece)
		if piece != "" {
			out = append(out, piece)
		}
	}
	if len(out) == 0 {
		return []string{""}
	}
	return out
}
