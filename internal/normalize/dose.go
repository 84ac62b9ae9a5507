package normalize

import (
	"math"
	"regexp"
	"strings"

	"github.com/sells-group/germplasm-cli/internal/model"
)

// doseUnit matches a trailing dose unit. Longer tokens come first so "kGy"
// and "Gray" are not cut short by "Gy" and "gr".
var doseUnit = regexp.MustCompile(`(?i)^(.*?)\s*(kgy|gray|gy|gr|rad)\.?$`)

// StripDoseUnit removes a trailing unit token and parses what is left as a
// number. Text that does not parse is kept as the cleaned string ("N/A"
// stays "N/A"). Blank input yields nil.
func StripDoseUnit(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case int64:
		return t
	case float64:
		if math.IsNaN(t) {
			return nil
		}
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return int64(t)
		}
		return t
	}

	s := Text(v)
	if s == "" {
		return nil
	}
	if m := doseUnit.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}
	if s == "" {
		return nil
	}
	if n, ok := number(s); ok {
		return n
	}
	return s
}

// SplitDoseList splits a dose cell into at most model.MaxDoses cleaned
// values. Pieces beyond the tenth are dropped.
func SplitDoseList(v any) model.DoseSet {
	var doses model.DoseSet
	if model.IsEmpty(v) {
		return doses
	}
	for i, piece := range SplitDelimitedList(v) {
		if i >= model.MaxDoses {
			break
		}
		doses[i] = StripDoseUnit(piece)
	}
	return doses
}
