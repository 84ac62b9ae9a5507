// Package normalize holds the stateless cell cleaners used while resolving
// output fields: dose lists, delimited variety lists, treatment and
// specimen classification, and date reformatting.
package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Text renders a loosely-typed cell value as trimmed text. Integral floats
// are rendered without a fractional part so "12" read as 12.0 stays "12".
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format("2006-01-02")
	default:
		return ""
	}
}

// number parses s as an int64, then as a float64.
func number(s string) (any, bool) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f, true
	}
	return nil, false
}
