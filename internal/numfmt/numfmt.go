// Package numfmt renders numbers for tool output.
//
// Floats always carry a fractional part or an exponent ("2.0", "1024.0", "1e+16")
// so that callers can tell a float result from an integer one.
package numfmt

import (
	"math"
	"strconv"
	"strings"
)

// Float formats f with the shortest digits that round-trip. Values whose magnitude
// is below 1e-4 or at least 1e16 use exponent notation.
func Float(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
