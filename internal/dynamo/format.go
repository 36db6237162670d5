package dynamo

import (
	"math"
	"strconv"
	"strings"
)

// FormatFloat renders v in shortest round-trip form, spelled the way the
// persisted logs have always spelled it: integral values keep a trailing
// ".0", and exponent notation is used only below 1e-4 or from 1e16 up
// (0.0, 10.0, 0.0005, 7e-07, 1e+16).
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
