package metrics

import (
	"math"

	"github.com/san-kum/buoysim/internal/dynamo"
	"github.com/san-kum/buoysim/internal/physics"
)

// TimeConstantFraction is the share of the commanded depth change that
// counts as having arrived.
const TimeConstantFraction = 0.95

// TimeConstant returns the time of the first record deeper than
// z_0 + 0.95*(z_target - z_0), or 0 if the trace never gets there.
func TimeConstant(trace dynamo.Trace, c physics.Constants) float64 {
	t, _ := FindTimeConstant(trace, c)
	return t
}

// FindTimeConstant is TimeConstant that also reports whether the threshold
// was crossed at all.
func FindTimeConstant(trace dynamo.Trace, c physics.Constants) (float64, bool) {
	zTh := float64((c.ZTarget-c.Z0)*TimeConstantFraction) + c.Z0
	for _, rec := range trace {
		if zTh < rec.Z {
			return rec.T, true
		}
	}
	return 0, false
}

// SettlingTime returns the time of the last record whose depth lies outside
// target ± band. A trace that never leaves the band settles at 0; one that
// ends outside it returns the final time.
func SettlingTime(trace dynamo.Trace, c physics.Constants, band float64) float64 {
	for i := len(trace) - 1; i >= 0; i-- {
		if math.Abs(trace[i].Z-c.ZTarget) > band {
			return trace[i].T
		}
	}
	return 0
}
