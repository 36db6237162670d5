package metrics

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/buoysim/internal/dynamo"
	"github.com/san-kum/buoysim/internal/physics"
)

const (
	// MSEThreshold is the upper bound on mean squared depth error [m^2].
	MSEThreshold = 36.0
	// OvershootThreshold is the upper bound on |peak depth - target| [m].
	OvershootThreshold = 0.5
)

// Criterion selects an acceptance rule.
type Criterion string

const (
	MSE       Criterion = "mse"
	Overshoot Criterion = "overshoot"
)

var criteria = map[Criterion]struct {
	tag  string
	eval func(dynamo.Trace, physics.Constants) (Verdict, error)
}{
	MSE:       {tag: "mse", eval: EvaluateMSE},
	Overshoot: {tag: "over", eval: EvaluateOvershoot},
}

// Criteria lists all known criteria, sorted by name.
func Criteria() []Criterion {
	out := make([]Criterion, 0, len(criteria))
	for c := range criteria {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseCriterion accepts a criterion name or its diagnostic tag.
func ParseCriterion(name string) (Criterion, error) {
	for c, def := range criteria {
		if name == string(c) || name == def.tag {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q (available: %v)", dynamo.ErrUnknownCriterion, name, Criteria())
}

// Tag is the short label used in diagnostics and summary records.
func (c Criterion) Tag() string {
	if def, ok := criteria[c]; ok {
		return def.tag
	}
	return string(c)
}

func (c Criterion) Evaluate(trace dynamo.Trace, consts physics.Constants) (Verdict, error) {
	def, ok := criteria[c]
	if !ok {
		return Verdict{}, fmt.Errorf("%w: %q", dynamo.ErrUnknownCriterion, string(c))
	}
	return def.eval(trace, consts)
}

// Verdict is the outcome of one acceptance check.
type Verdict struct {
	Criterion Criterion `json:"criterion"`
	Passed    bool      `json:"passed"`
	Value     float64   `json:"value"`
}

// Diagnostic renders "<tag>,<value>", the form stored in summary records.
func (v Verdict) Diagnostic() string {
	return v.Criterion.Tag() + "," + dynamo.FormatFloat(v.Value)
}

// EvaluateMSE passes when the mean of (target - z)^2 over the trace is
// below MSEThreshold. An empty trace has no mean and is rejected with
// dynamo.ErrEmptyTrace.
func EvaluateMSE(trace dynamo.Trace, c physics.Constants) (Verdict, error) {
	if len(trace) == 0 {
		return Verdict{Criterion: MSE}, fmt.Errorf("mse: %w", dynamo.ErrEmptyTrace)
	}

	r := 0.0
	for _, rec := range trace {
		d := c.ZTarget - rec.Z
		r += float64(d * d)
	}
	r /= float64(len(trace))

	return Verdict{Criterion: MSE, Passed: r < MSEThreshold, Value: r}, nil
}

// EvaluateOvershoot passes when the deepest point of the trace lies within
// OvershootThreshold of the target. The peak scan starts from the surface
// (0 m), so it only measures overshoot for dives that start at z_0 = 0;
// other starting depths are rejected with dynamo.ErrPrecondition.
//
// The distance is taken on both sides, so a dive that stalls just short of
// the target passes as well.
func EvaluateOvershoot(trace dynamo.Trace, c physics.Constants) (Verdict, error) {
	if c.Z0 != 0 {
		return Verdict{Criterion: Overshoot}, fmt.Errorf("overshoot: z_0=%v, want 0: %w", c.Z0, dynamo.ErrPrecondition)
	}

	zMax := 0.0
	for _, rec := range trace {
		if zMax < rec.Z {
			zMax = rec.Z
		}
	}
	over := math.Abs(zMax - c.ZTarget)

	return Verdict{Criterion: Overshoot, Passed: over < OvershootThreshold, Value: over}, nil
}
