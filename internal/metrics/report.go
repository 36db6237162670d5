package metrics

import (
	"math"

	"github.com/san-kum/buoysim/internal/dynamo"
	"github.com/san-kum/buoysim/internal/physics"
)

// SettlingBand is the depth tolerance used by Summarize for settling time
// and stability.
const SettlingBand = 0.5

// Metric accumulates a scalar over the steps of a run.
type Metric interface {
	Name() string
	OnStep(r dynamo.StepRecord)
	Value() float64
	Reset()
}

// Report collects every figure of merit for one trace.
type Report struct {
	Verdicts     []Verdict            `json:"verdicts"`
	TimeConstant float64              `json:"time_constant"`
	SettlingTime float64              `json:"settling_time"`
	MaxDepth     float64              `json:"max_depth"`
	FinalDepth   float64              `json:"final_depth"`
	Metrics      map[string]float64   `json:"metrics"`
	Skipped      map[Criterion]string `json:"skipped,omitempty"`
}

// DefaultMetrics returns the step metrics reported for every run.
func DefaultMetrics(c physics.Constants) []Metric {
	return []Metric{
		NewControlEffort(),
		NewStability(c.ZTarget, SettlingBand),
	}
}

// Summarize evaluates every criterion and reporting metric over trace.
// Criteria whose preconditions fail are listed in Skipped rather than
// failing the report.
func Summarize(trace dynamo.Trace, c physics.Constants) Report {
	ms := DefaultMetrics(c)
	for _, m := range ms {
		for _, r := range trace {
			m.OnStep(r)
		}
	}
	return NewReport(trace, c, ms)
}

// NewReport is Summarize for metrics that already saw every step, for
// example because they observed the simulation that produced trace.
func NewReport(trace dynamo.Trace, c physics.Constants, ms []Metric) Report {
	rep := Report{
		TimeConstant: TimeConstant(trace, c),
		SettlingTime: SettlingTime(trace, c, SettlingBand),
		Metrics:      make(map[string]float64),
		Skipped:      make(map[Criterion]string),
	}

	for _, cr := range Criteria() {
		v, err := cr.Evaluate(trace, c)
		if err != nil {
			rep.Skipped[cr] = err.Error()
			continue
		}
		rep.Verdicts = append(rep.Verdicts, v)
	}

	if len(trace) > 0 {
		rep.MaxDepth = math.Inf(-1)
		for _, r := range trace {
			rep.MaxDepth = math.Max(rep.MaxDepth, r.Z)
		}
		rep.FinalDepth = trace[len(trace)-1].Z
	}

	for _, m := range ms {
		rep.Metrics[m.Name()] = m.Value()
	}

	return rep
}
