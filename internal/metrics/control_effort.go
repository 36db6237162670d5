package metrics

import (
	"math"

	"github.com/san-kum/buoysim/internal/dynamo"
)

// ControlEffort is the mean actuator displacement |ΔV| over a run. The run
// command attaches it to the simulator as an observer.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) OnStep(r dynamo.StepRecord) {
	c.sum += math.Abs(r.DeltaV)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
