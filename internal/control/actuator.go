package control

import (
	"math"

	"github.com/san-kum/buoysim/internal/physics"
)

// Actuator models the buoy's volume-change mechanism.
type Actuator struct {
	VolMin  float64
	VolMax  float64
	RateMax float64
	Dt      float64
	Step    float64 // RateMax*Dt, the most ΔV may move in one step
}

func NewActuator(c physics.Constants) Actuator {
	return Actuator{
		VolMin:  c.VolMin,
		VolMax:  c.VolMax,
		RateMax: c.RateMax,
		Dt:      c.Dt,
		Step:    c.RateStep(),
	}
}

// Saturate clamps a command into [VolMin, VolMax]. Each bound is applied
// independently, max first.
func (a Actuator) Saturate(cmd float64) float64 {
	if cmd > a.VolMax {
		cmd = a.VolMax
	}
	if cmd < a.VolMin {
		cmd = a.VolMin
	}
	return cmd
}

// Slew moves the actuator from prev toward target. If reaching target would
// exceed RateMax the actuator moves by exactly Step; otherwise it snaps.
func (a Actuator) Slew(prev, target float64) float64 {
	diff := target - prev
	if math.Abs(diff/a.Dt) > a.RateMax {
		switch {
		case diff < 0:
			return prev - a.Step
		case diff > 0:
			return prev + a.Step
		}
		return prev
	}
	return target
}

// Apply saturates the ideal command and then rate-limits it against the
// previous actuator state.
func (a Actuator) Apply(prev, ideal float64) float64 {
	return a.Slew(prev, a.Saturate(ideal))
}
