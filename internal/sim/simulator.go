package sim

import (
	"context"

	"github.com/san-kum/buoysim/internal/control"
	"github.com/san-kum/buoysim/internal/dynamo"
	"github.com/san-kum/buoysim/internal/integrators"
	"github.com/san-kum/buoysim/internal/physics"
)

// cancellation is polled once per this many steps
const checkEvery = 256

// Simulator integrates the vertical motion of the buoy under a PD depth law.
// A Simulator holds no per-run state; one instance may serve concurrent runs
// as long as its observers are safe for concurrent use.
type Simulator struct {
	consts     physics.Constants
	actuator   control.Actuator
	integrator *integrators.Euler
	observers  []Observer
}

func New(c physics.Constants) *Simulator {
	return &Simulator{
		consts:     c,
		actuator:   control.NewActuator(c),
		integrator: integrators.NewEuler(),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Constants() physics.Constants { return s.consts }

// Simulate runs one trajectory to completion. The trace has one record per
// time sample; the step length is always c.Dt regardless of the spacing in
// times.
func Simulate(c physics.Constants, times []float64, g control.Gains) dynamo.Trace {
	trace, _ := New(c).Run(context.Background(), times, g)
	return trace
}

// Run is Simulate with cancellation and observers. On cancellation it
// returns the partial trace together with ctx.Err().
func (s *Simulator) Run(ctx context.Context, times []float64, g control.Gains) (dynamo.Trace, error) {
	c := s.consts
	law := control.PD{Gains: g, Target: c.ZTarget}

	trace := make(dynamo.Trace, 0, len(times))

	z := c.Z0
	v := 0.0
	dv := 0.0

	for i, t := range times {
		if i%checkEvery == 0 {
			select {
			case <-ctx.Done():
				return trace, ctx.Err()
			default:
			}
		}

		dv = s.actuator.Apply(dv, law.Compute(z, v))

		// the buoy's weight is left out: it starts neutrally buoyant
		f := c.Density * c.Gravity * dv
		a := f / c.Mass

		rec := dynamo.StepRecord{T: t, Z: z, Accel: a, V: v, DeltaV: dv, Force: f}
		trace = append(trace, rec)
		for _, obs := range s.observers {
			obs.OnStep(rec)
		}

		z, v = s.integrator.Step(z, v, a, c.Dt)
	}

	return trace, nil
}
