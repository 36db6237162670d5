// Package control provides the buoy's depth controller and actuator model.
//
//   - [Gains]: proportional-derivative law on depth error and velocity
//   - [Actuator]: volume-change actuator with hard limits and a slew rate
//
// # Usage
//
//	law := control.PD{Gains: control.Gains{K1: -0.0005, K2: -0.01}, Target: 10}
//	act := control.NewActuator(physics.Default())
//	dv = act.Apply(dv, law.Compute(z, v))
//
// Gains are expected to be non-positive: depth is positive downward, so a
// buoy above its target (negative error) needs a positive volume change to
// descend.
package control
