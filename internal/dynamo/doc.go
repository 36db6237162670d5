// Package dynamo provides the core simulation primitives shared by the
// buoy depth-control packages.
//
//   - [Range]: fixed-step time grid generated by cumulative addition
//   - [StepRecord]: one integration step of a buoy trajectory
//   - [Trace]: the full per-step record of a single simulation run
//
// # Example
//
//	times := dynamo.Range(0, 70, 0.01)
//	trace := sim.Simulate(physics.Default(), times, control.Gains{K1: -0.0005, K2: -0.01})
//	fmt.Println(len(trace) == len(times))
//
// Traces are immutable once returned and are safe to share between
// goroutines for reading.
package dynamo
