// Package physics holds the physical and mechanical parameters of the
// depth-holding buoy.
//
// [Constants] is a plain value: it is built once, passed by value into the
// simulator and evaluators, and never mutated. Use [Constants.With] to derive
// a modified copy.
//
//	c := physics.Default()
//	deep, err := c.With("z_target", 25)
package physics
