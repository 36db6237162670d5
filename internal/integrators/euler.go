package integrators

// Euler is the fixed-step explicit scheme used by the buoy simulator.
// Velocity is advanced first and the updated velocity drives the position
// update of the same step.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

// Step advances depth z and velocity v by one step of length dt under
// acceleration a.
func (e *Euler) Step(z, v, a, dt float64) (float64, float64) {
	v = v + float64(a*dt)
	z = z + float64(v*dt)
	return z, v
}
