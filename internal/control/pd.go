package control

import "fmt"

// Gains are the two tunable coefficients of the depth law.
type Gains struct {
	K1 float64 `json:"k1" yaml:"k1"` // on depth error [m^3/m]
	K2 float64 `json:"k2" yaml:"k2"` // on velocity [m^3/(m/s)]
}

func (g Gains) String() string {
	return fmt.Sprintf("k1=%.8f k2=%.8f", g.K1, g.K2)
}

// PD computes the commanded volume change for a target depth.
type PD struct {
	Gains
	Target float64
}

// Compute returns k1*(z - target) + k2*v, before any actuator limits.
func (p *PD) Compute(z, v float64) float64 {
	// explicit conversions keep the compiler from fusing into an FMA, so
	// results are identical on every architecture
	return float64(p.K1*(z-p.Target)) + float64(p.K2*v)
}
