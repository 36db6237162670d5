package physics

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/buoysim/internal/dynamo"
)

const (
	DefaultGravity = 9.80     // [m/s^2]
	DefaultDensity = 1035.0   // surrounding fluid [kg/m^3]
	DefaultMass    = 20.0     // [kg]
	DefaultDt      = 0.01     // integration step [s]
	DefaultZTarget = 10.0     // [m]
	DefaultZ0      = 0.0      // [m]
	DefaultRateMax = 0.00007  // actuator slew limit [m^3/s]
	DefaultVolMax  = 0.00024  // [m^3]
	DefaultVolMin  = -0.00016 // [m^3]
)

// Constants are the fixed parameters of one buoy configuration.
type Constants struct {
	Gravity float64 `yaml:"gravity" json:"gravity"`
	Density float64 `yaml:"density" json:"density"`
	Mass    float64 `yaml:"mass" json:"mass"`
	Dt      float64 `yaml:"dt" json:"dt"`
	ZTarget float64 `yaml:"z_target" json:"z_target"`
	Z0      float64 `yaml:"z_0" json:"z_0"`
	RateMax float64 `yaml:"rate_max" json:"rate_max"`
	VolMax  float64 `yaml:"vol_max" json:"vol_max"`
	VolMin  float64 `yaml:"vol_min" json:"vol_min"`
}

func Default() Constants {
	return Constants{
		Gravity: DefaultGravity,
		Density: DefaultDensity,
		Mass:    DefaultMass,
		Dt:      DefaultDt,
		ZTarget: DefaultZTarget,
		Z0:      DefaultZ0,
		RateMax: DefaultRateMax,
		VolMax:  DefaultVolMax,
		VolMin:  DefaultVolMin,
	}
}

// VolSmall is the smaller magnitude of the two volume limits. It bounds the
// search grid so that commands stay out of saturation; the simulator itself
// clamps against the asymmetric limits.
func (c Constants) VolSmall() float64 {
	return math.Min(math.Abs(c.VolMax), math.Abs(c.VolMin))
}

// RateStep is the largest volume change the actuator can make in one step.
func (c Constants) RateStep() float64 {
	return c.RateMax * c.Dt
}

// Validate reports physically meaningless parameters. The simulator does not
// call it; degenerate constants simply produce degenerate traces.
func (c Constants) Validate() error {
	switch {
	case c.Dt <= 0:
		return &dynamo.BoundsError{Param: "dt", Value: c.Dt, Rule: "must be positive"}
	case c.Mass <= 0:
		return &dynamo.BoundsError{Param: "mass", Value: c.Mass, Rule: "must be positive"}
	case c.RateMax < 0:
		return &dynamo.BoundsError{Param: "rate_max", Value: c.RateMax, Rule: "must not be negative"}
	case c.VolMin > 0:
		return &dynamo.BoundsError{Param: "vol_min", Value: c.VolMin, Rule: "must be <= 0"}
	case c.VolMax < 0:
		return &dynamo.BoundsError{Param: "vol_max", Value: c.VolMax, Rule: "must be >= 0"}
	}
	return nil
}

// GetParams returns the constants keyed by their config names.
func (c Constants) GetParams() map[string]float64 {
	return map[string]float64{
		"gravity":  c.Gravity,
		"density":  c.Density,
		"mass":     c.Mass,
		"dt":       c.Dt,
		"z_target": c.ZTarget,
		"z_0":      c.Z0,
		"rate_max": c.RateMax,
		"vol_max":  c.VolMax,
		"vol_min":  c.VolMin,
	}
}

// ParamNames lists the names accepted by With, sorted.
func ParamNames() []string {
	names := make([]string, 0, 9)
	for k := range Default().GetParams() {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// With returns a copy of c with one parameter replaced.
func (c Constants) With(name string, value float64) (Constants, error) {
	switch name {
	case "gravity":
		c.Gravity = value
	case "density":
		c.Density = value
	case "mass":
		c.Mass = value
	case "dt":
		c.Dt = value
	case "z_target":
		c.ZTarget = value
	case "z_0":
		c.Z0 = value
	case "rate_max":
		c.RateMax = value
	case "vol_max":
		c.VolMax = value
	case "vol_min":
		c.VolMin = value
	default:
		return c, fmt.Errorf("unknown param: %s", name)
	}
	return c, nil
}
