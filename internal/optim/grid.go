package optim

import (
	"fmt"
	"math"

	"github.com/san-kum/buoysim/internal/control"
	"github.com/san-kum/buoysim/internal/dynamo"
	"github.com/san-kum/buoysim/internal/physics"
)

const (
	// DefaultDivisions is the number of grid steps across each search width.
	DefaultDivisions = 10

	// k1 width: gains up to this multiple of volSmall per metre of depth
	// change keep the command mostly out of saturation
	k1WidthFactor = 9.0
	// k2 width: same idea for a descent speed limit of speedLimit m/s
	k2WidthFactor = 3.0
	speedLimit    = 0.5
)

// Axis is one half-open dimension of the search grid.
type Axis struct {
	Begin float64 `yaml:"begin" json:"begin"`
	End   float64 `yaml:"end" json:"end"`
	Step  float64 `yaml:"step" json:"step"`
}

func (a Axis) Values() []float64 {
	return dynamo.Range(a.Begin, a.End, a.Step)
}

func (a Axis) IsZero() bool {
	return a == Axis{}
}

// Grid is the set of (k1, k2) candidates, enumerated k1-major.
type Grid struct {
	K1 []float64
	K2 []float64
}

// Axes derives the default search axes from the actuator limits: both gains
// run from -width up to (excluding) 0 in width/divisions steps.
func Axes(c physics.Constants, divisions int) (k1, k2 Axis, err error) {
	if divisions <= 0 {
		return Axis{}, Axis{}, &dynamo.BoundsError{Param: "divisions", Value: float64(divisions), Rule: "must be positive"}
	}
	span := math.Abs(c.Z0 - c.ZTarget)
	if span == 0 {
		return Axis{}, Axis{}, &dynamo.BoundsError{Param: "z_target", Value: c.ZTarget, Rule: "must differ from z_0"}
	}

	k1Width := k1WidthFactor * c.VolSmall() / span
	k2Width := k2WidthFactor * c.VolSmall() / speedLimit

	k1 = Axis{Begin: -k1Width, End: 0, Step: k1Width / float64(divisions)}
	k2 = Axis{Begin: -k2Width, End: 0, Step: k2Width / float64(divisions)}
	return k1, k2, nil
}

// NewGrid builds the default search grid for c.
func NewGrid(c physics.Constants, divisions int) (Grid, error) {
	k1, k2, err := Axes(c, divisions)
	if err != nil {
		return Grid{}, fmt.Errorf("search grid: %w", err)
	}
	return GridFromAxes(k1, k2), nil
}

func GridFromAxes(k1, k2 Axis) Grid {
	return Grid{K1: k1.Values(), K2: k2.Values()}
}

func (g Grid) Len() int {
	return len(g.K1) * len(g.K2)
}

// At returns the i-th cell in k1-major order.
func (g Grid) At(i int) control.Gains {
	return control.Gains{K1: g.K1[i/len(g.K2)], K2: g.K2[i%len(g.K2)]}
}

// Cells lists every candidate in k1-major order.
func (g Grid) Cells() []control.Gains {
	out := make([]control.Gains, 0, g.Len())
	for _, k1 := range g.K1 {
		for _, k2 := range g.K2 {
			out = append(out, control.Gains{K1: k1, K2: k2})
		}
	}
	return out
}
