package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/buoysim/internal/control"
	"github.com/san-kum/buoysim/internal/dynamo"
	"github.com/san-kum/buoysim/internal/physics"
)

var reference = control.Gains{K1: -0.0005, K2: -0.01}

func TestSimulate_Length(t *testing.T) {
	c := physics.Default()

	tests := []struct {
		name  string
		times []float64
	}{
		{"empty", nil},
		{"single", []float64{0}},
		{"short", dynamo.Range(0, 1, 0.01)},
		{"mismatched spacing", dynamo.Range(0, 1, 0.1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trace := Simulate(c, tt.times, reference)
			if len(trace) != len(tt.times) {
				t.Errorf("expected %d records, got %d", len(tt.times), len(trace))
			}
			for i := range trace {
				if trace[i].T != tt.times[i] {
					t.Errorf("record %d has t=%v, want %v", i, trace[i].T, tt.times[i])
				}
			}
		})
	}
}

func TestSimulate_ReferenceScenario(t *testing.T) {
	c := physics.Default()
	times := dynamo.Range(0.0, 70.0, 0.01)

	trace := Simulate(c, times, reference)
	if len(trace) != 7001 {
		t.Fatalf("expected 7001 records, got %d", len(trace))
	}
	if last := trace[len(trace)-1].T; last != 69.9999999999989 {
		t.Errorf("last record t = %v, want 69.9999999999989", last)
	}

	first := trace[0]
	if first.T != 0 || first.Z != 0 || first.V != 0 {
		t.Errorf("first record should start at rest at the surface: %+v", first)
	}

	// ideal command 0.005 saturates to vol_max and then hits the slew limit
	wantDV := c.RateStep()
	if first.DeltaV != wantDV {
		t.Errorf("first ΔV = %v, want %v", first.DeltaV, wantDV)
	}
	wantF := c.Density * c.Gravity * wantDV
	if first.Force != wantF {
		t.Errorf("first F = %v, want %v", first.Force, wantF)
	}
	if first.Accel != wantF/c.Mass {
		t.Errorf("first a = %v, want %v", first.Accel, wantF/c.Mass)
	}

	second := trace[1]
	wantV := 0.0 + first.Accel*c.Dt
	if second.V != wantV {
		t.Errorf("second v = %v, want %v", second.V, wantV)
	}
	if second.Z != 0.0+wantV*c.Dt {
		t.Errorf("second z = %v, want %v", second.Z, wantV*c.Dt)
	}
}

func TestSimulate_Deterministic(t *testing.T) {
	c := physics.Default()
	times := dynamo.Range(0.0, 70.0, 0.01)

	a := Simulate(c, times, reference)
	b := Simulate(c, times, reference)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("record %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestSimulate_ZeroGains(t *testing.T) {
	c := physics.Default()
	trace := Simulate(c, dynamo.Range(0, 10, c.Dt), control.Gains{})

	for i, r := range trace {
		if r.DeltaV != 0 || r.Force != 0 || r.Accel != 0 {
			t.Fatalf("record %d: expected no actuation, got %+v", i, r)
		}
		if r.Z != c.Z0 || r.V != 0 {
			t.Fatalf("record %d: buoy should not move, got %+v", i, r)
		}
	}
}

func TestSimulate_ZeroGainsHoldEquilibriumAtDepth(t *testing.T) {
	c := physics.Default()
	c.Z0 = 10

	sim := New(c)
	trace, err := sim.Run(context.Background(), dynamo.Range(0, 1, c.Dt), control.Gains{})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for i, r := range trace {
		if r.Z != 10 || r.V != 0 || r.DeltaV != 0 {
			t.Fatalf("record %d left equilibrium: %+v", i, r)
		}
	}
}

func TestSimulate_Saturation(t *testing.T) {
	c := physics.Default()
	c.RateMax = 1e9 // effectively no slew limit

	trace := Simulate(c, []float64{0}, control.Gains{K1: -1, K2: 0})
	if trace[0].DeltaV != c.VolMax {
		t.Errorf("expected ΔV saturated at vol_max %v, got %v", c.VolMax, trace[0].DeltaV)
	}

	trace = Simulate(c, []float64{0}, control.Gains{K1: 1, K2: 0})
	if trace[0].DeltaV != c.VolMin {
		t.Errorf("expected ΔV saturated at vol_min %v, got %v", c.VolMin, trace[0].DeltaV)
	}
}

func TestSimulate_SlewLimit(t *testing.T) {
	c := physics.Default()
	trace := Simulate(c, dynamo.Range(0, 0.5, c.Dt), reference)
	step := c.RateMax * c.Dt

	if trace[1].DeltaV-trace[0].DeltaV != step {
		t.Errorf("first slew step = %v, want exactly %v", trace[1].DeltaV-trace[0].DeltaV, step)
	}
	for i := 1; i < len(trace); i++ {
		d := trace[i].DeltaV - trace[i-1].DeltaV
		if math.Abs(d-step) > 1e-18 {
			t.Errorf("step %d: ΔV moved by %v, want %v", i, d, step)
		}
	}
}

func TestSimulate_ReachesTargetRegion(t *testing.T) {
	c := physics.Default()
	trace := Simulate(c, dynamo.Range(0, 70, c.Dt), reference)

	maxZ := 0.0
	for _, r := range trace {
		maxZ = math.Max(maxZ, r.Z)
	}
	if maxZ <= 0 {
		t.Error("buoy never descended")
	}
}

func TestSimulator_Observers(t *testing.T) {
	c := physics.Default()
	sim := New(c)

	count := 0
	sim.AddObserver(ObserverFunc(func(r dynamo.StepRecord) { count++ }))

	times := dynamo.Range(0, 1, c.Dt)
	if _, err := sim.Run(context.Background(), times, reference); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if count != len(times) {
		t.Errorf("expected %d observations, got %d", len(times), count)
	}
}

func TestSimulator_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	trace, err := New(physics.Default()).Run(ctx, dynamo.Range(0, 70, 0.01), reference)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(trace) != 0 {
		t.Errorf("expected no records after cancellation, got %d", len(trace))
	}
}
