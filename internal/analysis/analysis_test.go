package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/buoysim/internal/dynamo"
)

func sineTrace(n int, dt, period, target float64) dynamo.Trace {
	tr := make(dynamo.Trace, n)
	for i := range tr {
		t := float64(i) * dt
		tr[i] = dynamo.StepRecord{
			T: t,
			Z: target + math.Sin(2*math.Pi*t/period),
			V: 2 * math.Pi / period * math.Cos(2*math.Pi*t/period),
		}
	}
	return tr
}

func TestPowerSpectrumImpulse(t *testing.T) {
	out := PowerSpectrum([]float64{1, 0, 0, 0})
	if len(out) != 2 {
		t.Fatalf("expected 2 bins, got %d", len(out))
	}
	for i, v := range out {
		if math.Abs(v-1) > 1e-12 {
			t.Errorf("bin %d = %v, want 1", i, v)
		}
	}
}

func TestDominantPeriod(t *testing.T) {
	// 1024 samples at 0.1s hold exactly 8 periods of 12.8s
	tr := sineTrace(1024, 0.1, 12.8, 10)
	got := DominantPeriod(tr, 10, 0.1)
	if math.Abs(got-12.8) > 1e-9 {
		t.Errorf("DominantPeriod = %f, want 12.8", got)
	}

	if DominantPeriod(tr[:2], 10, 0.1) != 0 {
		t.Error("short trace should have no period")
	}
	flat := dynamo.Trace{{Z: 1}, {Z: 1}, {Z: 1}, {Z: 1}}
	if DominantPeriod(flat, 0, 0.1) != 0 {
		t.Error("constant depth should have no period")
	}
}

func TestTargetCrossings(t *testing.T) {
	tr := dynamo.Trace{
		{T: 0, Z: 8},
		{T: 1, Z: 12},
		{T: 2, Z: 11},
		{T: 3, Z: 9},
	}
	got := TargetCrossings(tr, 10)
	want := []float64{0.5, 2.5}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("crossing %d = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestPhasePortraitASCII(t *testing.T) {
	p := NewPhasePortrait(sineTrace(200, 0.05, 10, 0))
	out := p.ASCII(40, 10)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(lines))
	}
	if !strings.Contains(out, "•") {
		t.Error("expected plotted points")
	}
	if NewPhasePortrait(nil).ASCII(40, 10) != "" {
		t.Error("empty portrait should render nothing")
	}
}
