package dynamo

import (
	"math"
	"testing"
)

func TestRange(t *testing.T) {
	tests := []struct {
		name             string
		begin, end, step float64
		wantLen          int
	}{
		{"unit steps", 0, 5, 1, 5},
		{"end excluded when exact multiple", 0, 1, 0.25, 4},
		{"non-integral span", 0, 1, 0.3, 4},
		{"negative begin", -3, 0, 1, 3},
		{"begin equals end", 2, 2, 0.1, 0},
		{"begin after end", 3, 2, 0.1, 0},
		{"zero step", 0, 1, 0, 0},
		{"negative step", 0, 1, -0.1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Range(tt.begin, tt.end, tt.step)
			if len(got) != tt.wantLen {
				t.Fatalf("len(Range(%v, %v, %v)) = %d, want %d", tt.begin, tt.end, tt.step, len(got), tt.wantLen)
			}
			for i, v := range got {
				if v >= tt.end {
					t.Errorf("element %d = %v, not < end %v", i, v, tt.end)
				}
			}
		})
	}
}

func TestRange_CumulativeAddition(t *testing.T) {
	got := Range(0, 1, 0.1)

	n := 0.0
	for i, v := range got {
		if v != n {
			t.Errorf("element %d = %v, want accumulated %v", i, v, n)
		}
		n += 0.1
	}
}

func TestRange_SimulationGrid(t *testing.T) {
	times := Range(0, 70, 0.01)

	// accumulated rounding leaves one extra sample just below end
	if len(times) != 7001 {
		t.Fatalf("expected 7001 samples, got %d", len(times))
	}
	if times[0] != 0 {
		t.Errorf("first sample = %v, want 0", times[0])
	}
	if last := times[len(times)-1]; last != 69.9999999999989 {
		t.Errorf("last sample = %v, want 69.9999999999989", last)
	}
	if want := math.Ceil(70 / 0.01); math.Abs(float64(len(times))-want) > 1 {
		t.Errorf("length %d too far from ceil((end-begin)/step) = %v", len(times), want)
	}
}
