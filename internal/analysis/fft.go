package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/buoysim/internal/dynamo"
)

// PowerSpectrum returns the magnitude of the first half of the spectrum.
func PowerSpectrum(data []float64) []float64 {
	spec := fft.FFTReal(data)
	ps := make([]float64, len(spec)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}

	return ps
}

// DominantPeriod returns the period [s] of the strongest non-DC component of
// the depth error z - target, zero-padded to a power of two. It returns 0
// when the trace is too short or has no oscillation.
func DominantPeriod(trace dynamo.Trace, target, dt float64) float64 {
	if len(trace) < 4 || dt <= 0 {
		return 0
	}

	n := 1
	for n < len(trace) {
		n *= 2
	}
	padded := make([]float64, n)
	var mean float64
	for _, r := range trace {
		mean += r.Z - target
	}
	mean /= float64(len(trace))
	for i, r := range trace {
		padded[i] = r.Z - target - mean
	}

	ps := PowerSpectrum(padded)
	maxPower, maxIdx := 0.0, 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > maxPower {
			maxPower, maxIdx = ps[i], i
		}
	}
	// numerical residue of a flat signal is not an oscillation
	if maxIdx == 0 || maxPower < 1e-9 {
		return 0
	}
	return float64(n) * dt / float64(maxIdx)
}
