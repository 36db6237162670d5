package metrics

import (
	"math"

	"github.com/san-kum/buoysim/internal/dynamo"
)

// Stability is the fraction of steps spent within threshold of the target
// depth.
type Stability struct {
	name       string
	target     float64
	threshold  float64
	violations int
	samples    int
}

func NewStability(target, threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		target:    target,
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) OnStep(r dynamo.StepRecord) {
	s.samples++
	if math.Abs(r.Z-s.target) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
