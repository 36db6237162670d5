package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation and evaluation.
var (
	// ErrEmptyTrace indicates an evaluation over a trace with no records.
	ErrEmptyTrace = errors.New("dynamo: empty trace")

	// ErrPrecondition indicates a modelling precondition does not hold for the input.
	ErrPrecondition = errors.New("dynamo: precondition violated")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnknownCriterion indicates an acceptance criterion name that is not registered.
	ErrUnknownCriterion = errors.New("dynamo: unknown acceptance criterion")
)

// BoundsError reports which parameter failed validation.
type BoundsError struct {
	Param string
	Value float64
	Rule  string
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s=%g: %s", e.Param, e.Value, e.Rule)
}

func (e *BoundsError) Unwrap() error {
	return ErrParameterBounds
}
