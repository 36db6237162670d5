package sim

import "github.com/san-kum/buoysim/internal/dynamo"

// Observer is notified after every integration step.
type Observer interface {
	OnStep(r dynamo.StepRecord)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(r dynamo.StepRecord)

func (f ObserverFunc) OnStep(r dynamo.StepRecord) { f(r) }
