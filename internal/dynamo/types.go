package dynamo

// StepRecord is the state of the buoy at one time sample. Depth and velocity
// are the values entering the step; DeltaV, Force and Accel are the values
// computed during it.
type StepRecord struct {
	T      float64 // time [s]
	Z      float64 // depth [m], positive downward
	Accel  float64 // acceleration [m/s^2]
	V      float64 // velocity [m/s]
	DeltaV float64 // actuator volume change [m^3]
	Force  float64 // buoyant force [N]
}

// Fields returns the record in persisted column order.
func (r StepRecord) Fields() []float64 {
	return []float64{r.T, r.Z, r.Accel, r.V, r.DeltaV, r.Force}
}

// Trace is the ordered per-step output of one simulation.
type Trace []StepRecord

// Times returns the time column.
func (tr Trace) Times() []float64 {
	out := make([]float64, len(tr))
	for i, r := range tr {
		out[i] = r.T
	}
	return out
}

// Depths returns the depth column.
func (tr Trace) Depths() []float64 {
	out := make([]float64, len(tr))
	for i, r := range tr {
		out[i] = r.Z
	}
	return out
}

// Volumes returns the actuator volume-change column.
func (tr Trace) Volumes() []float64 {
	out := make([]float64, len(tr))
	for i, r := range tr {
		out[i] = r.DeltaV
	}
	return out
}
