package dynamo

// Range returns begin, begin+step, begin+2*step, ... for every value strictly
// less than end. Values are produced by repeated addition, so the count
// matches any other implementation that accumulates the same way.
// A non-positive step or begin >= end yields an empty slice.
func Range(begin, end, step float64) []float64 {
	if step <= 0 || begin >= end {
		return []float64{}
	}
	out := make([]float64, 0, int((end-begin)/step)+1)
	for n := begin; n < end; n += step {
		out = append(out, n)
	}
	return out
}
