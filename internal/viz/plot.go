package viz

import (
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/buoysim/internal/dynamo"
)

const (
	DefaultPlotWidth  = 80
	DefaultPlotHeight = 12
)

// downsample keeps at most n evenly spaced values, always including the last.
func downsample(values []float64, n int) []float64 {
	if n <= 0 || len(values) <= n {
		return values
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = values[i*(len(values)-1)/(n-1)]
	}
	return out
}

// DepthPlot charts depth over the trace. Depth is plotted negated so that
// deeper reads lower, matching the water column.
func DepthPlot(trace dynamo.Trace, width, height int) string {
	if len(trace) == 0 {
		return ""
	}
	depths := downsample(trace.Depths(), width)
	neg := make([]float64, len(depths))
	for i, z := range depths {
		neg[i] = -z
	}
	return asciigraph.Plot(neg,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Cyan),
		asciigraph.Caption("-depth [m] vs time"),
	)
}

// VolumePlot charts the actuator volume change.
func VolumePlot(trace dynamo.Trace, width, height int) string {
	if len(trace) == 0 {
		return ""
	}
	return asciigraph.Plot(downsample(trace.Volumes(), width),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Yellow),
		asciigraph.Precision(6),
		asciigraph.Caption("volume change [m^3] vs time"),
	)
}
