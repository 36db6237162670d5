// Package viz renders sweep results in the terminal.
//
//   - [DepthPlot] and [VolumePlot]: asciigraph charts of a trace
//   - [Browser]: Bubble Tea list of accepted pairs with a depth preview
//
// # Key Bindings
//
//	j/k, up/down - Move selection
//	s            - Cycle sort order
//	v            - Toggle depth/volume chart
//	q            - Quit
package viz
