// Package analysis characterizes the transient of a single trace:
//
//   - [NewPhasePortrait]: depth against velocity, rendered as ASCII
//   - [TargetCrossings]: times the depth passes the target
//   - [DominantPeriod]: strongest oscillation period of the depth error
package analysis
