// Package metrics judges simulated buoy traces.
//
// Acceptance is decided by a [Criterion]: a closed set of rules, each mapping
// a trace to a [Verdict]. The remaining functions ([TimeConstant],
// [SettlingTime], [ControlEffort], [Stability]) are reporting aids and never
// influence acceptance.
package metrics
