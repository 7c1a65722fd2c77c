// Package analysis provides post-processing helpers for trajectory
// ensembles.
//
// The package works on plain slices so it composes with any result
// layout:
//
//   - [EnsembleMean]: trajectory-averaged expectation values
//   - [WeightedMean]: smart-sampling average with the no-click weight
//   - [ClickRate]: empirical click rate per channel
//   - [WaitingTimes]: inter-click intervals of a measurement record
package analysis
