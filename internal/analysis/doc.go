// Package analysis provides tools for inspecting recorded metric series.
//
//   - [PowerSpectrum] and [DominantPeriod]: oscillation content of a series
//   - [DecayRate]: exponential relaxation rate of an oscillating series
//   - [Sweep]: one experiment per value of a configuration parameter
//   - [GridSearch]: best combination of several parameters for a metric
//   - [NewPortrait]: two series plotted against each other
//
// # Relaxation
//
// After every key is released the mesh rings down toward rest. The decay
// rate of the displacement envelope is ln(1/sqrt(damping)) per tick for an
// underdamped grid:
//
//	rate, err := analysis.DecayRate(disp[release:], fps)
package analysis
