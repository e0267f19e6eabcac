// Package viz renders validation reports and flight results for the
// terminal.
//
//   - [RenderReport]: pass/fail summary of a validation run
//   - [RenderPartials]: per-block partial derivative errors for one case
//   - [RenderFlight]: final state and metrics of a flown phase
//   - [PlotStates]: asciigraph time histories of saved states
package viz
