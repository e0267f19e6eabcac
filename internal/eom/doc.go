// Package eom implements the equations of motion for aircraft mission phases.
//
// Each phase is a [Component]: a pure, vectorized function from named input
// arrays to named output arrays, evaluated at NumNodes points. Components
// compute in complex arithmetic so the same code path serves both plain
// evaluation and complex-step differentiation, and they supply analytic
// partial derivatives through [Component.ComputePartials].
//
//   - [AccelerationRates]: level acceleration (TAS rate, distance rate)
//   - [ClimbRates]: steady climb (altitude rate, distance rate, lift, gamma)
//   - [AscentEOM]: rotation and ascent with thrust vectoring and ground contact
//
// # Example
//
//	c := eom.NewClimbRates(2)
//	p := problem.New(c)
//	p.SetInputDefaults(eom.TAS, []float64{459, 459}, "kn")
//	...
//	p.Setup()
//	p.RunModel()
package eom
