package eom

import "github.com/san-kum/flighteom/internal/units"

// AccelerationRates computes the rates for a level acceleration segment.
type AccelerationRates struct {
	nn int
}

func NewAccelerationRates(numNodes int) *AccelerationRates {
	return &AccelerationRates{nn: numNodes}
}

func (a *AccelerationRates) Name() string  { return "accel" }
func (a *AccelerationRates) NumNodes() int { return a.nn }

func (a *AccelerationRates) Inputs() []Variable {
	return []Variable{
		{Name: Mass, Units: "lbm", Desc: "total mass of the aircraft"},
		{Name: Drag, Units: "lbf", Desc: "total drag"},
		{Name: ThrustTotal, Units: "lbf", Desc: "total net thrust"},
		{Name: TAS, Units: "ft/s", Desc: "true air speed"},
	}
}

func (a *AccelerationRates) Outputs() []Variable {
	return []Variable{
		{Name: TASRate, Units: "ft/s**2", Desc: "rate of change of true air speed"},
		{Name: DistanceRate, Units: "ft/s", Desc: "rate of change of horizontal distance"},
	}
}

func (a *AccelerationRates) Partials() []Partial {
	ps := diag(TASRate, Mass, Drag, ThrustTotal)
	return append(ps, diag(DistanceRate, TAS)...)
}

func (a *AccelerationRates) Compute(in, out ComplexVars) {
	mass, drag, thrust, tas := in[Mass], in[Drag], in[ThrustTotal], in[TAS]
	tasRate := make([]complex128, a.nn)
	distRate := make([]complex128, a.nn)

	nodes(a.nn, func(i int) {
		weight := mass[i] * cf(units.GravEnglishLbm)
		tasRate[i] = cf(units.GravEnglishGASP) / weight * (thrust[i] - drag[i])
		distRate[i] = tas[i]
	})

	out[TASRate] = tasRate
	out[DistanceRate] = distRate
}

func (a *AccelerationRates) ComputePartials(in Vars, jac Jacobian) {
	mass, drag, thrust := in[Mass], in[Drag], in[ThrustTotal]
	g, gl := units.GravEnglishGASP, units.GravEnglishLbm
	dMass := make([]float64, a.nn)
	dDrag := make([]float64, a.nn)
	dThrust := make([]float64, a.nn)
	dTAS := make([]float64, a.nn)

	nodes(a.nn, func(i int) {
		weight := mass[i] * gl
		dMass[i] = -g * (thrust[i] - drag[i]) / (weight * weight) * gl
		dDrag[i] = -g / weight
		dThrust[i] = g / weight
		dTAS[i] = 1
	})

	jac[Key{TASRate, Mass}] = dMass
	jac[Key{TASRate, Drag}] = dDrag
	jac[Key{TASRate, ThrustTotal}] = dThrust
	jac[Key{DistanceRate, TAS}] = dTAS
}
