package eom

import (
	"math"

	"github.com/san-kum/flighteom/internal/units"
)

// ClimbRates computes the rates for a steady climb where excess thrust sets
// the flight path angle.
type ClimbRates struct {
	nn int
}

func NewClimbRates(numNodes int) *ClimbRates {
	return &ClimbRates{nn: numNodes}
}

func (c *ClimbRates) Name() string  { return "climb" }
func (c *ClimbRates) NumNodes() int { return c.nn }

func (c *ClimbRates) Inputs() []Variable {
	return []Variable{
		{Name: TAS, Units: "ft/s", Desc: "true air speed"},
		{Name: ThrustTotal, Units: "lbf", Desc: "total net thrust"},
		{Name: Drag, Units: "lbf", Desc: "total drag"},
		{Name: Mass, Units: "lbm", Desc: "total mass of the aircraft"},
	}
}

func (c *ClimbRates) Outputs() []Variable {
	return []Variable{
		{Name: AltitudeRate, Units: "ft/s", Desc: "rate of change of altitude"},
		{Name: DistanceRate, Units: "ft/s", Desc: "rate of change of horizontal distance"},
		{Name: RequiredLift, Units: "lbf", Desc: "lift required to hold the flight path"},
		{Name: FlightPathAngle, Units: "rad", Desc: "flight path angle"},
	}
}

func (c *ClimbRates) Partials() []Partial {
	var ps []Partial
	ps = append(ps, diag(AltitudeRate, TAS, ThrustTotal, Drag, Mass)...)
	ps = append(ps, diag(DistanceRate, TAS, ThrustTotal, Drag, Mass)...)
	ps = append(ps, diag(RequiredLift, ThrustTotal, Drag, Mass)...)
	return append(ps, diag(FlightPathAngle, ThrustTotal, Drag, Mass)...)
}

func (c *ClimbRates) Compute(in, out ComplexVars) {
	tas, thrust, drag, mass := in[TAS], in[ThrustTotal], in[Drag], in[Mass]
	altRate := make([]complex128, c.nn)
	distRate := make([]complex128, c.nn)
	lift := make([]complex128, c.nn)
	gamma := make([]complex128, c.nn)

	nodes(c.nn, func(i int) {
		weight := mass[i] * cf(units.GravEnglishLbm)
		gamma[i] = casin((thrust[i] - drag[i]) / weight)
		altRate[i] = tas[i] * csin(gamma[i])
		distRate[i] = tas[i] * ccos(gamma[i])
		lift[i] = weight * ccos(gamma[i])
	})

	out[AltitudeRate] = altRate
	out[DistanceRate] = distRate
	out[RequiredLift] = lift
	out[FlightPathAngle] = gamma
}

func (c *ClimbRates) ComputePartials(in Vars, jac Jacobian) {
	tas, thrust, drag, mass := in[TAS], in[ThrustTotal], in[Drag], in[Mass]
	gl := units.GravEnglishLbm

	block := func() []float64 { return make([]float64, c.nn) }
	hTAS, hT, hD, hM := block(), block(), block(), block()
	rTAS, rT, rD, rM := block(), block(), block(), block()
	lT, lD, lM := block(), block(), block()
	gT, gD, gM := block(), block(), block()

	nodes(c.nn, func(i int) {
		weight := mass[i] * gl
		excess := thrust[i] - drag[i]
		ratio := excess / weight
		cosG := math.Sqrt(1 - ratio*ratio)

		// d(ratio)/d(input)
		dT := 1 / weight
		dD := -1 / weight
		dM := -excess / (weight * weight) * gl

		gT[i] = dT / cosG
		gD[i] = dD / cosG
		gM[i] = dM / cosG

		hTAS[i] = ratio
		hT[i] = tas[i] * dT
		hD[i] = tas[i] * dD
		hM[i] = tas[i] * dM

		// d(cos gamma)/d(ratio) = -ratio / cos gamma
		dCos := -ratio / cosG
		rTAS[i] = cosG
		rT[i] = tas[i] * dCos * dT
		rD[i] = tas[i] * dCos * dD
		rM[i] = tas[i] * dCos * dM

		lT[i] = weight * dCos * dT
		lD[i] = weight * dCos * dD
		lM[i] = gl*cosG + weight*dCos*dM
	})

	jac[Key{AltitudeRate, TAS}] = hTAS
	jac[Key{AltitudeRate, ThrustTotal}] = hT
	jac[Key{AltitudeRate, Drag}] = hD
	jac[Key{AltitudeRate, Mass}] = hM

	jac[Key{DistanceRate, TAS}] = rTAS
	jac[Key{DistanceRate, ThrustTotal}] = rT
	jac[Key{DistanceRate, Drag}] = rD
	jac[Key{DistanceRate, Mass}] = rM

	jac[Key{RequiredLift, ThrustTotal}] = lT
	jac[Key{RequiredLift, Drag}] = lD
	jac[Key{RequiredLift, Mass}] = lM

	jac[Key{FlightPathAngle, ThrustTotal}] = gT
	jac[Key{FlightPathAngle, Drag}] = gD
	jac[Key{FlightPathAngle, Mass}] = gM
}
