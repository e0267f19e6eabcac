package eom

import (
	"math"

	"github.com/san-kum/flighteom/internal/units"
)

// Scheme selects how a trajectory is closed around the EOM.
type Scheme int

const (
	Collocation Scheme = iota
	// Shooting integrates in time and feeds distance and altitude back in.
	Shooting
)

func (s Scheme) String() string {
	if s == Shooting {
		return "shooting"
	}
	return "collocation"
}

// AscentEOM covers rotation and initial ascent. Thrust is inclined to the
// flight path by alpha minus wing incidence, and any weight not carried by
// lift or thrust rests on the landing gear as normal force.
type AscentEOM struct {
	nn     int
	scheme Scheme
	// Mu is the rolling friction coefficient applied to normal force.
	Mu float64
}

func NewAscentEOM(numNodes int, scheme Scheme) *AscentEOM {
	return &AscentEOM{nn: numNodes, scheme: scheme}
}

func (a *AscentEOM) Name() string   { return "ascent" }
func (a *AscentEOM) NumNodes() int  { return a.nn }
func (a *AscentEOM) Scheme() Scheme { return a.scheme }

func (a *AscentEOM) Inputs() []Variable {
	vs := []Variable{
		{Name: Mass, Units: "lbm", Desc: "aircraft mass"},
		{Name: ThrustTotal, Units: "lbf", Desc: "total net thrust"},
		{Name: Lift, Units: "lbf", Desc: "lift"},
		{Name: Drag, Units: "lbf", Desc: "drag"},
		{Name: TAS, Units: "ft/s", Desc: "true air speed"},
		{Name: FlightPathAngle, Units: "rad", Desc: "flight path angle"},
		{Name: WingIncidence, Units: "deg", Desc: "wing incidence", Shape: 1},
		{Name: Alpha, Units: "deg", Desc: "angle of attack"},
	}
	if a.scheme == Shooting {
		vs = append(vs,
			Variable{Name: Distance, Units: "ft", Desc: "distance traveled"},
			Variable{Name: Altitude, Units: "ft", Desc: "altitude"},
		)
	}
	return vs
}

func (a *AscentEOM) Outputs() []Variable {
	return []Variable{
		{Name: TASRate, Units: "ft/s**2", Desc: "TAS rate"},
		{Name: FlightPathAngleRate, Units: "rad/s", Desc: "flight path angle rate"},
		{Name: AltitudeRate, Units: "ft/s", Desc: "altitude rate"},
		{Name: DistanceRate, Units: "ft/s", Desc: "distance rate"},
		{Name: NormalForce, Units: "lbf", Desc: "normal forces"},
		{Name: FuselagePitch, Units: "deg", Desc: "fuselage pitch angle"},
		{Name: LoadFactor, Units: "unitless", Desc: "load factor"},
		{Name: AlphaRate, Units: "deg/s", Desc: "angle of attack rate"},
	}
}

func (a *AscentEOM) Partials() []Partial {
	col := func(of string) Partial { return Partial{Of: of, Wrt: WingIncidence, Pattern: Column} }
	var ps []Partial
	ps = append(ps, diag(FlightPathAngleRate, ThrustTotal, Alpha, Lift, Mass, FlightPathAngle, TAS)...)
	ps = append(ps, col(FlightPathAngleRate))
	ps = append(ps, diag(LoadFactor, Lift, Mass, FlightPathAngle, ThrustTotal, Alpha)...)
	ps = append(ps, col(LoadFactor))
	ps = append(ps, diag(TASRate, ThrustTotal, Alpha, Drag, Mass, FlightPathAngle, Lift)...)
	ps = append(ps, col(TASRate))
	ps = append(ps, diag(AltitudeRate, TAS, FlightPathAngle)...)
	ps = append(ps, diag(DistanceRate, TAS, FlightPathAngle)...)
	ps = append(ps, diag(NormalForce, Mass, Lift, ThrustTotal, Alpha)...)
	ps = append(ps, col(NormalForce))
	ps = append(ps, diag(FuselagePitch, FlightPathAngle, Alpha)...)
	return append(ps, col(FuselagePitch))
}

func (a *AscentEOM) Compute(in, out ComplexVars) {
	mass, thrust := in[Mass], in[ThrustTotal]
	lift, drag := in[Lift], in[Drag]
	tas, gamma := in[TAS], in[FlightPathAngle]
	iWing, alpha := in[WingIncidence][0], in[Alpha]
	g, mu := cf(units.GravEnglishGASP), cf(a.Mu)

	alloc := func() []complex128 { return make([]complex128, a.nn) }
	tasRate, gammaRate, altRate, distRate := alloc(), alloc(), alloc(), alloc()
	normal, pitch, load := alloc(), alloc(), alloc()

	nodes(a.nn, func(i int) {
		weight := mass[i] * cf(units.GravEnglishLbm)
		incl := rad(alpha[i] - iWing)
		along := thrust[i] * ccos(incl)
		across := thrust[i] * csin(incl)

		nf := weight - lift[i] - across
		if real(nf) < 0 {
			nf = 0
		}
		normal[i] = nf

		tasRate[i] = (along - drag[i] - weight*csin(gamma[i]) - mu*nf) * g / weight
		gammaRate[i] = (across + lift[i] - weight*ccos(gamma[i])) * g / (tas[i] * weight)
		altRate[i] = tas[i] * csin(gamma[i])
		distRate[i] = tas[i] * ccos(gamma[i])
		pitch[i] = gamma[i]*cf(180/math.Pi) - iWing + alpha[i]
		load[i] = (lift[i] + across) / (weight * ccos(gamma[i]))
	})

	out[TASRate] = tasRate
	out[FlightPathAngleRate] = gammaRate
	out[AltitudeRate] = altRate
	out[DistanceRate] = distRate
	out[NormalForce] = normal
	out[FuselagePitch] = pitch
	out[LoadFactor] = load
	out[AlphaRate] = alloc()
}

func (a *AscentEOM) ComputePartials(in Vars, jac Jacobian) {
	mass, thrust := in[Mass], in[ThrustTotal]
	lift, drag := in[Lift], in[Drag]
	tas, gamma := in[TAS], in[FlightPathAngle]
	iWing, alpha := in[WingIncidence][0], in[Alpha]
	g, gl, mu := units.GravEnglishGASP, units.GravEnglishLbm, a.Mu
	const d2r = math.Pi / 180

	set := func(of, wrt string, f func(i int) float64) {
		vals := make([]float64, a.nn)
		nodes(a.nn, func(i int) { vals[i] = f(i) })
		jac[Key{of, wrt}] = vals
	}

	type node struct {
		weight, along, across, normal         float64
		sinI, cosI, sinG, cosG                float64
		dAcrossT, dAcrossA, dAcrossI          float64
		dAlongT, dAlongA, dAlongI             float64
		dNFw, dNFl, dNFt, dNFa, dNFi, gFactor float64
	}
	ns := make([]node, a.nn)
	nodes(a.nn, func(i int) {
		n := &ns[i]
		n.weight = mass[i] * gl
		incl := (alpha[i] - iWing) * d2r
		n.sinI, n.cosI = math.Sincos(incl)
		n.sinG, n.cosG = math.Sincos(gamma[i])
		n.along = thrust[i] * n.cosI
		n.across = thrust[i] * n.sinI

		n.dAlongT = n.cosI
		n.dAlongA = -thrust[i] * n.sinI * d2r
		n.dAlongI = thrust[i] * n.sinI * d2r
		n.dAcrossT = n.sinI
		n.dAcrossA = thrust[i] * n.cosI * d2r
		n.dAcrossI = -thrust[i] * n.cosI * d2r

		nf := n.weight - lift[i] - n.across
		if nf < 0 {
			n.normal = 0
		} else {
			n.normal = nf
			n.dNFw = 1
			n.dNFl = -1
			n.dNFt = -n.dAcrossT
			n.dNFa = -n.dAcrossA
			n.dNFi = -n.dAcrossI
		}
		n.gFactor = g / (tas[i] * n.weight)
	})

	set(FlightPathAngleRate, ThrustTotal, func(i int) float64 { return ns[i].dAcrossT * ns[i].gFactor })
	set(FlightPathAngleRate, Alpha, func(i int) float64 { return ns[i].dAcrossA * ns[i].gFactor })
	set(FlightPathAngleRate, WingIncidence, func(i int) float64 { return ns[i].dAcrossI * ns[i].gFactor })
	set(FlightPathAngleRate, Lift, func(i int) float64 { return ns[i].gFactor })
	set(FlightPathAngleRate, Mass, func(i int) float64 {
		w := ns[i].weight
		return (g / tas[i]) * gl * (-ns[i].across - lift[i]) / (w * w)
	})
	set(FlightPathAngleRate, FlightPathAngle, func(i int) float64 {
		return ns[i].sinG * g / tas[i]
	})
	set(FlightPathAngleRate, TAS, func(i int) float64 {
		n := ns[i]
		return -(n.across + lift[i] - n.weight*n.cosG) * g / (tas[i] * tas[i] * n.weight)
	})

	set(LoadFactor, Lift, func(i int) float64 { return 1 / (ns[i].weight * ns[i].cosG) })
	set(LoadFactor, Mass, func(i int) float64 {
		n := ns[i]
		return -(lift[i] + n.across) / (n.weight * n.weight * n.cosG) * gl
	})
	set(LoadFactor, FlightPathAngle, func(i int) float64 {
		n := ns[i]
		return (lift[i] + n.across) / (n.weight * n.cosG * n.cosG) * n.sinG
	})
	set(LoadFactor, ThrustTotal, func(i int) float64 { return ns[i].dAcrossT / (ns[i].weight * ns[i].cosG) })
	set(LoadFactor, Alpha, func(i int) float64 { return ns[i].dAcrossA / (ns[i].weight * ns[i].cosG) })
	set(LoadFactor, WingIncidence, func(i int) float64 { return ns[i].dAcrossI / (ns[i].weight * ns[i].cosG) })

	set(TASRate, ThrustTotal, func(i int) float64 {
		return (ns[i].dAlongT - mu*ns[i].dNFt) * g / ns[i].weight
	})
	set(TASRate, Alpha, func(i int) float64 {
		return (ns[i].dAlongA - mu*ns[i].dNFa) * g / ns[i].weight
	})
	set(TASRate, WingIncidence, func(i int) float64 {
		return (ns[i].dAlongI - mu*ns[i].dNFi) * g / ns[i].weight
	})
	set(TASRate, Drag, func(i int) float64 { return -g / ns[i].weight })
	set(TASRate, Mass, func(i int) float64 {
		n := ns[i]
		net := n.along - drag[i] - n.weight*n.sinG - mu*n.normal
		return g * gl * (n.weight*(-n.sinG-mu*n.dNFw) - net) / (n.weight * n.weight)
	})
	set(TASRate, FlightPathAngle, func(i int) float64 { return -ns[i].cosG * g })
	set(TASRate, Lift, func(i int) float64 { return g * (-mu * ns[i].dNFl) / ns[i].weight })

	set(AltitudeRate, TAS, func(i int) float64 { return ns[i].sinG })
	set(AltitudeRate, FlightPathAngle, func(i int) float64 { return tas[i] * ns[i].cosG })
	set(DistanceRate, TAS, func(i int) float64 { return ns[i].cosG })
	set(DistanceRate, FlightPathAngle, func(i int) float64 { return -tas[i] * ns[i].sinG })

	set(NormalForce, Mass, func(i int) float64 { return ns[i].dNFw * gl })
	set(NormalForce, Lift, func(i int) float64 { return ns[i].dNFl })
	set(NormalForce, ThrustTotal, func(i int) float64 { return ns[i].dNFt })
	set(NormalForce, Alpha, func(i int) float64 { return ns[i].dNFa })
	set(NormalForce, WingIncidence, func(i int) float64 { return ns[i].dNFi })

	set(FuselagePitch, FlightPathAngle, func(int) float64 { return 180 / math.Pi })
	set(FuselagePitch, Alpha, func(int) float64 { return 1 })
	set(FuselagePitch, WingIncidence, func(int) float64 { return -1 })
}
