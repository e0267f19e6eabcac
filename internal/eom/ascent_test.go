package eom_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/flighteom/internal/eom"
	"github.com/san-kum/flighteom/internal/problem"
	"github.com/san-kum/flighteom/internal/units"
)

var _ = Describe("AscentEOM", func() {
	var (
		comp *eom.AscentEOM
		prob *problem.Problem
	)

	setup := func(lift float64) {
		prob = problem.New(comp)
		prob.SetInputDefaults(eom.Mass, []float64{174878, 174878}, "lbm")
		prob.SetInputDefaults(eom.ThrustTotal, []float64{27000, 27000}, "lbf")
		prob.SetInputDefaults(eom.Lift, []float64{lift, lift}, "lbf")
		prob.SetInputDefaults(eom.Drag, []float64{5000, 5000}, "lbf")
		prob.SetInputDefaults(eom.TAS, []float64{150, 150}, "kn")
		prob.SetInputDefaults(eom.FlightPathAngle, []float64{0.05, 0.05}, "rad")
		prob.SetInputDefaults(eom.WingIncidence, []float64{1.2}, "deg")
		prob.SetInputDefaults(eom.Alpha, []float64{8, 8}, "deg")
		Expect(prob.Setup()).To(Succeed())
		Expect(prob.RunModel()).To(Succeed())
	}

	get := func(name string) []float64 {
		GinkgoHelper()
		v, err := prob.Get(name)
		Expect(err).NotTo(HaveOccurred())
		return v
	}

	BeforeEach(func() {
		comp = eom.NewAscentEOM(2, eom.Collocation)
	})

	Context("on the ground", func() {
		BeforeEach(func() { setup(150000) })

		It("carries the remaining weight as normal force", func() {
			across := 27000 * math.Sin(6.8*math.Pi/180)
			Expect(get(eom.NormalForce)[0]).To(BeNumerically("~", 174878-150000-across, 1e-8))
		})

		It("relates pitch, kinematics and alpha rate", func() {
			tas := get(eom.TAS)[0]
			Expect(get(eom.FuselagePitch)[0]).To(BeNumerically("~", 0.05*180/math.Pi-1.2+8, 1e-12))
			Expect(get(eom.AltitudeRate)[0]).To(BeNumerically("~", tas*math.Sin(0.05), 1e-12))
			Expect(get(eom.DistanceRate)[0]).To(BeNumerically("~", tas*math.Cos(0.05), 1e-12))
			Expect(get(eom.AlphaRate)).To(Equal([]float64{0, 0}))
		})

		It("has consistent partials without friction", func() {
			expectPartials(prob, 1e-10, 1e-10)
		})

		It("has consistent partials with rolling friction", func() {
			comp.Mu = units.MuTakeoff
			setup(150000)
			Expect(get(eom.NormalForce)[0]).To(BeNumerically(">", 0))
			expectPartials(prob, 1e-10, 1e-10)
		})

		It("matches its interface spec", func() {
			expectSpec(prob, "ascent_specs/eom.json")
		})
	})

	Context("airborne", func() {
		BeforeEach(func() {
			comp.Mu = units.MuTakeoff
			setup(200000)
		})

		It("clamps normal force at zero", func() {
			Expect(get(eom.NormalForce)).To(Equal([]float64{0, 0}))
		})

		It("has consistent partials", func() {
			expectPartials(prob, 1e-10, 1e-10)
		})

		It("pitches up when lift exceeds weight", func() {
			Expect(get(eom.FlightPathAngleRate)[0]).To(BeNumerically(">", 0))
			Expect(get(eom.LoadFactor)[0]).To(BeNumerically(">", 1))
		})
	})

	It("adds distance and altitude inputs for shooting", func() {
		shooting := eom.NewAscentEOM(2, eom.Shooting)
		_, hasDist := eom.Find(shooting.Inputs(), eom.Distance)
		_, hasAlt := eom.Find(shooting.Inputs(), eom.Altitude)
		Expect(hasDist && hasAlt).To(BeTrue())

		_, collocDist := eom.Find(comp.Inputs(), eom.Distance)
		Expect(collocDist).To(BeFalse())
	})
})
