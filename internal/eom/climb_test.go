package eom_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/flighteom/internal/eom"
	"github.com/san-kum/flighteom/internal/problem"
)

// Reference values come from GASP, with small accepted discrepancies.
var _ = Describe("ClimbRates", func() {
	var prob *problem.Problem

	BeforeEach(func() {
		prob = problem.New(eom.NewClimbRates(2))
		prob.SetInputDefaults(eom.TAS, []float64{459, 459}, "kn")
		prob.SetInputDefaults(eom.ThrustTotal, []float64{10473, 10473}, "lbf")
		prob.SetInputDefaults(eom.Drag, []float64{9091.517, 9091.517}, "lbf")
		prob.SetInputDefaults(eom.Mass, []float64{171481, 171481}, "lbm")
		Expect(prob.Setup()).To(Succeed())
	})

	It("matches the GASP reference case", func() {
		const tol = 1e-6
		Expect(prob.RunModel()).To(Succeed())

		// GASP: 5.9667
		expectNear(prob, eom.AltitudeRate, []float64{6.24116612, 6.24116612}, tol)
		// GASP finite differenced: 799.489
		expectNear(prob, eom.DistanceRate, []float64{774.679584, 774.679584}, tol)
		// GASP: 170316.2
		expectNear(prob, eom.RequiredLift, []float64{171475.43516703, 171475.43516703}, tol)
		// GASP: 0.0076794487
		expectNear(prob, eom.FlightPathAngle, []float64{0.00805627, 0.00805627}, tol)

		expectPartials(prob, 1e-12, 1e-12)
	})

	It("matches its interface spec", func() {
		expectSpec(prob, "climb_specs/eom.json")
	})

	It("evaluates both nodes identically and repeatably", func() {
		Expect(prob.RunModel()).To(Succeed())
		first := prob.Outputs()
		Expect(prob.RunModel()).To(Succeed())
		Expect(prob.Outputs()).To(Equal(first))

		for name, vals := range first {
			Expect(vals[0]).To(Equal(vals[1]), name)
		}
	})

	It("flies level when thrust equals drag", func() {
		Expect(prob.SetVal(eom.Drag, []float64{10473, 10473}, "lbf")).To(Succeed())
		Expect(prob.RunModel()).To(Succeed())

		gamma, err := prob.Get(eom.FlightPathAngle)
		Expect(err).NotTo(HaveOccurred())
		Expect(gamma).To(Equal([]float64{0, 0}))

		lift, err := prob.Get(eom.RequiredLift)
		Expect(err).NotTo(HaveOccurred())
		Expect(lift[0]).To(BeNumerically("~", 171481, 1e-9))
	})

	It("returns NaN when excess thrust exceeds weight", func() {
		Expect(prob.SetVal(eom.ThrustTotal, []float64{300000, 300000}, "lbf")).To(Succeed())
		Expect(prob.SetVal(eom.Drag, []float64{1000, 1000}, "lbf")).To(Succeed())
		Expect(prob.SetVal(eom.Mass, []float64{100000, 100000}, "lbm")).To(Succeed())
		Expect(prob.RunModel()).To(Succeed())

		for _, name := range []string{eom.FlightPathAngle, eom.AltitudeRate, eom.DistanceRate, eom.RequiredLift} {
			vals, err := prob.Get(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(math.IsNaN(vals[0])).To(BeTrue(), name)
			Expect(math.IsNaN(vals[1])).To(BeTrue(), name)
		}
	})
})
