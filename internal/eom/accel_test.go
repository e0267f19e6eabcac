package eom_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/flighteom/internal/eom"
	"github.com/san-kum/flighteom/internal/problem"
)

// Reference values come from GASP. The two codes compute these differently,
// and GASP's own rates were finite differenced, so small discrepancies from
// the raw GASP output are expected.
var _ = Describe("AccelerationRates", func() {
	var prob *problem.Problem

	BeforeEach(func() {
		prob = problem.New(eom.NewAccelerationRates(2))
		prob.SetInputDefaults(eom.Mass, []float64{174878, 174878}, "lbm")
		// drag is not in the GASP data; estimated from a similar point
		prob.SetInputDefaults(eom.Drag, []float64{2635.225, 2635.225}, "lbf")
		prob.SetInputDefaults(eom.ThrustTotal, []float64{32589, 32589}, "lbf")
		prob.SetInputDefaults(eom.TAS, []float64{252, 252}, "kn")
		Expect(prob.Setup()).To(Succeed())
	})

	It("matches the GASP reference case", func() {
		const tol = 1e-6
		Expect(prob.RunModel()).To(Succeed())

		// GASP finite differenced: 5.2353365
		expectNear(prob, eom.TASRate, []float64{5.51533958, 5.51533958}, tol)
		// GASP finite differenced: 441.6439
		expectNear(prob, eom.DistanceRate, []float64{425.32808399, 425.32808399}, tol)

		expectPartials(prob, 1e-12, 1e-12)
	})

	It("matches its interface spec", func() {
		expectSpec(prob, "accel_specs/eom.json")
	})

	It("evaluates both nodes identically and repeatably", func() {
		Expect(prob.RunModel()).To(Succeed())
		first := prob.Outputs()
		Expect(prob.RunModel()).To(Succeed())
		Expect(prob.Outputs()).To(Equal(first))

		for name, vals := range first {
			Expect(vals).To(HaveLen(2), name)
			Expect(vals[0]).To(Equal(vals[1]), name)
		}
	})

	It("reports outputs in requested units", func() {
		Expect(prob.RunModel()).To(Succeed())
		kn, err := prob.GetVal(eom.DistanceRate, "kn")
		Expect(err).NotTo(HaveOccurred())
		Expect(kn[0]).To(BeNumerically("~", 252, 1e-9))
	})
})
