package eom

import (
	"math"
	"testing"
)

func TestCasin_ComplexStep(t *testing.T) {
	const h = 1e-40
	for _, x := range []float64{0, 0.00805627, -0.3, 0.9} {
		got := casin(complex(x, h))
		if math.Abs(real(got)-math.Asin(x)) > 1e-15 {
			t.Errorf("asin(%v) real part = %v, want %v", x, real(got), math.Asin(x))
		}
		want := 1 / math.Sqrt(1-x*x)
		if d := imag(got) / h; math.Abs(d-want) > 1e-14*want {
			t.Errorf("d/dx asin(%v) = %v, want %v", x, d, want)
		}
	}
}

func TestCasin_OutOfDomainIsNaN(t *testing.T) {
	for _, z := range []complex128{complex(2.9, 0), complex(-1.5, 0), complex(1.2, 1e-40), complex(math.NaN(), 0)} {
		if got := casin(z); !math.IsNaN(real(got)) {
			t.Errorf("casin(%v) = %v, want NaN", z, got)
		}
	}
	if got := casin(complex(1, 0)); real(got) != math.Pi/2 {
		t.Errorf("casin(1) = %v, want pi/2", got)
	}
}

func TestCasin_LargeImaginaryFallsBack(t *testing.T) {
	z := complex(0.5, 0.5)
	got := casin(z)
	back := csin(got)
	if math.Abs(real(back)-0.5) > 1e-12 || math.Abs(imag(back)-0.5) > 1e-12 {
		t.Errorf("sin(asin(%v)) = %v", z, back)
	}
}

func TestJacobianMatrix(t *testing.T) {
	jac := Jacobian{
		{Of: "y", Wrt: "x"}: {1, 2, 3},
		{Of: "y", Wrt: "s"}: {4, 5, 6},
	}
	d := jac.Matrix(Partial{Of: "y", Wrt: "x", Pattern: Diagonal}, 3, 3)
	if d.At(1, 1) != 2 || d.At(0, 1) != 0 {
		t.Errorf("diagonal expansion wrong: %v", d)
	}
	c := jac.Matrix(Partial{Of: "y", Wrt: "s", Pattern: Column}, 3, 1)
	if c.At(2, 0) != 6 {
		t.Errorf("column expansion wrong: %v", c)
	}
}

func TestValidateJacobian(t *testing.T) {
	c := NewAccelerationRates(1)
	jac := make(Jacobian)
	c.ComputePartials(Vars{Mass: {1}, Drag: {0}, ThrustTotal: {1}, TAS: {1}}, jac)
	if err := ValidateJacobian(c, jac); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	jac[Key{TASRate, TAS}] = []float64{0}
	if err := ValidateJacobian(c, jac); err == nil {
		t.Error("expected undeclared partial error")
	}
}
