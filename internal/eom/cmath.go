package eom

import (
	"math"
	"math/cmplx"
)

// Imaginary parts below this are complex-step perturbations and are
// propagated to first order.
const stepLimit = 1e-20

// casin is arcsin that keeps imaginary parts near 1e-40 intact.
// cmplx.Asin goes through |z| and loses them to rounding. A real or
// step-perturbed argument outside [-1, 1] yields NaN, as math.Asin does.
func casin(z complex128) complex128 {
	a, b := real(z), imag(z)
	switch {
	case math.Abs(b) < stepLimit && (math.Abs(a) > 1 || math.IsNaN(a)):
		return complex(math.NaN(), 0)
	case b == 0:
		return complex(math.Asin(a), 0)
	case math.Abs(b) < stepLimit && math.Abs(a) < 1:
		return complex(math.Asin(a), b/math.Sqrt(1-a*a))
	}
	return cmplx.Asin(z)
}

func csin(z complex128) complex128 { return cmplx.Sin(z) }
func ccos(z complex128) complex128 { return cmplx.Cos(z) }

// rad converts a complex angle in degrees to radians.
func rad(deg complex128) complex128 { return deg * complex(math.Pi/180, 0) }

func cf(v float64) complex128 { return complex(v, 0) }
