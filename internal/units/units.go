// Package units converts values between the engineering units used by the
// equations of motion.
//
// Every unit carries a dimension signature and the factor that scales it to
// SI. Conversion is only allowed between units of the same dimension.
package units

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrUnknownUnit  = errors.New("units: unknown unit")
	ErrIncompatible = errors.New("units: incompatible dimensions")
)

const (
	// GravEnglishGASP is the gravitational acceleration used by GASP, ft/s**2.
	GravEnglishGASP = 32.2
	// GravEnglishLbm converts lbm to lbf at standard gravity.
	GravEnglishLbm = 1.0
	// MuTakeoff is the rolling friction coefficient during takeoff.
	MuTakeoff = 0.03

	footToMeter = 0.3048
	nmToMeter   = 1852.0
	lbmToKg     = 0.45359237
	lbfToNewton = lbmToKg * 9.80665
)

// Dimension holds exponents of mass, length, time and plane angle.
type Dimension struct {
	Mass, Length, Time, Angle int
}

func (d Dimension) String() string {
	return fmt.Sprintf("M%d L%d T%d A%d", d.Mass, d.Length, d.Time, d.Angle)
}

type Unit struct {
	Name   string
	Factor float64
	Dim    Dimension
}

var (
	dimNone  = Dimension{}
	dimMass  = Dimension{Mass: 1}
	dimForce = Dimension{Mass: 1, Length: 1, Time: -2}
	dimLen   = Dimension{Length: 1}
	dimSpeed = Dimension{Length: 1, Time: -1}
	dimAccel = Dimension{Length: 1, Time: -2}
	dimTime  = Dimension{Time: 1}
	dimAngle = Dimension{Angle: 1}
	dimRate  = Dimension{Angle: 1, Time: -1}
)

var table = map[string]Unit{
	"unitless": {"unitless", 1, dimNone},
	"kg":       {"kg", 1, dimMass},
	"lbm":      {"lbm", lbmToKg, dimMass},
	"N":        {"N", 1, dimForce},
	"lbf":      {"lbf", lbfToNewton, dimForce},
	"m":        {"m", 1, dimLen},
	"ft":       {"ft", footToMeter, dimLen},
	"NM":       {"NM", nmToMeter, dimLen},
	"m/s":      {"m/s", 1, dimSpeed},
	"ft/s":     {"ft/s", footToMeter, dimSpeed},
	"kn":       {"kn", nmToMeter / 3600, dimSpeed},
	"m/s**2":   {"m/s**2", 1, dimAccel},
	"ft/s**2":  {"ft/s**2", footToMeter, dimAccel},
	"s":        {"s", 1, dimTime},
	"min":      {"min", 60, dimTime},
	"rad":      {"rad", 1, dimAngle},
	"deg":      {"deg", math.Pi / 180, dimAngle},
	"rad/s":    {"rad/s", 1, dimRate},
	"deg/s":    {"deg/s", math.Pi / 180, dimRate},
}

// Lookup returns the named unit. An empty name is treated as unitless.
func Lookup(name string) (Unit, error) {
	if name == "" {
		name = "unitless"
	}
	u, ok := table[name]
	if !ok {
		return Unit{}, fmt.Errorf("%w: %q", ErrUnknownUnit, name)
	}
	return u, nil
}

// Names lists every known unit, sorted.
func Names() []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Factor returns the multiplier taking a value in from to a value in to.
func Factor(from, to string) (float64, error) {
	uf, err := Lookup(from)
	if err != nil {
		return 0, err
	}
	ut, err := Lookup(to)
	if err != nil {
		return 0, err
	}
	if uf.Dim != ut.Dim {
		return 0, fmt.Errorf("%w: %s (%s) to %s (%s)", ErrIncompatible, uf.Name, uf.Dim, ut.Name, ut.Dim)
	}
	if uf.Name == ut.Name {
		return 1, nil
	}
	return uf.Factor / ut.Factor, nil
}

func Compatible(a, b string) bool {
	_, err := Factor(a, b)
	return err == nil
}

// Convert returns a new slice holding vals expressed in the to unit.
func Convert(vals []float64, from, to string) ([]float64, error) {
	f, err := Factor(from, to)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = v * f
	}
	return out, nil
}

// ConvertComplex is Convert for complex values; both parts are scaled.
func ConvertComplex(vals []complex128, from, to string) ([]complex128, error) {
	f, err := Factor(from, to)
	if err != nil {
		return nil, err
	}
	out := make([]complex128, len(vals))
	for i, v := range vals {
		out[i] = v * complex(f, 0)
	}
	return out, nil
}

// PerSecond returns the unit of the time rate of name, e.g. ft/s for ft.
func PerSecond(name string) (string, error) {
	u, err := Lookup(name)
	if err != nil {
		return "", err
	}
	want := u.Dim
	want.Time--
	for _, n := range Names() {
		c := table[n]
		if c.Dim == want && math.Abs(c.Factor-u.Factor) <= 1e-12*u.Factor {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: no rate unit for %s", ErrUnknownUnit, u.Name)
}
