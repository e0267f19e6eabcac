// Package verify holds the numeric assertions used to validate EOM
// components: relative near-equality of output arrays and consistency of
// analytic partials with their approximations.
package verify

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/flighteom/internal/problem"
)

var (
	// ErrNumericMismatch indicates a value outside its tolerance.
	ErrNumericMismatch = errors.New("verify: numeric mismatch")

	// ErrPartialsMismatch indicates analytic partials disagree with the reference.
	ErrPartialsMismatch = errors.New("verify: partial derivative mismatch")
)

// MismatchError reports a failed NearEqual comparison.
type MismatchError struct {
	Name      string
	Actual    []float64
	Desired   []float64
	RelError  float64
	Tolerance float64
	Shape     bool
}

func (e *MismatchError) Error() string {
	if e.Shape {
		return fmt.Sprintf("%s: shape mismatch: actual has %d values, desired has %d",
			e.Name, len(e.Actual), len(e.Desired))
	}
	return fmt.Sprintf("%s: actual %v, desired %v, rel error %.6e, tolerance %.1e",
		e.Name, e.Actual, e.Desired, e.RelError, e.Tolerance)
}

func (e *MismatchError) Unwrap() error {
	return ErrNumericMismatch
}

// RelativeError returns ||actual - desired|| / ||desired||, or the absolute
// norm when desired is all zeros.
func RelativeError(actual, desired []float64) float64 {
	diff := make([]float64, len(actual))
	floats.SubTo(diff, actual, desired)
	abs := floats.Norm(diff, 2)
	if n := floats.Norm(desired, 2); n != 0 {
		return abs / n
	}
	return abs
}

// NearEqual returns a *MismatchError when actual differs from desired by more
// than tol in relative terms. NaN anywhere is a mismatch.
func NearEqual(name string, actual, desired []float64, tol float64) error {
	if len(actual) != len(desired) {
		return &MismatchError{Name: name, Actual: actual, Desired: desired, Tolerance: tol, Shape: true}
	}
	if len(actual) == 0 {
		return nil
	}
	err := RelativeError(actual, desired)
	if math.IsNaN(err) || err > tol {
		return &MismatchError{Name: name, Actual: actual, Desired: desired, RelError: err, Tolerance: tol}
	}
	return nil
}

// PartialFailure is one Jacobian block out of tolerance.
type PartialFailure struct {
	Of, Wrt   string
	Magnitude float64
	AbsError  float64
	RelError  float64
}

// PartialsError lists every failing block of a partials check.
type PartialsError struct {
	Component string
	Failures  []PartialFailure
}

func (e *PartialsError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d partials out of tolerance", e.Component, len(e.Failures))
	for _, f := range e.Failures {
		fmt.Fprintf(&b, "\n  (%s, %s): magnitude %.6e, abs error %.6e, rel error %.6e",
			f.Of, f.Wrt, f.Magnitude, f.AbsError, f.RelError)
	}
	return b.String()
}

func (e *PartialsError) Unwrap() error {
	return ErrPartialsMismatch
}

// CheckPartials fails any block whose absolute error exceeds atol or whose
// relative error exceeds rtol. Relative error is skipped for blocks with a
// zero reference.
func CheckPartials(data *problem.PartialsData, atol, rtol float64) error {
	var failures []PartialFailure
	for _, c := range data.Checks {
		bad := c.AbsError > atol || math.IsNaN(c.AbsError)
		if !math.IsNaN(c.RelError) && c.RelError > rtol {
			bad = true
		}
		if !bad {
			continue
		}
		failures = append(failures, PartialFailure{
			Of:        c.Of,
			Wrt:       c.Wrt,
			Magnitude: Magnitude(c),
			AbsError:  c.AbsError,
			RelError:  c.RelError,
		})
	}
	if len(failures) == 0 {
		return nil
	}
	sort.Slice(failures, func(i, j int) bool {
		if failures[i].Of != failures[j].Of {
			return failures[i].Of < failures[j].Of
		}
		return failures[i].Wrt < failures[j].Wrt
	})
	return &PartialsError{Component: data.Component, Failures: failures}
}

// Magnitude is the largest absolute entry of the reference block of c.
func Magnitude(c problem.PartialCheck) float64 {
	r, col := c.Reference.Dims()
	m := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < col; j++ {
			m = math.Max(m, math.Abs(c.Reference.At(i, j)))
		}
	}
	return m
}
