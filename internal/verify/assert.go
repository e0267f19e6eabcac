package verify

import (
	"testing"

	"github.com/san-kum/flighteom/internal/problem"
)

// AssertNearEqual fails t when actual is not within tol of desired.
func AssertNearEqual(t testing.TB, name string, actual, desired []float64, tol float64) {
	t.Helper()
	if err := NearEqual(name, actual, desired, tol); err != nil {
		t.Error(err)
	}
}

// AssertCheckPartials fails t when any block of data is out of tolerance.
func AssertCheckPartials(t testing.TB, data *problem.PartialsData, atol, rtol float64) {
	t.Helper()
	if err := CheckPartials(data, atol, rtol); err != nil {
		t.Error(err)
	}
}
