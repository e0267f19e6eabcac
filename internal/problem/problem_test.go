package problem_test

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/flighteom/internal/eom"
	"github.com/san-kum/flighteom/internal/problem"
	"github.com/san-kum/flighteom/internal/units"
	"github.com/san-kum/flighteom/internal/verify"
)

// quadratic computes y = 3x + s and z = 2x^2 for per-node x and scalar s.
type quadratic struct {
	nn int
	// slope is the analytic dy/dx it reports.
	slope float64
	// dropS leaves (y, s) undeclared.
	dropS bool
	// extra writes an undeclared (z, s) entry.
	extra bool
}

func newQuadratic(nn int) *quadratic { return &quadratic{nn: nn, slope: 3} }

func (q *quadratic) Name() string  { return "quadratic" }
func (q *quadratic) NumNodes() int { return q.nn }

func (q *quadratic) Inputs() []eom.Variable {
	return []eom.Variable{
		{Name: "x", Units: "ft"},
		{Name: "s", Units: "ft", Shape: 1},
	}
}

func (q *quadratic) Outputs() []eom.Variable {
	return []eom.Variable{
		{Name: "y", Units: "ft"},
		{Name: "z", Units: "ft"},
	}
}

func (q *quadratic) Partials() []eom.Partial {
	ps := []eom.Partial{
		{Of: "y", Wrt: "x", Pattern: eom.Diagonal},
		{Of: "z", Wrt: "x", Pattern: eom.Diagonal},
	}
	if !q.dropS {
		ps = append(ps, eom.Partial{Of: "y", Wrt: "s", Pattern: eom.Column})
	}
	return ps
}

func (q *quadratic) Compute(in, out eom.ComplexVars) {
	x, s := in["x"], in["s"]
	y := make([]complex128, q.nn)
	z := make([]complex128, q.nn)
	for i := range y {
		y[i] = 3*x[i] + s[0]
		z[i] = 2 * x[i] * x[i]
	}
	out["y"], out["z"] = y, z
}

func (q *quadratic) ComputePartials(in eom.Vars, jac eom.Jacobian) {
	x := in["x"]
	dyx := make([]float64, q.nn)
	dzx := make([]float64, q.nn)
	dys := make([]float64, q.nn)
	for i := range x {
		dyx[i] = q.slope
		dzx[i] = 4 * x[i]
		dys[i] = 1
	}
	jac[eom.Key{Of: "y", Wrt: "x"}] = dyx
	jac[eom.Key{Of: "z", Wrt: "x"}] = dzx
	if !q.dropS {
		jac[eom.Key{Of: "y", Wrt: "s"}] = dys
	}
	if q.extra {
		jac[eom.Key{Of: "z", Wrt: "s"}] = make([]float64, q.nn)
	}
}

func setupQuadratic(t *testing.T, q *quadratic) *problem.Problem {
	t.Helper()
	p := problem.New(q)
	p.SetInputDefaults("x", []float64{1.5, -2}, "ft")
	p.SetInputDefaults("s", []float64{0.25}, "ft")
	if err := p.Setup(); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := p.RunModel(); err != nil {
		t.Fatalf("run: %v", err)
	}
	return p
}

func TestSetup_Errors(t *testing.T) {
	tests := []struct {
		name     string
		nn       int
		input    string
		vals     []float64
		unit     string
		want     error
		variable string
	}{
		{"shape mismatch", 2, "x", []float64{1, 2, 3}, "ft", problem.ErrShapeMismatch, "x"},
		{"scalar shape mismatch", 2, "s", []float64{1, 2}, "ft", problem.ErrShapeMismatch, "s"},
		{"unknown variable", 2, "w", []float64{1, 2}, "ft", eom.ErrUnknownVariable, "w"},
		{"incompatible units", 2, "x", []float64{1, 2}, "lbf", units.ErrIncompatible, "x"},
		{"unknown units", 2, "x", []float64{1, 2}, "furlong", units.ErrUnknownUnit, "x"},
		{"no nodes", 0, "x", nil, "ft", problem.ErrInvalidNodes, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := problem.New(newQuadratic(tt.nn))
			p.SetInputDefaults(tt.input, tt.vals, tt.unit)
			err := p.Setup()
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if tt.variable == "" {
				return
			}
			var se *problem.SetupError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SetupError, got %T", err)
			}
			if se.Variable != tt.variable {
				t.Errorf("expected variable %s, got %s", tt.variable, se.Variable)
			}
		})
	}
}

func TestProblem_Lifecycle(t *testing.T) {
	p := problem.New(newQuadratic(2))

	if err := p.SetVal("x", []float64{1, 1}, "ft"); !errors.Is(err, problem.ErrNotSetup) {
		t.Errorf("SetVal before setup: expected ErrNotSetup, got %v", err)
	}
	if err := p.RunModel(); !errors.Is(err, problem.ErrNotSetup) {
		t.Errorf("RunModel before setup: expected ErrNotSetup, got %v", err)
	}
	if _, err := p.Get("x"); !errors.Is(err, problem.ErrNotSetup) {
		t.Errorf("Get before setup: expected ErrNotSetup, got %v", err)
	}
	if _, err := p.CheckPartials(problem.ComplexStep); !errors.Is(err, problem.ErrNotSetup) {
		t.Errorf("CheckPartials before setup: expected ErrNotSetup, got %v", err)
	}

	p.SetInputDefaults("x", []float64{1000, 2000}, "m")
	if err := p.Setup(); err != nil {
		t.Fatal(err)
	}

	x, err := p.Get("x")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(x[0]-1000/0.3048) > 1e-9 {
		t.Errorf("expected x converted to ft, got %v", x)
	}
	s, err := p.Get("s")
	if err != nil || len(s) != 1 || s[0] != 1 {
		t.Errorf("expected undefaulted input s = [1], got %v (%v)", s, err)
	}

	if _, err := p.Get("y"); !errors.Is(err, problem.ErrNotRun) {
		t.Errorf("Get output before run: expected ErrNotRun, got %v", err)
	}
	if _, err := p.Get("w"); !errors.Is(err, eom.ErrUnknownVariable) {
		t.Errorf("Get unknown: expected ErrUnknownVariable, got %v", err)
	}

	if err := p.SetVal("x", []float64{1, 2}, "ft"); err != nil {
		t.Fatal(err)
	}
	if err := p.RunModel(); err != nil {
		t.Fatal(err)
	}
	y, err := p.GetVal("y", "m")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(y[1]-(3*2+1)*0.3048) > 1e-12 {
		t.Errorf("expected y[1] = 7 ft in m, got %v", y[1])
	}

	if err := p.SetVal("x", []float64{3, 3}, "ft"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Get("z"); !errors.Is(err, problem.ErrNotRun) {
		t.Errorf("Get output after SetVal: expected ErrNotRun, got %v", err)
	}

	tests := []struct {
		name string
		vars string
		vals []float64
		unit string
		want error
	}{
		{"unknown", "w", []float64{1, 1}, "ft", eom.ErrUnknownVariable},
		{"shape", "x", []float64{1}, "ft", problem.ErrShapeMismatch},
		{"units", "x", []float64{1, 1}, "s", units.ErrIncompatible},
	}
	for _, tt := range tests {
		t.Run("SetVal "+tt.name, func(t *testing.T) {
			if err := p.SetVal(tt.vars, tt.vals, tt.unit); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    problem.Method
		wantErr bool
	}{
		{"", problem.ComplexStep, false},
		{"cs", problem.ComplexStep, false},
		{"fd", problem.FiniteDiff, false},
		{"cd", "", true},
	}

	for _, tt := range tests {
		got, err := problem.ParseMethod(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMethod(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseMethod(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCheckPartials_Methods(t *testing.T) {
	tests := []struct {
		method problem.Method
		atol   float64
		rtol   float64
	}{
		{problem.ComplexStep, 1e-12, 1e-12},
		{problem.FiniteDiff, 1e-5, 1e-5},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			p := setupQuadratic(t, newQuadratic(2))
			data, err := p.CheckPartials(tt.method)
			if err != nil {
				t.Fatal(err)
			}
			if data.Method != tt.method || data.Component != "quadratic" {
				t.Errorf("unexpected header %s/%s", data.Component, data.Method)
			}
			if len(data.Checks) != 4 {
				t.Fatalf("expected every (output, input) pair, got %d checks", len(data.Checks))
			}
			verify.AssertCheckPartials(t, data, tt.atol, tt.rtol)

			zx, ok := data.Find("z", "x")
			if !ok {
				t.Fatal("missing (z, x)")
			}
			if d := zx.Reference.At(1, 1); math.Abs(d-(-8)) > 1e-5 {
				t.Errorf("dz/dx at x=-2: got %v, want -8", d)
			}
			if zx.Reference.At(0, 1) != 0 {
				t.Errorf("off-diagonal reference should be zero")
			}

			zs, ok := data.Find("z", "s")
			if !ok {
				t.Fatal("missing (z, s)")
			}
			if zs.Declared {
				t.Error("(z, s) should be undeclared")
			}
			if zs.AbsError != 0 || !math.IsNaN(zs.RelError) {
				t.Errorf("zero reference: abs %v rel %v, want 0 and NaN", zs.AbsError, zs.RelError)
			}
		})
	}
}

func TestCheckPartials_UnknownMethod(t *testing.T) {
	p := setupQuadratic(t, newQuadratic(2))
	if _, err := p.CheckPartials(problem.Method("cd")); err == nil {
		t.Error("expected error for unknown method")
	}
}

func TestCheckPartials_CatchesBadPartials(t *testing.T) {
	tests := []struct {
		name     string
		comp     *quadratic
		of, wrt  string
		declared bool
	}{
		{"wrong slope", &quadratic{nn: 2, slope: 2.5}, "y", "x", true},
		{"missing declaration", &quadratic{nn: 2, slope: 3, dropS: true}, "y", "s", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := setupQuadratic(t, tt.comp)
			data, err := p.CheckPartials(problem.ComplexStep)
			if err != nil {
				t.Fatal(err)
			}

			err = verify.CheckPartials(data, 1e-12, 1e-12)
			var pe *verify.PartialsError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *PartialsError, got %v", err)
			}
			if len(pe.Failures) != 1 {
				t.Fatalf("expected one failure, got %v", pe.Failures)
			}
			f := pe.Failures[0]
			if f.Of != tt.of || f.Wrt != tt.wrt {
				t.Errorf("expected failure (%s, %s), got (%s, %s)", tt.of, tt.wrt, f.Of, f.Wrt)
			}
			chk, _ := data.Find(tt.of, tt.wrt)
			if chk.Declared != tt.declared {
				t.Errorf("declared = %v, want %v", chk.Declared, tt.declared)
			}
		})
	}
}

func TestCheckPartials_UndeclaredEntry(t *testing.T) {
	p := setupQuadratic(t, &quadratic{nn: 2, slope: 3, extra: true})
	if _, err := p.CheckPartials(problem.ComplexStep); !errors.Is(err, eom.ErrUndeclaredPartial) {
		t.Errorf("expected ErrUndeclaredPartial, got %v", err)
	}
}
