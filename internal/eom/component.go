package eom

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrUnknownVariable indicates a name the component does not declare.
	ErrUnknownVariable = errors.New("eom: unknown variable")

	// ErrUndeclaredPartial indicates a Jacobian entry written without a declaration.
	ErrUndeclaredPartial = errors.New("eom: partial not declared")
)

// Variable describes one input or output array.
type Variable struct {
	Name  string
	Units string
	Desc  string
	// Shape is the fixed length of the array; zero means one value per node.
	Shape int
}

// Size returns the array length for nn nodes.
func (v Variable) Size(nn int) int {
	if v.Shape > 0 {
		return v.Shape
	}
	return nn
}

// Vars holds real-valued arrays keyed by variable name.
type Vars map[string][]float64

// ComplexVars holds complex-valued arrays keyed by variable name.
type ComplexVars map[string][]complex128

// Complex lifts v into complex arithmetic with zero imaginary parts.
func (v Vars) Complex() ComplexVars {
	out := make(ComplexVars, len(v))
	for name, vals := range v {
		c := make([]complex128, len(vals))
		for i, x := range vals {
			c[i] = complex(x, 0)
		}
		out[name] = c
	}
	return out
}

// Real drops the imaginary parts.
func (c ComplexVars) Real() Vars {
	out := make(Vars, len(c))
	for name, vals := range c {
		r := make([]float64, len(vals))
		for i, x := range vals {
			r[i] = real(x)
		}
		out[name] = r
	}
	return out
}

// Clone deep-copies c.
func (c ComplexVars) Clone() ComplexVars {
	out := make(ComplexVars, len(c))
	for name, vals := range c {
		cp := make([]complex128, len(vals))
		copy(cp, vals)
		out[name] = cp
	}
	return out
}

// Pattern is the sparsity of a declared partial.
type Pattern int

const (
	// Diagonal couples node i of the output only to node i of the input.
	Diagonal Pattern = iota
	// Column couples every node of the output to a single scalar input.
	Column
)

func (p Pattern) String() string {
	switch p {
	case Diagonal:
		return "diagonal"
	case Column:
		return "column"
	default:
		return fmt.Sprintf("pattern(%d)", int(p))
	}
}

// Key identifies the derivative of output Of with respect to input Wrt.
type Key struct {
	Of, Wrt string
}

func (k Key) String() string { return fmt.Sprintf("(%s, %s)", k.Of, k.Wrt) }

// Partial declares a nonzero block of the Jacobian.
type Partial struct {
	Of      string
	Wrt     string
	Pattern Pattern
}

func (p Partial) Key() Key { return Key{Of: p.Of, Wrt: p.Wrt} }

// Jacobian stores the nonzero values of each declared partial, one value per
// node for both patterns.
type Jacobian map[Key][]float64

// Matrix expands a declared block into a dense rows x cols matrix.
func (j Jacobian) Matrix(p Partial, rows, cols int) *mat.Dense {
	m := mat.NewDense(rows, cols, nil)
	vals := j[p.Key()]
	for i, v := range vals {
		if i >= rows {
			break
		}
		switch p.Pattern {
		case Diagonal:
			if i < cols {
				m.Set(i, i, v)
			}
		case Column:
			m.Set(i, 0, v)
		}
	}
	return m
}

// Component is a vectorized explicit function with analytic partials.
type Component interface {
	Name() string
	NumNodes() int
	Inputs() []Variable
	Outputs() []Variable
	Partials() []Partial

	// Compute must only use arithmetic that is valid for complex-step
	// perturbations of its inputs.
	Compute(in ComplexVars, out ComplexVars)
	ComputePartials(in Vars, jac Jacobian)
}

// Find returns the variable called name among vars.
func Find(vars []Variable, name string) (Variable, bool) {
	for _, v := range vars {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// Evaluate runs c on real inputs and returns real outputs.
func Evaluate(c Component, in Vars) Vars {
	out := make(ComplexVars)
	c.Compute(in.Complex(), out)
	return out.Real()
}

// Declared reports whether c declares the partial k.
func Declared(c Component, k Key) (Partial, bool) {
	for _, p := range c.Partials() {
		if p.Key() == k {
			return p, true
		}
	}
	return Partial{}, false
}

// ValidateJacobian rejects entries c wrote without declaring them.
func ValidateJacobian(c Component, jac Jacobian) error {
	for k := range jac {
		if _, ok := Declared(c, k); !ok {
			return fmt.Errorf("%w: %s in %s", ErrUndeclaredPartial, k, c.Name())
		}
	}
	return nil
}

func nodes(n int, f func(i int)) {
	for i := 0; i < n; i++ {
		f(i)
	}
}

func diag(of string, wrt ...string) []Partial {
	ps := make([]Partial, len(wrt))
	for i, w := range wrt {
		ps[i] = Partial{Of: of, Wrt: w, Pattern: Diagonal}
	}
	return ps
}
