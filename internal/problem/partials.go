package problem

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/flighteom/internal/eom"
)

// Method selects how reference derivatives are approximated.
type Method string

const (
	ComplexStep Method = "cs"
	FiniteDiff  Method = "fd"

	defaultMethod = ComplexStep
)

const (
	complexStepH = 1e-40
	finiteDiffH  = 1e-6
)

// ParseMethod accepts "cs", "fd" or an empty string (complex step).
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case "":
		return defaultMethod, nil
	case ComplexStep, FiniteDiff:
		return Method(s), nil
	}
	return "", fmt.Errorf("unknown partials method: %s", s)
}

// PartialCheck compares one analytic Jacobian block with its approximation.
type PartialCheck struct {
	Of, Wrt   string
	Declared  bool
	Analytic  *mat.Dense
	Reference *mat.Dense
	// AbsError is the Frobenius norm of Reference - Analytic.
	AbsError float64
	// RelError is AbsError over the norm of Reference, NaN when that is zero.
	RelError float64
}

func (c PartialCheck) Key() eom.Key { return eom.Key{Of: c.Of, Wrt: c.Wrt} }

// PartialsData holds every (output, input) comparison for one component.
type PartialsData struct {
	Component string
	Method    Method
	Checks    []PartialCheck
}

// CheckPartials compares the component's analytic partials against complex
// step or forward difference derivatives at the current inputs.
func (p *Problem) CheckPartials(method Method) (*PartialsData, error) {
	if !p.isSetup {
		return nil, ErrNotSetup
	}

	nn := p.comp.NumNodes()
	ins, outs := p.comp.Inputs(), p.comp.Outputs()

	jac := make(eom.Jacobian)
	p.comp.ComputePartials(p.Inputs(), jac)
	if err := eom.ValidateJacobian(p.comp, jac); err != nil {
		return nil, err
	}

	base := p.inputs.Complex()
	baseOut := make(eom.ComplexVars)
	p.comp.Compute(base, baseOut)

	ref := make(map[eom.Key]*mat.Dense, len(ins)*len(outs))
	for _, o := range outs {
		for _, in := range ins {
			ref[eom.Key{Of: o.Name, Wrt: in.Name}] = mat.NewDense(o.Size(nn), in.Size(nn), nil)
		}
	}

	for _, in := range ins {
		for j := 0; j < in.Size(nn); j++ {
			pert := base.Clone()
			switch method {
			case ComplexStep:
				pert[in.Name][j] += complex(0, complexStepH)
			case FiniteDiff:
				pert[in.Name][j] += complex(finiteDiffH, 0)
			default:
				return nil, fmt.Errorf("unknown partials method: %s", method)
			}

			out := make(eom.ComplexVars)
			p.comp.Compute(pert, out)

			for _, o := range outs {
				m := ref[eom.Key{Of: o.Name, Wrt: in.Name}]
				for i := 0; i < o.Size(nn); i++ {
					var d float64
					if method == ComplexStep {
						d = imag(out[o.Name][i]) / complexStepH
					} else {
						d = (real(out[o.Name][i]) - real(baseOut[o.Name][i])) / finiteDiffH
					}
					m.Set(i, j, d)
				}
			}
		}
	}

	data := &PartialsData{Component: p.comp.Name(), Method: method}
	for _, o := range outs {
		for _, in := range ins {
			key := eom.Key{Of: o.Name, Wrt: in.Name}
			rows, cols := o.Size(nn), in.Size(nn)

			decl, declared := eom.Declared(p.comp, key)
			analytic := mat.NewDense(rows, cols, nil)
			if declared {
				analytic = jac.Matrix(decl, rows, cols)
			}

			var diff mat.Dense
			diff.Sub(ref[key], analytic)
			abs := mat.Norm(&diff, 2)
			rel := math.NaN()
			if n := mat.Norm(ref[key], 2); n > 0 {
				rel = abs / n
			}

			data.Checks = append(data.Checks, PartialCheck{
				Of:        o.Name,
				Wrt:       in.Name,
				Declared:  declared,
				Analytic:  analytic,
				Reference: ref[key],
				AbsError:  abs,
				RelError:  rel,
			})
		}
	}

	p.log.Debug("partials checked",
		zap.String("component", p.comp.Name()),
		zap.String("method", string(method)),
		zap.Int("pairs", len(data.Checks)))
	return data, nil
}

// Find returns the check for (of, wrt).
func (d *PartialsData) Find(of, wrt string) (PartialCheck, bool) {
	for _, c := range d.Checks {
		if c.Of == of && c.Wrt == wrt {
			return c, true
		}
	}
	return PartialCheck{}, false
}
