// Package problem wraps an EOM component in an evaluation context: input
// defaults with units, setup, model runs and partial derivative checks.
package problem

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/flighteom/internal/eom"
	"github.com/san-kum/flighteom/internal/units"
)

var (
	ErrNotSetup      = errors.New("problem: setup has not been called")
	ErrNotRun        = errors.New("problem: model has not been run")
	ErrInvalidNodes  = errors.New("problem: number of nodes must be positive")
	ErrShapeMismatch = errors.New("problem: value length does not match variable shape")
	ErrMissingOutput = errors.New("problem: component did not produce output")
)

// SetupError wraps a setup failure with the offending variable.
type SetupError struct {
	Variable string
	Wrapped  error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup %s: %v", e.Variable, e.Wrapped)
}

func (e *SetupError) Unwrap() error {
	return e.Wrapped
}

type inputDefault struct {
	vals  []float64
	units string
}

// Problem owns one component and its input and output arrays. It is not
// safe for concurrent use; build one Problem per goroutine.
type Problem struct {
	comp     eom.Component
	log      *zap.Logger
	defaults map[string]inputDefault
	order    []string

	inputs  eom.Vars
	outputs eom.Vars
	isSetup bool
	ran     bool
}

type Option func(*Problem)

func WithLogger(l *zap.Logger) Option {
	return func(p *Problem) {
		if l != nil {
			p.log = l
		}
	}
}

func New(c eom.Component, opts ...Option) *Problem {
	p := &Problem{
		comp:     c,
		log:      zap.NewNop(),
		defaults: make(map[string]inputDefault),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Problem) Component() eom.Component { return p.comp }

// SetInputDefaults records the initial value of an input in the given units.
// Values are validated and converted by Setup.
func (p *Problem) SetInputDefaults(name string, vals []float64, unit string) {
	if _, seen := p.defaults[name]; !seen {
		p.order = append(p.order, name)
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	p.defaults[name] = inputDefault{vals: cp, units: unit}
	p.isSetup = false
}

// Setup allocates every input and output. Inputs without a default are set
// to 1 in the component's own units.
func (p *Problem) Setup() error {
	nn := p.comp.NumNodes()
	if nn < 1 {
		return ErrInvalidNodes
	}

	declared := p.comp.Inputs()
	for _, name := range p.order {
		if _, ok := eom.Find(declared, name); !ok {
			return &SetupError{Variable: name, Wrapped: eom.ErrUnknownVariable}
		}
	}

	inputs := make(eom.Vars, len(declared))
	for _, v := range declared {
		size := v.Size(nn)
		def, ok := p.defaults[v.Name]
		if !ok {
			vals := make([]float64, size)
			for i := range vals {
				vals[i] = 1
			}
			inputs[v.Name] = vals
			continue
		}
		if len(def.vals) != size {
			return &SetupError{
				Variable: v.Name,
				Wrapped:  fmt.Errorf("%w: got %d, want %d", ErrShapeMismatch, len(def.vals), size),
			}
		}
		vals, err := units.Convert(def.vals, def.units, v.Units)
		if err != nil {
			return &SetupError{Variable: v.Name, Wrapped: err}
		}
		inputs[v.Name] = vals
	}

	outputs := make(eom.Vars)
	for _, v := range p.comp.Outputs() {
		outputs[v.Name] = make([]float64, v.Size(nn))
	}

	p.inputs = inputs
	p.outputs = outputs
	p.isSetup = true
	p.ran = false

	p.log.Debug("problem setup",
		zap.String("component", p.comp.Name()),
		zap.Int("num_nodes", nn),
		zap.Int("inputs", len(inputs)),
		zap.Int("outputs", len(outputs)))
	return nil
}

// SetVal overwrites an input after setup.
func (p *Problem) SetVal(name string, vals []float64, unit string) error {
	if !p.isSetup {
		return ErrNotSetup
	}
	v, ok := eom.Find(p.comp.Inputs(), name)
	if !ok {
		return fmt.Errorf("%w: %s", eom.ErrUnknownVariable, name)
	}
	if len(vals) != v.Size(p.comp.NumNodes()) {
		return fmt.Errorf("%w: %s", ErrShapeMismatch, name)
	}
	conv, err := units.Convert(vals, unit, v.Units)
	if err != nil {
		return err
	}
	p.inputs[name] = conv
	p.ran = false
	return nil
}

// RunModel evaluates the component once at the current inputs.
func (p *Problem) RunModel() error {
	if !p.isSetup {
		return ErrNotSetup
	}

	out := make(eom.ComplexVars)
	p.comp.Compute(p.inputs.Complex(), out)

	nn := p.comp.NumNodes()
	results := out.Real()
	for _, v := range p.comp.Outputs() {
		vals, ok := results[v.Name]
		if !ok || len(vals) != v.Size(nn) {
			return fmt.Errorf("%w: %s", ErrMissingOutput, v.Name)
		}
		p.outputs[v.Name] = vals
	}
	p.ran = true

	p.log.Debug("model run", zap.String("component", p.comp.Name()))
	return nil
}

// Get returns a copy of an input or output in the component's units.
func (p *Problem) Get(name string) ([]float64, error) {
	if !p.isSetup {
		return nil, ErrNotSetup
	}
	if vals, ok := p.inputs[name]; ok {
		return clone(vals), nil
	}
	if vals, ok := p.outputs[name]; ok {
		if !p.ran {
			return nil, ErrNotRun
		}
		return clone(vals), nil
	}
	return nil, fmt.Errorf("%w: %s", eom.ErrUnknownVariable, name)
}

// GetVal returns an input or output converted to unit.
func (p *Problem) GetVal(name, unit string) ([]float64, error) {
	vals, err := p.Get(name)
	if err != nil {
		return nil, err
	}
	v, ok := eom.Find(p.comp.Inputs(), name)
	if !ok {
		v, _ = eom.Find(p.comp.Outputs(), name)
	}
	return units.Convert(vals, v.Units, unit)
}

// Inputs returns a copy of every input in component units.
func (p *Problem) Inputs() eom.Vars {
	out := make(eom.Vars, len(p.inputs))
	for k, v := range p.inputs {
		out[k] = clone(v)
	}
	return out
}

// Outputs returns a copy of every output in component units.
func (p *Problem) Outputs() eom.Vars {
	out := make(eom.Vars, len(p.outputs))
	for k, v := range p.outputs {
		out[k] = clone(v)
	}
	return out
}

func clone(v []float64) []float64 {
	c := make([]float64, len(v))
	copy(c, v)
	return c
}
