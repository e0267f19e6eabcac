// Package mission turns EOM components into integrable flight phases.
package mission

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/flighteom/internal/config"
	"github.com/san-kum/flighteom/internal/eom"
	"github.com/san-kum/flighteom/internal/problem"
	"github.com/san-kum/flighteom/internal/sim"
	"github.com/san-kum/flighteom/internal/units"
)

var (
	ErrUnknownPhase = errors.New("mission: unknown phase")
	ErrBinding      = errors.New("mission: invalid state binding")
	ErrNumNodes     = errors.New("mission: phase components must have one node")
)

// Binding ties a state to the component output that is its time derivative.
// Units are the state's units; when the state is also a component input they
// must be convertible to the input's units.
type Binding struct {
	State string
	Rate  string
	Units string
}

// Phase evaluates a single-node component as sim.Dynamics. States that are
// component inputs are written before each evaluation; every other input
// stays at its fixed value. A Phase is not safe for concurrent use.
type Phase struct {
	name     string
	prob     *problem.Problem
	bindings []Binding
	isInput  []bool
	rateUnit []string
	log      *zap.Logger
	failures int
}

func NewPhase(name string, comp eom.Component, bindings []Binding, fixed map[string]config.Value, log *zap.Logger) (*Phase, error) {
	if comp.NumNodes() != 1 {
		return nil, ErrNumNodes
	}
	if log == nil {
		log = zap.NewNop()
	}
	if len(bindings) == 0 {
		return nil, fmt.Errorf("%w: phase %s has no states", ErrBinding, name)
	}

	p := &Phase{
		name:     name,
		prob:     problem.New(comp, problem.WithLogger(log)),
		bindings: bindings,
		isInput:  make([]bool, len(bindings)),
		rateUnit: make([]string, len(bindings)),
		log:      log,
	}

	seen := make(map[string]bool, len(bindings))
	for i, b := range bindings {
		if seen[b.State] {
			return nil, fmt.Errorf("%w: duplicate state %s", ErrBinding, b.State)
		}
		seen[b.State] = true
		out, ok := eom.Find(comp.Outputs(), b.Rate)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not an output of %s", ErrBinding, b.Rate, comp.Name())
		}
		ru, err := units.PerSecond(b.Units)
		if err != nil {
			return nil, fmt.Errorf("%w: state %s: %v", ErrBinding, b.State, err)
		}
		if !units.Compatible(out.Units, ru) {
			return nil, fmt.Errorf("%w: %s in %s cannot drive %s in %s", ErrBinding, b.Rate, out.Units, b.State, b.Units)
		}
		p.rateUnit[i] = ru
		_, p.isInput[i] = eom.Find(comp.Inputs(), b.State)
	}

	for name, v := range fixed {
		if seen[name] {
			return nil, fmt.Errorf("%w: %s is both a state and a fixed input", ErrBinding, name)
		}
		p.prob.SetInputDefaults(name, v.Value, v.Units)
	}
	if err := p.prob.Setup(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Phase) Name() string  { return p.name }
func (p *Phase) StateDim() int { return len(p.bindings) }

func (p *Phase) Labels() []string {
	labels := make([]string, len(p.bindings))
	for i, b := range p.bindings {
		labels[i] = b.State
	}
	return labels
}

// Units returns the units of each state, in label order.
func (p *Phase) Units() []string {
	us := make([]string, len(p.bindings))
	for i, b := range p.bindings {
		us[i] = b.Units
	}
	return us
}

// Index returns the position of a state, or -1.
func (p *Phase) Index(state string) int {
	for i, b := range p.bindings {
		if b.State == state {
			return i
		}
	}
	return -1
}

// Failures counts evaluations that produced a NaN derivative.
func (p *Phase) Failures() int { return p.failures }

func (p *Phase) Derivative(x sim.State, t float64) sim.State {
	dx, err := p.Rates(x)
	if err != nil {
		p.failures++
		p.log.Warn("phase evaluation failed",
			zap.String("phase", p.name),
			zap.Float64("t", t),
			zap.Error(err))
		for i := range dx {
			dx[i] = math.NaN()
		}
	}
	return dx
}

// Rates evaluates the component at x and returns each bound rate in the
// corresponding state's units per second.
func (p *Phase) Rates(x sim.State) (sim.State, error) {
	dx := make(sim.State, len(p.bindings))
	if len(x) != len(p.bindings) {
		return dx, fmt.Errorf("%w: got %d states, want %d", ErrBinding, len(x), len(p.bindings))
	}
	for i, b := range p.bindings {
		if !p.isInput[i] {
			continue
		}
		if err := p.prob.SetVal(b.State, []float64{x[i]}, b.Units); err != nil {
			return dx, err
		}
	}
	if err := p.prob.RunModel(); err != nil {
		return dx, err
	}
	for i, b := range p.bindings {
		rate, err := p.prob.GetVal(b.Rate, p.rateUnit[i])
		if err != nil {
			return dx, err
		}
		dx[i] = rate[0]
	}
	return dx, nil
}

// Outputs returns every component output at x in component units.
func (p *Phase) Outputs(x sim.State) (eom.Vars, error) {
	if _, err := p.Rates(x); err != nil {
		return nil, err
	}
	return p.prob.Outputs(), nil
}

// Until returns a stop condition that fires once state reaches value from
// the side the initial state x0 starts on.
func (p *Phase) Until(state string, value float64, x0 sim.State) (func(sim.State, float64) bool, error) {
	idx := p.Index(state)
	if idx < 0 || idx >= len(x0) {
		return nil, fmt.Errorf("%w: no state %s", ErrBinding, state)
	}
	if x0[idx] <= value {
		return func(x sim.State, _ float64) bool { return x[idx] >= value }, nil
	}
	return func(x sim.State, _ float64) bool { return x[idx] <= value }, nil
}
