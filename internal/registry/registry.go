// Package registry resolves component, integrator and phase names.
package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/flighteom/internal/eom"
	"github.com/san-kum/flighteom/internal/integrators"
	"github.com/san-kum/flighteom/internal/mission"
	"github.com/san-kum/flighteom/internal/sim"
)

var (
	ErrUnknownComponent  = errors.New("registry: unknown component")
	ErrUnknownIntegrator = errors.New("registry: unknown integrator")
)

type Registry struct {
	components  map[string]func(nn int) eom.Component
	integrators map[string]func() sim.Integrator
	phases      map[string]*mission.Definition
}

func New() *Registry {
	r := &Registry{
		components:  make(map[string]func(int) eom.Component),
		integrators: make(map[string]func() sim.Integrator),
		phases:      make(map[string]*mission.Definition),
	}

	r.components["accel"] = func(nn int) eom.Component { return eom.NewAccelerationRates(nn) }
	r.components["climb"] = func(nn int) eom.Component { return eom.NewClimbRates(nn) }
	r.components["ascent"] = func(nn int) eom.Component { return eom.NewAscentEOM(nn, eom.Collocation) }

	r.integrators["euler"] = func() sim.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() sim.Integrator { return integrators.NewRK4() }
	r.integrators["rk45"] = func() sim.Integrator { return integrators.NewRK45() }

	for name, d := range mission.Builtins {
		r.phases[name] = d
	}

	return r
}

func (r *Registry) GetComponent(name string, numNodes int) (eom.Component, error) {
	fn, ok := r.components[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownComponent, name)
	}
	return fn(numNodes), nil
}

func (r *Registry) GetIntegrator(name string) (sim.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIntegrator, name)
	}
	return fn(), nil
}

func (r *Registry) GetPhase(name string) (*mission.Definition, error) {
	d, ok := r.phases[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", mission.ErrUnknownPhase, name)
	}
	return d, nil
}

func (r *Registry) ListComponents() []string  { return keys(r.components) }
func (r *Registry) ListIntegrators() []string { return keys(r.integrators) }
func (r *Registry) ListPhases() []string      { return keys(r.phases) }

func keys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
