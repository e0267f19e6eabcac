package mission

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/san-kum/flighteom/internal/config"
	"github.com/san-kum/flighteom/internal/eom"
	"github.com/san-kum/flighteom/internal/metrics"
	"github.com/san-kum/flighteom/internal/sim"
	"github.com/san-kum/flighteom/internal/units"
)

// Target ends a phase when State reaches Value, in the state's units.
type Target struct {
	State string
	Value float64
}

// Definition describes a phase: which component to fly, which of its
// outputs drive which states, and the fixed inputs and initial conditions.
type Definition struct {
	Name        string
	Description string
	New         func() eom.Component
	States      []Binding
	Inputs      map[string]config.Value
	Initial     map[string]config.Value
	Target      Target
	Duration    float64
	Dt          float64
}

// With returns a copy of d with the given fixed inputs replaced or added.
func (d *Definition) With(inputs map[string]config.Value) *Definition {
	cp := *d
	cp.Inputs = make(map[string]config.Value, len(d.Inputs)+len(inputs))
	for name, v := range d.Inputs {
		cp.Inputs[name] = v
	}
	for name, v := range inputs {
		cp.Inputs[name] = v
	}
	return &cp
}

// Build returns the phase and its initial state.
func (d *Definition) Build(log *zap.Logger) (*Phase, sim.State, error) {
	p, err := NewPhase(d.Name, d.New(), d.States, d.Inputs, log)
	if err != nil {
		return nil, nil, err
	}
	x0 := make(sim.State, len(d.States))
	for i, b := range d.States {
		v, ok := d.Initial[b.State]
		if !ok {
			continue
		}
		conv, err := units.Convert(v.Value[:1], v.Units, b.Units)
		if err != nil {
			return nil, nil, fmt.Errorf("initial %s: %w", b.State, err)
		}
		x0[i] = conv[0]
	}
	return p, x0, nil
}

// Config returns the default simulation settings for d, stopping at the
// target when one is set.
func (d *Definition) Config(p *Phase, x0 sim.State) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if d.Duration > 0 {
		cfg.Duration = d.Duration
	}
	if d.Dt > 0 {
		cfg.Dt = d.Dt
	}
	if d.Target.State != "" {
		stop, err := p.Until(d.Target.State, d.Target.Value, x0)
		if err != nil {
			return cfg, err
		}
		cfg.StopWhen = stop
	}
	return cfg, nil
}

// Flight is the outcome of flying one phase.
type Flight struct {
	Phase   *Phase
	Initial sim.State
	Result  *sim.Result
}

// Metrics attaches the standard per-state metrics for p to s.
func Metrics(s *sim.Simulator, p *Phase, target Target) {
	for i, label := range p.Labels() {
		s.AddMetric(metrics.NewPeak(label, i))
		s.AddMetric(metrics.NewMean(label, i))
	}
	if i := p.Index(target.State); i >= 0 {
		s.AddMetric(metrics.NewTimeTo(target.State, i, target.Value))
	}
	if tas := p.Index(eom.TAS); tas >= 0 {
		s.AddMetric(metrics.NewEnergyHeight(tas, p.Index(eom.Altitude)))
	}
}

// Fly integrates d with integ. A zero cfg uses d's defaults.
func Fly(ctx context.Context, d *Definition, integ sim.Integrator, cfg *sim.Config, log *zap.Logger) (*Flight, error) {
	if log == nil {
		log = zap.NewNop()
	}
	p, x0, err := d.Build(log)
	if err != nil {
		return nil, err
	}
	def, err := d.Config(p, x0)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		stop := def.StopWhen
		def = *cfg
		if def.StopWhen == nil {
			def.StopWhen = stop
		}
	}

	s := sim.New(p, integ)
	Metrics(s, p, d.Target)

	log.Info("flying phase",
		zap.String("phase", d.Name),
		zap.Float64("dt", def.Dt),
		zap.Float64("duration", def.Duration))

	res, err := s.Run(ctx, x0, def)
	if err != nil {
		return nil, err
	}
	log.Info("phase complete",
		zap.String("phase", d.Name),
		zap.Int("steps", res.StepsTaken),
		zap.Bool("target_reached", res.Stopped),
		zap.Int("errors", len(res.Errors)))
	return &Flight{Phase: p, Initial: x0, Result: res}, nil
}

// Builtins are the phases flown around the GASP reference points.
var Builtins = map[string]*Definition{
	"accel": {
		Name:        "accel",
		Description: "level acceleration from 252 kn at the GASP accel point",
		New:         func() eom.Component { return eom.NewAccelerationRates(1) },
		States: []Binding{
			{State: eom.TAS, Rate: eom.TASRate, Units: "ft/s"},
			{State: eom.Distance, Rate: eom.DistanceRate, Units: "ft"},
		},
		Inputs: presetInputs("gasp_accel", eom.Mass, eom.Drag, eom.ThrustTotal),
		Initial: map[string]config.Value{
			eom.TAS:      {Value: []float64{252}, Units: "kn"},
			eom.Distance: {Value: []float64{0}, Units: "ft"},
		},
		Target:   Target{State: eom.TAS, Value: 506.34295713},
		Duration: 120,
		Dt:       0.5,
	},
	"climb": {
		Name:        "climb",
		Description: "steady climb at 459 kn at the GASP climb point",
		New:         func() eom.Component { return eom.NewClimbRates(1) },
		States: []Binding{
			{State: eom.Altitude, Rate: eom.AltitudeRate, Units: "ft"},
			{State: eom.Distance, Rate: eom.DistanceRate, Units: "ft"},
		},
		Inputs: presetInputs("gasp_climb", eom.Mass, eom.Drag, eom.ThrustTotal, eom.TAS),
		Initial: map[string]config.Value{
			eom.Altitude: {Value: []float64{10000}, Units: "ft"},
			eom.Distance: {Value: []float64{0}, Units: "NM"},
		},
		Target:   Target{State: eom.Altitude, Value: 11000},
		Duration: 600,
		Dt:       1,
	},
	"ascent": {
		Name:        "ascent",
		Description: "rotation and initial ascent to 50 ft with rolling friction",
		New: func() eom.Component {
			a := eom.NewAscentEOM(1, eom.Shooting)
			a.Mu = units.MuTakeoff
			return a
		},
		States: []Binding{
			{State: eom.TAS, Rate: eom.TASRate, Units: "ft/s"},
			{State: eom.FlightPathAngle, Rate: eom.FlightPathAngleRate, Units: "rad"},
			{State: eom.Altitude, Rate: eom.AltitudeRate, Units: "ft"},
			{State: eom.Distance, Rate: eom.DistanceRate, Units: "ft"},
		},
		Inputs: map[string]config.Value{
			eom.Mass:          {Value: []float64{174878}, Units: "lbm"},
			eom.ThrustTotal:   {Value: []float64{32589}, Units: "lbf"},
			eom.Lift:          {Value: []float64{180000}, Units: "lbf"},
			eom.Drag:          {Value: []float64{6000}, Units: "lbf"},
			eom.WingIncidence: {Value: []float64{1.5}, Units: "deg"},
			eom.Alpha:         {Value: []float64{8}, Units: "deg"},
		},
		Initial: map[string]config.Value{
			eom.TAS: {Value: []float64{160}, Units: "kn"},
		},
		Target:   Target{State: eom.Altitude, Value: 50},
		Duration: 60,
		Dt:       0.05,
	},
}

// Lookup returns the named built-in phase.
func Lookup(name string) (*Definition, error) {
	d, ok := Builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPhase, name)
	}
	return d, nil
}

func Names() []string {
	names := make([]string, 0, len(Builtins))
	for name := range Builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// presetInputs takes the first node of the named inputs of a reference case.
func presetInputs(preset string, names ...string) map[string]config.Value {
	c := config.GetPreset(preset)
	out := make(map[string]config.Value, len(names))
	for _, n := range names {
		v := c.Inputs[n]
		out[n] = config.Value{Value: v.Value[:1], Units: v.Units}
	}
	return out
}
