package mission

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/san-kum/flighteom/internal/config"
	"github.com/san-kum/flighteom/internal/eom"
	"github.com/san-kum/flighteom/internal/integrators"
	"github.com/san-kum/flighteom/internal/sim"
)

func TestPhase_RatesMatchReferencePoints(t *testing.T) {
	tests := []struct {
		phase string
		rates []float64
	}{
		{"accel", []float64{5.51533958, 425.32808399}},
		{"climb", []float64{6.24116612, 774.679584}},
	}

	for _, tt := range tests {
		t.Run(tt.phase, func(t *testing.T) {
			d, err := Lookup(tt.phase)
			require.NoError(t, err)
			p, x0, err := d.Build(nil)
			require.NoError(t, err)

			dx, err := p.Rates(x0)
			require.NoError(t, err)
			for i, want := range tt.rates {
				require.InDelta(t, want, dx[i], 1e-6*want)
			}
		})
	}
}

func TestPhase_InitialStateConverted(t *testing.T) {
	d, err := Lookup("accel")
	require.NoError(t, err)
	p, x0, err := d.Build(nil)
	require.NoError(t, err)

	require.Equal(t, []string{eom.TAS, eom.Distance}, p.Labels())
	require.Equal(t, []string{"ft/s", "ft"}, p.Units())
	require.InDelta(t, 425.32808399, x0[0], 1e-8)
	require.Equal(t, 0.0, x0[1])
}

func TestPhase_StateInputsTrackState(t *testing.T) {
	d, err := Lookup("ascent")
	require.NoError(t, err)
	p, x0, err := d.Build(nil)
	require.NoError(t, err)

	level, err := p.Rates(x0)
	require.NoError(t, err)
	require.Equal(t, 0.0, level[2], "no altitude rate on a level path")

	x := x0.Clone()
	x[1] = 0.1
	climbing, err := p.Rates(x)
	require.NoError(t, err)
	require.InDelta(t, x0[0]*math.Sin(0.1), climbing[2], 1e-9)
	require.Less(t, climbing[0], level[0], "climbing costs airspeed")

	out, err := p.Outputs(x)
	require.NoError(t, err)
	require.Contains(t, out, eom.LoadFactor)
}

func TestNewPhase_Errors(t *testing.T) {
	accel := func() eom.Component { return eom.NewAccelerationRates(1) }

	tests := []struct {
		name     string
		comp     eom.Component
		bindings []Binding
		fixed    map[string]config.Value
		want     error
	}{
		{"multi node", eom.NewAccelerationRates(2), []Binding{{eom.TAS, eom.TASRate, "ft/s"}}, nil, ErrNumNodes},
		{"no states", accel(), nil, nil, ErrBinding},
		{"unknown rate", accel(), []Binding{{eom.TAS, "nope", "ft/s"}}, nil, ErrBinding},
		{"duplicate", accel(), []Binding{{eom.TAS, eom.TASRate, "ft/s"}, {eom.TAS, eom.TASRate, "ft/s"}}, nil, ErrBinding},
		{"units", accel(), []Binding{{eom.TAS, eom.TASRate, "ft"}}, nil, ErrBinding},
		{"state fixed", accel(), []Binding{{eom.TAS, eom.TASRate, "ft/s"}},
			map[string]config.Value{eom.TAS: {Value: []float64{1}, Units: "kn"}}, ErrBinding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPhase("test", tt.comp, tt.bindings, tt.fixed, nil)
			require.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestPhase_BadStateIsNaN(t *testing.T) {
	d, err := Lookup("climb")
	require.NoError(t, err)
	p, _, err := d.Build(nil)
	require.NoError(t, err)

	dx := p.Derivative(sim.State{1}, 0)
	require.True(t, math.IsNaN(dx[0]))
	require.Equal(t, 1, p.Failures())
}

func TestFly_ClimbReachesTarget(t *testing.T) {
	d, err := Lookup("climb")
	require.NoError(t, err)

	f, err := Fly(context.Background(), d, integrators.NewEuler(), nil, nil)
	require.NoError(t, err)
	require.True(t, f.Result.Stopped)
	require.Empty(t, f.Result.Errors)

	// constant rates: 1000 ft at 6.24116612 ft/s
	want := 1000 / 6.24116612
	require.InDelta(t, want, f.Result.Metrics["time_to_altitude"], 1e-6)
	require.Equal(t, int(math.Ceil(want)), f.Result.StepsTaken)
	require.GreaterOrEqual(t, f.Result.Final()[0], 11000.0)
	require.InDelta(t, 11000+6.24116612*(math.Ceil(want)-want), f.Result.Metrics["peak_altitude"], 1e-6)
}

func TestFly_AccelIntegratorsAgree(t *testing.T) {
	d, err := Lookup("accel")
	require.NoError(t, err)

	tests := []struct {
		name  string
		integ sim.Integrator
	}{
		{"euler", integrators.NewEuler()},
		{"rk4", integrators.NewRK4()},
		{"rk45", integrators.NewRK45()},
	}

	want := (506.34295713 - 425.32808399) / 5.51533958
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Fly(context.Background(), d, tt.integ, nil, nil)
			require.NoError(t, err)
			require.True(t, f.Result.Stopped)
			require.InDelta(t, want, f.Result.Metrics["time_to_TAS"], 1e-6)
			require.Greater(t, f.Result.Metrics["energy_height"], 0.0)
		})
	}
}

func TestFly_AscentLeavesGround(t *testing.T) {
	d, err := Lookup("ascent")
	require.NoError(t, err)

	f, err := Fly(context.Background(), d, integrators.NewRK4(), nil, nil)
	require.NoError(t, err)
	require.True(t, f.Result.Stopped, "ascent should reach 50 ft within %v s", d.Duration)

	final := f.Result.Final()
	require.Greater(t, final[1], 0.0)
	require.GreaterOrEqual(t, final[2], 50.0)
	require.Greater(t, final[3], 0.0)
}

func TestFly_OverrideConfigKeepsTarget(t *testing.T) {
	d, err := Lookup("climb")
	require.NoError(t, err)

	cfg := sim.Config{Dt: 10, Duration: 30}
	f, err := Fly(context.Background(), d, integrators.NewRK4(), &cfg, nil)
	require.NoError(t, err)
	require.False(t, f.Result.Stopped)
	require.Len(t, f.Result.States, 4)
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("cruise")
	require.ErrorIs(t, err, ErrUnknownPhase)
	require.Equal(t, []string{"accel", "ascent", "climb"}, Names())
}

func TestDefinition_WithCopies(t *testing.T) {
	d, err := Lookup("climb")
	require.NoError(t, err)

	mod := d.With(map[string]config.Value{eom.ThrustTotal: {Value: []float64{12000}, Units: "lbf"}})
	require.Equal(t, 12000.0, mod.Inputs[eom.ThrustTotal].Value[0])
	require.Equal(t, 10473.0, d.Inputs[eom.ThrustTotal].Value[0])
	require.Equal(t, d.Inputs[eom.Drag], mod.Inputs[eom.Drag])
}

func TestFly_ImpossibleClimbIsRejected(t *testing.T) {
	d, err := Lookup("climb")
	require.NoError(t, err)
	d = d.With(map[string]config.Value{eom.ThrustTotal: {Value: []float64{300000}, Units: "lbf"}})

	f, err := Fly(context.Background(), d, integrators.NewEuler(), nil, nil)
	require.NoError(t, err)
	require.False(t, f.Result.Stopped)
	require.Zero(t, f.Result.StepsTaken)
	require.Len(t, f.Result.Errors, 1)

	var se sim.SimError
	require.True(t, errors.As(f.Result.Errors[0], &se))
	require.Equal(t, 0, se.Step)
	require.Equal(t, 10000.0, f.Result.Final()[0])
}
