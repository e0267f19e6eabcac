// Package sweep flies phases repeatedly: across a range of one fixed input,
// or as a scripted sequence of phases read from yaml.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/flighteom/internal/config"
	"github.com/san-kum/flighteom/internal/mission"
	"github.com/san-kum/flighteom/internal/registry"
	"github.com/san-kum/flighteom/internal/sim"
)

var ErrInvalidSweep = errors.New("sweep: invalid sweep")

// Sweep varies one fixed input of a phase between Min and Max.
type Sweep struct {
	Phase      string
	Integrator string
	Input      string
	Units      string
	Min, Max   float64
	Steps      int
	Workers    int
}

// Point is the outcome of one flight in a sweep.
type Point struct {
	Value   float64
	Final   sim.State
	Time    float64
	Reached bool
	Metrics map[string]float64
	Err     error
}

func (s *Sweep) validate() error {
	if s.Input == "" {
		return fmt.Errorf("%w: no input", ErrInvalidSweep)
	}
	if s.Steps < 1 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidSweep, s.Steps)
	}
	if s.Steps > 1 && s.Max == s.Min {
		return fmt.Errorf("%w: empty range", ErrInvalidSweep)
	}
	return nil
}

// Values returns the evenly spaced input values of the sweep.
func (s *Sweep) Values() []float64 {
	if s.Steps == 1 {
		return []float64{s.Min}
	}
	step := (s.Max - s.Min) / float64(s.Steps-1)
	vals := make([]float64, s.Steps)
	for i := range vals {
		vals[i] = s.Min + float64(i)*step
	}
	return vals
}

// Run flies every point of s concurrently. A flight that fails records its
// error in its point; only cancellation or a bad sweep returns an error.
func Run(ctx context.Context, reg *registry.Registry, s *Sweep, log *zap.Logger) ([]Point, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	def, err := reg.GetPhase(s.Phase)
	if err != nil {
		return nil, err
	}
	if _, ok := def.Inputs[s.Input]; !ok {
		return nil, fmt.Errorf("%w: %s is not a fixed input of %s", ErrInvalidSweep, s.Input, s.Phase)
	}
	unit := s.Units
	if unit == "" {
		unit = def.Inputs[s.Input].Units
	}
	name := s.Integrator
	if name == "" {
		name = "rk4"
	}
	if _, err := reg.GetIntegrator(name); err != nil {
		return nil, err
	}

	values := s.Values()
	points := make([]Point, len(values))

	g, gctx := errgroup.WithContext(ctx)
	if s.Workers > 0 {
		g.SetLimit(s.Workers)
	}
	for i, v := range values {
		g.Go(func() error {
			integ, _ := reg.GetIntegrator(name)
			d := def.With(map[string]config.Value{s.Input: {Value: []float64{v}, Units: unit}})
			points[i] = fly(gctx, d, integ, v, log)
			if gctx.Err() != nil {
				return gctx.Err()
			}
			log.Debug("sweep point",
				zap.String("phase", s.Phase),
				zap.String("input", s.Input),
				zap.Float64("value", v),
				zap.Bool("reached", points[i].Reached))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return points, fmt.Errorf("sweep aborted: %w", err)
	}
	return points, nil
}

func fly(ctx context.Context, d *mission.Definition, integ sim.Integrator, v float64, log *zap.Logger) Point {
	pt := Point{Value: v}
	flight, err := mission.Fly(ctx, d, integ, nil, log)
	if err != nil {
		pt.Err = err
		return pt
	}
	res := flight.Result
	pt.Final = res.Final()
	if n := len(res.Times); n > 0 {
		pt.Time = res.Times[n-1]
	}
	pt.Reached = res.Stopped
	pt.Metrics = res.Metrics
	return pt
}

// Best returns the point with the smallest finite value of metric.
func Best(points []Point, metric string) (Point, bool) {
	best := math.Inf(1)
	var found Point
	ok := false
	for _, p := range points {
		if p.Err != nil {
			continue
		}
		v, has := p.Metrics[metric]
		if !has || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if v < best {
			best, found, ok = v, p, true
		}
	}
	return found, ok
}
