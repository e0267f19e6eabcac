package sweep

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/flighteom/internal/config"
	"github.com/san-kum/flighteom/internal/mission"
	"github.com/san-kum/flighteom/internal/registry"
	"github.com/san-kum/flighteom/internal/sim"
)

// Scenario is a scripted sequence of phase flights.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step flies one phase. Zero Dt or Duration keep the phase defaults.
type Step struct {
	Phase      string                  `yaml:"phase"`
	Integrator string                  `yaml:"integrator"`
	Dt         float64                 `yaml:"dt"`
	Duration   float64                 `yaml:"duration"`
	Adaptive   bool                    `yaml:"adaptive"`
	Inputs     map[string]config.Value `yaml:"inputs"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &sc, nil
}

// RunScenario flies each step in order and stops at the first failure.
func RunScenario(ctx context.Context, reg *registry.Registry, sc *Scenario, log *zap.Logger) ([]*mission.Flight, error) {
	if log == nil {
		log = zap.NewNop()
	}
	flights := make([]*mission.Flight, 0, len(sc.Steps))

	for i, step := range sc.Steps {
		def, err := reg.GetPhase(step.Phase)
		if err != nil {
			return flights, fmt.Errorf("step %d: %w", i+1, err)
		}
		name := step.Integrator
		if name == "" {
			name = "rk4"
		}
		integ, err := reg.GetIntegrator(name)
		if err != nil {
			return flights, fmt.Errorf("step %d: %w", i+1, err)
		}
		if len(step.Inputs) > 0 {
			def = def.With(step.Inputs)
		}

		var cfg *sim.Config
		if step.Dt > 0 || step.Duration > 0 || step.Adaptive {
			phase, x0, err := def.Build(log)
			if err != nil {
				return flights, fmt.Errorf("step %d: %w", i+1, err)
			}
			c, err := def.Config(phase, x0)
			if err != nil {
				return flights, fmt.Errorf("step %d: %w", i+1, err)
			}
			if step.Dt > 0 {
				c.Dt = step.Dt
			}
			if step.Duration > 0 {
				c.Duration = step.Duration
			}
			c.Adaptive = step.Adaptive
			cfg = &c
		}

		log.Info("scenario step",
			zap.String("scenario", sc.Name),
			zap.Int("step", i+1),
			zap.String("phase", step.Phase))

		flight, err := mission.Fly(ctx, def, integ, cfg, log)
		if err != nil {
			return flights, fmt.Errorf("step %d run: %w", i+1, err)
		}
		flights = append(flights, flight)
	}
	return flights, nil
}
