package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultNumNodes  = 2
	DefaultTolerance = 1e-6
	DefaultMethod    = "cs"
	DefaultAtol      = 1e-12
	DefaultRtol      = 1e-12
)

var ErrInvalidCase = errors.New("config: invalid case")

// Case is one reference validation case: inputs with units, expected
// outputs, and the tolerances to hold them to.
type Case struct {
	Name      string            `yaml:"name"`
	Component string            `yaml:"component"`
	NumNodes  int               `yaml:"num_nodes"`
	Tolerance float64           `yaml:"tolerance"`
	Partials  PartialsConfig    `yaml:"partials"`
	Inputs    map[string]Value  `yaml:"inputs"`
	Expected  map[string]Value  `yaml:"expected"`
	SpecFile  string            `yaml:"spec_file,omitempty"`
	Notes     map[string]string `yaml:"notes,omitempty"`
}

// Value is an array with its units. Units may be empty for expected values,
// meaning the component's own units.
type Value struct {
	Value []float64 `yaml:"value,flow"`
	Units string    `yaml:"units,omitempty"`
}

type PartialsConfig struct {
	Method string  `yaml:"method"`
	Atol   float64 `yaml:"atol"`
	Rtol   float64 `yaml:"rtol"`
	Skip   bool    `yaml:"skip,omitempty"`
}

func DefaultCase() *Case {
	return &Case{
		NumNodes:  DefaultNumNodes,
		Tolerance: DefaultTolerance,
		Partials: PartialsConfig{
			Method: DefaultMethod,
			Atol:   DefaultAtol,
			Rtol:   DefaultRtol,
		},
		Inputs:   make(map[string]Value),
		Expected: make(map[string]Value),
	}
}

func Load(path string) (*Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := DefaultCase()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func Save(path string, c *Case) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the case is runnable: a component, positive tolerances, and
// arrays sized to the node count (scalars of length 1 are allowed for inputs).
func (c *Case) Validate() error {
	if c.Component == "" {
		return fmt.Errorf("%w: missing component", ErrInvalidCase)
	}
	if c.NumNodes < 1 {
		return fmt.Errorf("%w: num_nodes must be positive, got %d", ErrInvalidCase, c.NumNodes)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("%w: tolerance must be positive", ErrInvalidCase)
	}
	if len(c.Expected) == 0 {
		return fmt.Errorf("%w: no expected outputs", ErrInvalidCase)
	}
	for name, v := range c.Inputs {
		if len(v.Value) != c.NumNodes && len(v.Value) != 1 {
			return fmt.Errorf("%w: input %s has %d values for %d nodes", ErrInvalidCase, name, len(v.Value), c.NumNodes)
		}
	}
	for name, v := range c.Expected {
		if len(v.Value) != c.NumNodes {
			return fmt.Errorf("%w: expected %s has %d values for %d nodes", ErrInvalidCase, name, len(v.Value), c.NumNodes)
		}
	}
	return nil
}

// Title returns the case name, falling back to the component.
func (c *Case) Title() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Component
}
