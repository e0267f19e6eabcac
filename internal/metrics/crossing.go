package metrics

import (
	"math"

	"github.com/san-kum/flighteom/internal/sim"
)

// TimeTo records the first time a state component reaches target, linearly
// interpolated between samples. Value is NaN until the target is reached.
type TimeTo struct {
	name    string
	index   int
	target  float64
	hit     float64
	reached bool
	lastT   float64
	lastV   float64
	started bool
}

func NewTimeTo(name string, index int, target float64) *TimeTo {
	return &TimeTo{name: "time_to_" + name, index: index, target: target}
}

func (c *TimeTo) Name() string { return c.name }

func (c *TimeTo) Observe(x sim.State, t float64) {
	if c.reached || c.index >= len(x) {
		return
	}
	v := x[c.index]
	switch {
	case v == c.target || (!c.started && v > c.target):
		c.hit, c.reached = t, true
	case c.started && (v-c.target)*(c.lastV-c.target) < 0:
		frac := (c.target - c.lastV) / (v - c.lastV)
		c.hit, c.reached = c.lastT+frac*(t-c.lastT), true
	}
	c.lastT, c.lastV, c.started = t, v, true
}

func (c *TimeTo) Value() float64 {
	if !c.reached {
		return math.NaN()
	}
	return c.hit
}

func (c *TimeTo) Reset() {
	c.hit, c.lastT, c.lastV = 0, 0, 0
	c.reached, c.started = false, false
}
