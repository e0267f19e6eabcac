package metrics

import (
	"math"

	"github.com/san-kum/flighteom/internal/sim"
)

// Peak tracks the largest value of one state component.
type Peak struct {
	name  string
	index int
	max   float64
}

func NewPeak(name string, index int) *Peak {
	p := &Peak{name: "peak_" + name, index: index}
	p.Reset()
	return p
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(x sim.State, t float64) {
	if p.index < len(x) {
		p.max = math.Max(p.max, x[p.index])
	}
}

func (p *Peak) Value() float64 {
	if math.IsInf(p.max, -1) {
		return 0
	}
	return p.max
}

func (p *Peak) Reset() { p.max = math.Inf(-1) }

// Mean is the time-weighted average of one state component using the
// trapezoidal rule over observed samples.
type Mean struct {
	name     string
	index    int
	integral float64
	t0       float64
	lastT    float64
	lastV    float64
	samples  int
}

func NewMean(name string, index int) *Mean {
	return &Mean{name: "mean_" + name, index: index}
}

func (m *Mean) Name() string { return m.name }

func (m *Mean) Observe(x sim.State, t float64) {
	if m.index >= len(x) {
		return
	}
	v := x[m.index]
	if m.samples == 0 {
		m.t0 = t
	} else if t > m.lastT {
		m.integral += 0.5 * (v + m.lastV) * (t - m.lastT)
	}
	m.lastT, m.lastV = t, v
	m.samples++
}

func (m *Mean) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	if span := m.lastT - m.t0; span > 0 {
		return m.integral / span
	}
	return m.lastV
}

func (m *Mean) Reset() {
	m.integral, m.t0, m.lastT, m.lastV = 0, 0, 0, 0
	m.samples = 0
}
