package metrics

import (
	"github.com/san-kum/flighteom/internal/sim"
	"github.com/san-kum/flighteom/internal/units"
)

// EnergyHeight reports the final specific energy h + V^2/(2g) in ft for
// states carrying TAS in ft/s and altitude in ft. A negative altitude index
// treats altitude as zero.
type EnergyHeight struct {
	name     string
	tasIdx   int
	altIdx   int
	energy   float64
	observed bool
}

func NewEnergyHeight(tasIdx, altIdx int) *EnergyHeight {
	return &EnergyHeight{
		name:   "energy_height",
		tasIdx: tasIdx,
		altIdx: altIdx,
	}
}

func (e *EnergyHeight) Name() string { return e.name }

func (e *EnergyHeight) Observe(x sim.State, t float64) {
	if e.tasIdx >= len(x) || e.altIdx >= len(x) {
		return
	}
	v := x[e.tasIdx]
	h := 0.0
	if e.altIdx >= 0 {
		h = x[e.altIdx]
	}
	e.energy = h + v*v/(2*units.GravEnglishGASP)
	e.observed = true
}

func (e *EnergyHeight) Value() float64 {
	if !e.observed {
		return 0
	}
	return e.energy
}

func (e *EnergyHeight) Reset() {
	e.energy = 0
	e.observed = false
}
