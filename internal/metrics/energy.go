package metrics

import (
	"sync"

	"github.com/san-kum/graphsim/internal/force"
	"github.com/san-kum/graphsim/internal/sim"
)

// Energy tracks the mean kinetic energy of the layout. Value is the energy at
// the most recent tick; Peak is the highest seen since Reset.
type Energy struct {
	name string

	mu   sync.Mutex
	last float64
	peak float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) OnTick(f sim.Frame) {
	ke := force.KineticEnergy(f.Nodes)
	e.mu.Lock()
	e.last = ke
	if ke > e.peak {
		e.peak = ke
	}
	e.mu.Unlock()
}

func (e *Energy) OnEnd(sim.Frame)   {}
func (e *Energy) OnFlush(sim.Frame) {}

func (e *Energy) Value() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

func (e *Energy) Peak() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.peak
}

func (e *Energy) Reset() {
	e.mu.Lock()
	e.last, e.peak = 0, 0
	e.mu.Unlock()
}
