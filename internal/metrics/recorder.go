package metrics

import (
	"sync"

	"github.com/san-kum/graphsim/internal/force"
	"github.com/san-kum/graphsim/internal/sim"
)

// Sample is one row of a run trace.
type Sample struct {
	Tick   int
	Alpha  float64
	Energy float64
}

// Recorder keeps a Sample every Every ticks (every tick when Every <= 1).
// The converging tick is always kept.
type Recorder struct {
	Every int

	mu      sync.Mutex
	samples []Sample
	last    int
}

func NewRecorder(every int) *Recorder {
	return &Recorder{Every: every, last: -1}
}

func (r *Recorder) OnTick(f sim.Frame) {
	if r.Every > 1 && f.Tick%r.Every != 0 {
		return
	}
	r.add(f)
}

func (r *Recorder) OnEnd(f sim.Frame) { r.add(f) }

func (r *Recorder) OnFlush(sim.Frame) {}

func (r *Recorder) add(f sim.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f.Tick == r.last {
		return
	}
	r.last = f.Tick
	r.samples = append(r.samples, Sample{
		Tick:   f.Tick,
		Alpha:  f.Alpha,
		Energy: force.KineticEnergy(f.Nodes),
	})
}

// Samples returns a copy of the trace so far.
func (r *Recorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sample(nil), r.samples...)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.samples = nil
	r.last = -1
	r.mu.Unlock()
}

// Series splits a trace into parallel alpha and energy slices for plotting.
func Series(samples []Sample) (alpha, energy []float64) {
	alpha = make([]float64, len(samples))
	energy = make([]float64, len(samples))
	for i, s := range samples {
		alpha[i] = s.Alpha
		energy[i] = s.Energy
	}
	return alpha, energy
}
