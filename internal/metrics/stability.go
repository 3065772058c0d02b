package metrics

import (
	"math"
	"sync"

	"github.com/san-kum/graphsim/internal/sim"
)

// Stability is the fraction of ticks in which no node moved faster than
// threshold. A layout that jitters until the end scores low.
type Stability struct {
	name      string
	threshold float64

	mu         sync.Mutex
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) OnTick(f sim.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples++
	for _, n := range f.Nodes {
		if math.Hypot(n.VX, n.VY) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) OnEnd(sim.Frame)   {}
func (s *Stability) OnFlush(sim.Frame) {}

func (s *Stability) Value() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.mu.Lock()
	s.violations = 0
	s.samples = 0
	s.mu.Unlock()
}
