package metrics

import (
	"sync"

	"github.com/san-kum/graphsim/internal/sim"
)

// Convergence records how many ticks the latest episode took to settle.
// Value is -1 until the first convergence.
type Convergence struct {
	mu       sync.Mutex
	ticks    int
	episodes int
}

func NewConvergence() *Convergence {
	return &Convergence{ticks: -1}
}

func (c *Convergence) Name() string { return "ticks_to_converge" }

func (c *Convergence) OnTick(sim.Frame)  {}
func (c *Convergence) OnFlush(sim.Frame) {}

func (c *Convergence) OnEnd(f sim.Frame) {
	c.mu.Lock()
	c.ticks = f.Tick
	c.episodes++
	c.mu.Unlock()
}

func (c *Convergence) Value() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return float64(c.ticks)
}

// Converged reports whether at least one episode has ended.
func (c *Convergence) Converged() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.episodes > 0
}

func (c *Convergence) Episodes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.episodes
}

func (c *Convergence) Reset() {
	c.mu.Lock()
	c.ticks, c.episodes = -1, 0
	c.mu.Unlock()
}
