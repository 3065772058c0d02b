package sim

import (
	"github.com/san-kum/graphsim/internal/force"
	"github.com/san-kum/graphsim/internal/graph"
)

// Frame is a snapshot of the working set handed to observers. Nodes is a
// private copy; observers may keep it.
type Frame struct {
	Tick  int
	Alpha float64
	Nodes []force.Node
}

func (f Frame) Positions() map[string]graph.Position {
	out := make(map[string]graph.Position, len(f.Nodes))
	for _, n := range f.Nodes {
		out[n.ID] = graph.Position{X: n.X, Y: n.Y}
	}
	return out
}

// Observer receives tick and lifecycle events. Calls happen on the tick path
// with the Manager locked, so an Observer must not call back into the
// Manager synchronously.
type Observer interface {
	// OnTick runs after every integration step.
	OnTick(f Frame)
	// OnEnd runs once per convergence episode, when alpha crosses the floor.
	OnEnd(f Frame)
	// OnFlush asks persistence to write now: on Pause and ReleaseNode.
	OnFlush(f Frame)
}

// ObserverFuncs adapts plain functions to Observer; nil fields are skipped.
type ObserverFuncs struct {
	Tick  func(Frame)
	End   func(Frame)
	Flush func(Frame)
}

func (o ObserverFuncs) OnTick(f Frame) {
	if o.Tick != nil {
		o.Tick(f)
	}
}

func (o ObserverFuncs) OnEnd(f Frame) {
	if o.End != nil {
		o.End(f)
	}
}

func (o ObserverFuncs) OnFlush(f Frame) {
	if o.Flush != nil {
		o.Flush(f)
	}
}
