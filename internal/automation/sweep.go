package automation

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/san-kum/graphsim/internal/config"
	"github.com/san-kum/graphsim/internal/force"
	"github.com/san-kum/graphsim/internal/graph"
	"github.com/san-kum/graphsim/internal/sim"
)

// ParameterSweep lays the same graph out once per value of one simulation
// parameter, spread evenly over [Min, Max].
type ParameterSweep struct {
	Param    string
	Min, Max float64
	NumSteps int
	MaxTicks int
	Base     config.Config
}

// SweepResult summarizes the layout reached at one parameter value.
// Strain is the mean relative deviation of link lengths from their rest
// length.
type SweepResult struct {
	Value     float64
	Ticks     int
	Converged bool
	Energy    float64
	Strain    float64
	Width     float64
	Height    float64
}

// RunSweep runs every point of the sweep concurrently, one manager each.
func RunSweep(ctx context.Context, sweep *ParameterSweep, g *graph.Graph) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step")
	}
	if _, err := config.PatchFrom(map[string]float64{sweep.Param: 0}); err != nil {
		return nil, err
	}

	if sweep.MaxTicks <= 0 {
		sweep.MaxTicks = settleLimit
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.Max - sweep.Min) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, sweep.NumSteps)
	errs := make([]error, sweep.NumSteps)

	var wg sync.WaitGroup
	for i := 0; i < sweep.NumSteps; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			value := sweep.Min + float64(idx)*paramStep
			results[idx], errs[idx] = runPoint(ctx, sweep, g, value)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("%s=%.4f: %w", sweep.Param, sweep.Min+float64(i)*paramStep, err)
		}
	}
	return results, nil
}

func runPoint(ctx context.Context, sweep *ParameterSweep, g *graph.Graph, value float64) (SweepResult, error) {
	p, err := config.PatchFrom(map[string]float64{sweep.Param: value})
	if err != nil {
		return SweepResult{}, err
	}
	cfg := sweep.Base
	cfg.Simulation = cfg.Simulation.Apply(p)
	if err := cfg.Simulation.Validate(); err != nil {
		return SweepResult{}, err
	}

	sched := sim.NewStepScheduler()
	mgr := sim.New(sched, sim.WithConfig(cfg))
	defer mgr.Close()

	mgr.Start(g.Nodes, g.Edges, cfg.Simulation)
	for ctx.Err() == nil && sched.Pending() && mgr.TickCount() < sweep.MaxTicks {
		sched.Drain(min(100, sweep.MaxTicks-mgr.TickCount()))
	}
	if err := ctx.Err(); err != nil {
		return SweepResult{}, err
	}

	nodes := mgr.Nodes()
	minX, minY, maxX, maxY := force.Bounds(nodes)
	return SweepResult{
		Value:     value,
		Ticks:     mgr.TickCount(),
		Converged: !sched.Pending(),
		Energy:    force.KineticEnergy(nodes),
		Strain:    linkStrain(nodes, mgr.Links(), cfg.Simulation),
		Width:     maxX - minX,
		Height:    maxY - minY,
	}, nil
}

func linkStrain(nodes []force.Node, links []force.Link, cfg config.Simulation) float64 {
	index := make(map[string]int, len(nodes))
	for i := range nodes {
		index[nodes[i].ID] = i
	}
	sum, n := 0.0, 0
	for _, l := range links {
		si, okS := index[l.Source]
		ti, okT := index[l.Target]
		if !okS || !okT || si == ti {
			continue
		}
		s, t := &nodes[si], &nodes[ti]
		rest := force.RestLength(s, t, cfg)
		if rest == 0 {
			continue
		}
		d := math.Hypot(t.X-s.X, t.Y-s.Y)
		sum += math.Abs(d-rest) / rest
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
