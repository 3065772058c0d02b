package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/san-kum/graphsim/internal/export"
	"github.com/san-kum/graphsim/internal/metrics"
	"github.com/san-kum/graphsim/internal/sim"
	"github.com/san-kum/graphsim/internal/storage"
	"github.com/san-kum/graphsim/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const stabilityThreshold = 0.05

func runLayout(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	step := sim.NewStepScheduler()
	var sched sim.Scheduler = step
	if fps > 0 {
		sched = sim.NewFrameScheduler(time.Second / time.Duration(fps))
	}

	s, err := openSession(ctx, args, sched)
	if err != nil {
		return err
	}

	energy := metrics.NewEnergy()
	stability := metrics.NewStability(stabilityThreshold)
	convergence := metrics.NewConvergence()
	recorder := metrics.NewRecorder(every)
	reg := prometheus.NewRegistry()
	for _, o := range []sim.Observer{energy, stability, convergence, recorder, metrics.NewCollector(reg)} {
		s.mgr.AddObserver(o)
	}

	done := make(chan struct{}, 1)
	s.bridge.SetOnEnd(func() {
		select {
		case done <- struct{}{}:
		default:
		}
	})

	fmt.Printf("laying out %s (%d nodes, %d edges)...\n", s.name, len(s.graph.Nodes), len(s.graph.Edges))
	start := time.Now()
	s.start()
	if fps > 0 {
		waitFrames(ctx, s.mgr, done)
	} else {
		for ctx.Err() == nil && step.Pending() && s.mgr.TickCount() < maxTicks {
			step.Drain(min(100, maxTicks-s.mgr.TickCount()))
		}
	}
	if s.mgr.Ticking() {
		s.mgr.Pause()
	}
	elapsed := time.Since(start)

	nodes, links := s.mgr.Nodes(), s.mgr.Links()
	layout := s.layout()
	summary := metrics.Summary(energy, stability, convergence)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("ticks: %d\n", s.mgr.TickCount())
	fmt.Printf("converged: %v\n", convergence.Converged())
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(summary))
	for name := range summary {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, summary[name])
	}

	if preview {
		fmt.Println()
		fmt.Print(viz.RenderLayout(nodes, links, 60, 20))
	}

	if svgFile != "" {
		svg := export.LayoutToSVG(nodes, links, export.LayoutOptions{Labels: true, Colors: colorsOf(layout)})
		if err := os.WriteFile(svgFile, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("layout written to %s\n", svgFile)
	}

	if metricsFile != "" {
		if err := prometheus.WriteToTextfile(metricsFile, reg); err != nil {
			return err
		}
	}

	if record {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(&storage.Run{
			Meta: storage.RunMetadata{
				Graph:      s.name,
				Preset:     preset,
				Nodes:      len(nodes),
				Edges:      len(links),
				Ticks:      s.mgr.TickCount(),
				Converged:  convergence.Converged(),
				Simulation: s.mgr.Config().Simulation,
				Metrics:    summary,
			},
			Trace:  recorder.Samples(),
			Layout: layout,
		})
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	err = s.Close()
	st := s.bridge.Stats()
	s.log.Debug("bridge stats",
		zap.Int("emitted", st.Emitted),
		zap.Int("dropped", st.Dropped),
		zap.Int("writes", st.Writes),
		zap.Int("failures", st.Failures),
	)
	return err
}

// waitFrames blocks until the simulation settles, the context is cancelled
// or maxTicks frames have elapsed.
func waitFrames(ctx context.Context, mgr *sim.Manager, done <-chan struct{}) {
	poll := time.NewTicker(50 * time.Millisecond)
	defer poll.Stop()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-poll.C:
			if mgr.TickCount() >= maxTicks {
				return
			}
		}
	}
}
