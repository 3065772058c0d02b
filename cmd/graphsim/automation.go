package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/san-kum/graphsim/internal/automation"
	"github.com/san-kum/graphsim/internal/config"
	"github.com/san-kum/graphsim/internal/graph"
	"github.com/san-kum/graphsim/internal/sim"
	"github.com/san-kum/graphsim/internal/viz"
	"github.com/spf13/cobra"
)

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	sched := sim.NewStepScheduler()
	s, err := openSession(cmd.Context(), args[1:], sched)
	if err != nil {
		return err
	}
	s.start()

	fmt.Printf("scenario %s: %d steps\n", sc.Name, len(sc.Steps))
	results, runErr := automation.RunScenario(cmd.Context(), sc, s.mgr, sched)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tACTION\tTICKS\tALPHA\tSTATE")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%d\t%.4f\t%s\n", i+1, r.Action, r.Ticks, r.Alpha, r.State)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if preview {
		fmt.Println()
		fmt.Print(viz.RenderLayout(s.mgr.Nodes(), s.mgr.Links(), 60, 20))
	}
	if s.mgr.Ticking() {
		s.mgr.Pause()
	}
	if err := s.Close(); err != nil {
		return err
	}
	return runErr
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	g, err := graph.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("sweeping %s from %.3f to %.3f (%d steps)...\n", sweepParam, sweepMin, sweepMax, sweepSteps)
	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Param:    sweepParam,
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepSteps,
		MaxTicks: maxTicks,
		Base:     *cfg,
	}, g)
	if err != nil {
		return fmt.Errorf("%w (parameters: %v)", err, config.ParamNames())
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tTICKS\tCONVERGED\tSTRAIN\tWIDTH\tHEIGHT\tENERGY\n", sweepParam)
	for _, r := range results {
		fmt.Fprintf(w, "%.3f\t%d\t%v\t%.4f\t%.1f\t%.1f\t%.6f\n",
			r.Value, r.Ticks, r.Converged, r.Strain, r.Width, r.Height, r.Energy)
	}
	return w.Flush()
}
