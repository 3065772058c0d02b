package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/graphsim/internal/config"
	"github.com/san-kum/graphsim/internal/export"
	"github.com/san-kum/graphsim/internal/force"
	"github.com/san-kum/graphsim/internal/graph"
	"github.com/san-kum/graphsim/internal/metrics"
	"github.com/san-kum/graphsim/internal/storage"
	"github.com/san-kum/graphsim/internal/viz"
	"github.com/spf13/cobra"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tGRAPH\tTIME\tNODES\tEDGES\tTICKS\tCONVERGED\tPRESET")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%v\t%s\n",
			run.ID,
			run.Graph,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Nodes,
			run.Edges,
			run.Ticks,
			run.Converged,
			run.Preset,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(trace) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("graph: %s\n", meta.Graph)
	fmt.Printf("ticks: %d (converged: %v)\n\n", meta.Ticks, meta.Converged)

	alpha, energy := metrics.Series(trace)
	fmt.Println(asciigraph.Plot(alpha, asciigraph.Height(10), asciigraph.Width(70), asciigraph.Caption("alpha")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(energy, asciigraph.Height(10), asciigraph.Width(70), asciigraph.Caption("kinetic energy")))
	return nil
}

func showRun(cmd *cobra.Command, args []string) error {
	nodes, links, _, err := loadRunLayout(args[0])
	if err != nil {
		return err
	}
	fmt.Print(viz.RenderLayout(nodes, links, 80, 30))
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	out := outFile
	if out == "" {
		out = runID + ".svg"
	}

	var svg string
	if withTrace {
		trace, err := storage.New(dataDir).LoadTrace(runID)
		if err != nil {
			return err
		}
		svg = export.TraceToSVG(trace, 800, 300)
		if svg == "" {
			return fmt.Errorf("no data to plot")
		}
	} else {
		nodes, links, g, err := loadRunLayout(runID)
		if err != nil {
			return err
		}
		svg = export.LayoutToSVG(nodes, links, export.LayoutOptions{Labels: labels, Colors: colorsOf(g)})
	}

	if err := os.WriteFile(out, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", out)
	return nil
}

// loadRunLayout rebuilds simulation nodes from a recorded layout, sized with
// the run's own parameters.
func loadRunLayout(runID string) ([]force.Node, []force.Link, *graph.Graph, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	g, err := st.LoadLayout(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	nodes, links := forceGraph(g, meta.Simulation)
	return nodes, links, g, nil
}

func forceGraph(g *graph.Graph, cfg config.Simulation) ([]force.Node, []force.Link) {
	nodes := make([]force.Node, len(g.Nodes))
	for i, n := range g.Nodes {
		nodes[i] = force.Node{ID: n.ID, Label: n.Title, X: n.X, Y: n.Y}
	}
	links := make([]force.Link, len(g.Edges))
	for i, e := range g.Edges {
		links[i] = force.Link{ID: e.ID, Source: e.Source, Target: e.Target}
	}
	force.NewModel(cfg, config.DefaultEngine()).Refresh(nodes, links)
	return nodes, links
}

func colorsOf(g *graph.Graph) map[string]string {
	colors := make(map[string]string)
	for _, n := range g.Nodes {
		if n.Color != "" {
			colors[n.ID] = n.Color
		}
	}
	return colors
}
