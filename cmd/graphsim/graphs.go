package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/san-kum/graphsim/internal/config"
	"github.com/san-kum/graphsim/internal/graph"
	"github.com/san-kum/graphsim/internal/graphstore"
	"github.com/spf13/cobra"
)

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tREPULSION\tLINK\tRADIUS\tCENTER\tAXIS\tSIZE/DEG\tCHARGE/DEG\tMAX SIZE")
	for _, name := range config.ListPresets() {
		p := config.Presets[name]
		fmt.Fprintf(w, "%s\t%.0f\t%.0f\t%.0f\t%.3f\t%.3f\t%.1f\t%.2f\t%.0f\n",
			name,
			p.RepulsionStrength,
			p.LinkDistance,
			p.CollisionRadius,
			p.CenterStrength,
			p.AxisStrength,
			p.DensityGenericFactor,
			p.DensityChargeFactor,
			p.DensityMaxSize,
		)
	}
	return w.Flush()
}

func generateGraph(cmd *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 1 {
		return fmt.Errorf("invalid node count: %s", args[1])
	}

	var g *graph.Graph
	switch args[0] {
	case "star":
		g = graph.Star(n)
	case "chain":
		g = graph.Chain(n)
	case "random":
		m := edgeCount
		if m <= 0 {
			m = 2 * n
		}
		g = graph.Random(n, m, genSeed)
	default:
		return fmt.Errorf("unknown generator: %s (available: star, chain, random)", args[0])
	}

	if dbPath != "" {
		if err := replaceStore(cmd, dbPath, g); err != nil {
			return err
		}
		fmt.Printf("wrote %d nodes, %d edges to %s\n", len(g.Nodes), len(g.Edges), dbPath)
		return nil
	}
	if outFile == "" {
		return writeJSON(os.Stdout, g)
	}
	if err := graph.Save(outFile, g); err != nil {
		return err
	}
	fmt.Printf("wrote %d nodes, %d edges to %s\n", len(g.Nodes), len(g.Edges), outFile)
	return nil
}

func importGraph(cmd *cobra.Command, args []string) error {
	g, err := graph.Load(args[0])
	if err != nil {
		return err
	}
	for _, issue := range g.Issues() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", issue)
	}
	if err := replaceStore(cmd, storePath, g); err != nil {
		return err
	}
	fmt.Printf("imported %d nodes, %d edges into %s\n", len(g.Nodes), len(g.Edges), storePath)
	return nil
}

func dumpGraph(cmd *cobra.Command, args []string) error {
	st, err := graphstore.Open(storePath)
	if err != nil {
		return err
	}
	defer st.Close()

	g, err := st.Snapshot(cmd.Context())
	if err != nil {
		return err
	}
	if outFile == "" {
		return writeJSON(os.Stdout, g)
	}
	return graph.Save(outFile, g)
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("config written to %s\n", args[0])
	return nil
}

func replaceStore(cmd *cobra.Command, path string, g *graph.Graph) error {
	return replaceStoreAt(cmd.Context(), path, g)
}

func replaceStoreAt(ctx context.Context, path string, g *graph.Graph) error {
	st, err := graphstore.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.ReplaceGraph(ctx, g)
}

func writeJSON(f *os.File, v any) error {
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
