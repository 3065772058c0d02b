package main

import (
	"fmt"
	"os"

	"github.com/san-kum/graphsim/internal/config"
	"github.com/san-kum/graphsim/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dataDir    string
	configFile string
	logLevel   string
	logFormat  string

	dbPath    string
	storePath string
	preset    string
	seed      int64
	outFile   string

	persist bool

	// run
	maxTicks    int
	fps         int
	svgFile     string
	record      bool
	every       int
	metricsFile string
	preview     bool

	// live
	stepsPerFrame int
	metricsAddr   string
	theme         string

	// gen
	edgeCount int
	genSeed   int64

	// sweep
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int

	// export-svg
	labels    bool
	withTrace bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "graphsim",
		Short:         "force-directed graph layout engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".graphsim", "data directory for recorded runs")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (console, json)")

	runCmd := &cobra.Command{
		Use:   "run [graph.json]",
		Short: "lay out a graph headless until it converges",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLayout,
	}
	runCmd.Flags().StringVar(&dbPath, "db", "", "sqlite graph store to read from and write positions to")
	runCmd.Flags().StringVar(&preset, "preset", "", "simulation preset")
	runCmd.Flags().BoolVar(&persist, "persist", false, "write final positions back to the graph file")
	runCmd.Flags().IntVar(&maxTicks, "max-ticks", 2000, "tick limit")
	runCmd.Flags().IntVar(&fps, "fps", 0, "tick rate; 0 runs as fast as possible")
	runCmd.Flags().StringVar(&svgFile, "svg", "", "write the final layout as SVG")
	runCmd.Flags().BoolVar(&record, "record", false, "record the run under the data directory")
	runCmd.Flags().IntVar(&every, "every", 1, "trace sampling interval in ticks")
	runCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics in text format")
	runCmd.Flags().BoolVar(&preview, "preview", false, "print the final layout in the terminal")

	liveCmd := &cobra.Command{
		Use:   "live [graph.json]",
		Short: "lay out a graph with live terminal visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&dbPath, "db", "", "sqlite graph store to read from and write positions to")
	liveCmd.Flags().StringVar(&preset, "preset", "", "simulation preset")
	liveCmd.Flags().BoolVar(&persist, "persist", false, "write positions back to the graph file")
	liveCmd.Flags().IntVar(&stepsPerFrame, "steps", 2, "simulation ticks per rendered frame")
	liveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	liveCmd.Flags().Int64Var(&seed, "seed", 0, "random seed for added nodes")
	liveCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the alpha and energy trace of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "draw the final layout of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a recorded layout as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().BoolVar(&labels, "labels", true, "draw node labels")
	exportSVGCmd.Flags().BoolVar(&withTrace, "trace", false, "export the alpha/energy trace instead of the layout")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list simulation presets",
		RunE:  listPresets,
	}

	genCmd := &cobra.Command{
		Use:       "gen [star|chain|random] [n]",
		Short:     "generate a demo graph",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"star", "chain", "random"},
		RunE:      generateGraph,
	}
	genCmd.Flags().StringVarP(&outFile, "out", "o", "", "output JSON file")
	genCmd.Flags().StringVar(&dbPath, "db", "", "write into a sqlite graph store instead")
	genCmd.Flags().IntVar(&edgeCount, "edges", 0, "edge count for random graphs (default 2n)")
	genCmd.Flags().Int64Var(&genSeed, "seed", 1, "random seed")

	importCmd := &cobra.Command{
		Use:   "import [graph.json]",
		Short: "replace the contents of a graph store with a JSON graph",
		Args:  cobra.ExactArgs(1),
		RunE:  importGraph,
	}
	importCmd.Flags().StringVar(&storePath, "db", "graph.db", "sqlite graph store")

	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "write a graph store as JSON",
		RunE:  dumpGraph,
	}
	dumpCmd.Flags().StringVar(&storePath, "db", "graph.db", "sqlite graph store")
	dumpCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write the effective configuration to a yaml or toml file",
		Args:  cobra.ExactArgs(1),
		RunE:  writeConfig,
	}
	configCmd.Flags().StringVar(&preset, "preset", "", "simulation preset")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [scenario.yaml] [graph.json]",
		Short: "replay a scripted sequence of edits against a layout",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().StringVar(&dbPath, "db", "", "sqlite graph store to read from and write positions to")
	scenarioCmd.Flags().StringVar(&preset, "preset", "", "simulation preset")
	scenarioCmd.Flags().BoolVar(&persist, "persist", false, "write final positions back to the graph file")
	scenarioCmd.Flags().BoolVar(&preview, "preview", false, "print the final layout in the terminal")

	sweepCmd := &cobra.Command{
		Use:   "sweep [graph.json]",
		Short: "compare converged layouts across values of one parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&preset, "preset", "", "base simulation preset")
	sweepCmd.Flags().StringVar(&sweepParam, "param", "link_distance", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 50, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 200, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 4, "number of values")
	sweepCmd.Flags().IntVar(&maxTicks, "max-ticks", 2000, "tick limit per layout")

	rootCmd.AddCommand(runCmd, liveCmd, scenarioCmd, sweepCmd, listCmd, plotCmd, showCmd, exportSVGCmd, presetsCmd, genCmd, importCmd, dumpCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig layers defaults, the config file, the preset and log flags, in
// that order.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg.Simulation = p.Simulation
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *zap.Logger {
	return logging.Must(cfg.Log)
}
