package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/graphsim/internal/bridge"
	"github.com/san-kum/graphsim/internal/config"
	"github.com/san-kum/graphsim/internal/graph"
	"github.com/san-kum/graphsim/internal/graphstore"
	"github.com/san-kum/graphsim/internal/sim"
	"go.uber.org/zap"
)

// session wires a graph source, a simulation manager and the persistence
// bridge for the run and live commands.
type session struct {
	cfg    *config.Config
	log    *zap.Logger
	name   string
	graph  *graph.Graph
	mgr    *sim.Manager
	bridge *bridge.Bridge

	closers []func() error
}

func openSession(ctx context.Context, args []string, sched sim.Scheduler) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, log: newLogger(cfg)}

	writer, err := s.openSource(ctx, args)
	if err != nil {
		return nil, err
	}
	for _, issue := range s.graph.Issues() {
		s.log.Warn("graph issue", zap.Stringer("issue", issue))
	}

	s.mgr = sim.New(sched, sim.WithLogger(s.log.Named("sim")), sim.WithConfig(*cfg))
	s.bridge = bridge.New(writer, bridge.WithConfig(cfg.Bridge), bridge.WithLogger(s.log.Named("bridge")))
	s.mgr.AddObserver(s.bridge)
	return s, nil
}

// openSource loads the graph from --db or a JSON file and returns where
// positions should be written. A JSON source is only written back with
// --persist.
func (s *session) openSource(ctx context.Context, args []string) (graph.PositionWriter, error) {
	switch {
	case dbPath != "":
		st, err := graphstore.Open(dbPath)
		if err != nil {
			return nil, err
		}
		g, err := st.Snapshot(ctx)
		if err != nil {
			st.Close()
			return nil, err
		}
		async := graphstore.NewAsyncWriter(st, s.log.Named("graphstore"))
		s.closers = append(s.closers, async.Close, st.Close)
		s.graph, s.name = g, dbPath
		return async, nil

	case len(args) == 1:
		g, err := graph.Load(args[0])
		if err != nil {
			return nil, err
		}
		s.graph, s.name = g, args[0]
		if !persist {
			return nil, nil
		}
		async := graphstore.NewAsyncWriter(&fileWriter{path: args[0], graph: cloneGraph(g)}, s.log.Named("file"))
		s.closers = append(s.closers, async.Close)
		return async, nil

	default:
		return nil, fmt.Errorf("need a graph file or --db")
	}
}

func (s *session) start() {
	s.mgr.Start(s.graph.Nodes, s.graph.Edges, s.cfg.Simulation)
	if s.mgr.State() == sim.Idle {
		s.log.Warn("graph is empty", zap.String("source", s.name))
	}
}

// layout returns a copy of the source graph carrying the current positions.
func (s *session) layout() *graph.Graph {
	g := cloneGraph(s.graph)
	g.ApplyPositions(s.mgr.Positions())
	return g
}

// Close stops the simulation, flushes pending positions and closes the
// store, in that order.
func (s *session) Close() error {
	s.mgr.Close()
	err := s.bridge.Close()
	for _, c := range s.closers {
		err = errors.Join(err, c())
	}
	_ = s.log.Sync()
	return err
}

// fileWriter persists positions into a JSON graph file.
type fileWriter struct {
	path  string
	graph *graph.Graph
}

func (w *fileWriter) UpdateNodePositions(p map[string]graph.Position) error {
	w.graph.ApplyPositions(p)
	return graph.Save(w.path, w.graph)
}

func cloneGraph(g *graph.Graph) *graph.Graph {
	return &graph.Graph{
		Nodes: append([]graph.Node(nil), g.Nodes...),
		Edges: append([]graph.Edge(nil), g.Edges...),
	}
}
