package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/graphsim/internal/config"
	"github.com/san-kum/graphsim/internal/graph"
	"github.com/san-kum/graphsim/internal/metrics"
)

func testRun(name string, at time.Time) *Run {
	return &Run{
		Meta: RunMetadata{
			Graph:      name,
			Preset:     "default",
			Timestamp:  at,
			Nodes:      3,
			Edges:      2,
			Ticks:      342,
			Converged:  true,
			Simulation: config.DefaultSimulation(),
			Metrics:    map[string]float64{"energy": 0.01},
		},
		Trace: []metrics.Sample{
			{Tick: 1, Alpha: 0.98, Energy: 12.5},
			{Tick: 2, Alpha: 0.9604, Energy: 8.25},
		},
		Layout: graph.Chain(3),
	}
}

func TestSaveLoad(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Init())

	id, err := s.Save(testRun("data/My Graph.json", time.Now()))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "my-graph_"), id)

	meta, err := s.Load(id)
	require.NoError(t, err)
	assert.Equal(t, id, meta.ID)
	assert.Equal(t, 342, meta.Ticks)
	assert.Equal(t, config.DefaultSimulation(), meta.Simulation)

	trace, err := s.LoadTrace(id)
	require.NoError(t, err)
	assert.Equal(t, testRun("", time.Time{}).Trace, trace)

	layout, err := s.LoadLayout(id)
	require.NoError(t, err)
	assert.Len(t, layout.Nodes, 3)
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	runs, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	now := time.Now()
	_, err = s.Save(testRun("old", now.Add(-time.Hour)))
	require.NoError(t, err)
	newID, err := s.Save(testRun("new", now))
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "junk"), 0755))

	runs, err = s.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newID, runs[0].ID)
}

func TestMissingRun(t *testing.T) {
	s := New(t.TempDir())

	_, err := s.Load("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = s.LoadTrace("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = s.LoadLayout("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "graph", slug(""))
	assert.Equal(t, "star-5", slug("star 5"))
	assert.Equal(t, "kg", slug("/tmp/kg.db"))
}
