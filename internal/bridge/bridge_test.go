package bridge

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/san-kum/graphsim/internal/clock"
	"github.com/san-kum/graphsim/internal/config"
	"github.com/san-kum/graphsim/internal/force"
	"github.com/san-kum/graphsim/internal/graph"
	"github.com/san-kum/graphsim/internal/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWriter struct {
	mu     sync.Mutex
	writes []map[string]graph.Position
	err    error
}

func (w *memWriter) UpdateNodePositions(p map[string]graph.Position) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.writes = append(w.writes, p)
	return nil
}

func (w *memWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.writes)
}

func (w *memWriter) last() map[string]graph.Position {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes[len(w.writes)-1]
}

func frame(tick int) sim.Frame {
	x := float64(tick)
	return sim.Frame{
		Tick: tick,
		Nodes: []force.Node{
			{ID: "a", X: x, Y: -x},
			{ID: "b", X: 2 * x, Y: 0},
		},
	}
}

func newTestBridge(t *testing.T) (*Bridge, *memWriter, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	w := &memWriter{}
	b := New(w, WithClock(clk), WithConfig(config.Bridge{
		TickThrottle:    16 * time.Millisecond,
		PersistDebounce: 800 * time.Millisecond,
	}))
	return b, w, clk
}

func TestThrottleDropsFastTicks(t *testing.T) {
	b, _, clk := newTestBridge(t)
	var rendered []int
	b.SetOnTick(func(nodes []force.Node) { rendered = append(rendered, int(nodes[0].X)) })

	for i := 0; i < 20; i++ {
		b.OnTick(frame(i))
		clk.Advance(5 * time.Millisecond)
	}

	assert.Equal(t, []int{0, 4, 8, 12, 16}, rendered)
	st := b.Stats()
	assert.Equal(t, 5, st.Emitted)
	assert.Equal(t, 15, st.Dropped)
}

func TestDebounceCoalesces(t *testing.T) {
	b, w, clk := newTestBridge(t)

	for i := 1; i <= 10; i++ {
		b.OnTick(frame(i))
		clk.Advance(20 * time.Millisecond)
	}
	assert.Zero(t, w.count(), "nothing written inside the window")

	clk.Advance(800 * time.Millisecond)
	require.Equal(t, 1, w.count())
	assert.Equal(t, graph.Position{X: 10, Y: -10}, w.last()["a"])
	assert.Equal(t, graph.Position{X: 20, Y: 0}, w.last()["b"])

	clk.Advance(5 * time.Second)
	assert.Equal(t, 1, w.count())
	assert.Equal(t, 10, b.Stats().Emitted)
}

func TestPauseMidWindowWritesImmediately(t *testing.T) {
	b, w, clk := newTestBridge(t)

	for i := 1; i <= 5; i++ {
		b.OnTick(frame(i))
		clk.Advance(20 * time.Millisecond)
	}
	b.OnFlush(frame(5))
	require.Equal(t, 1, w.count())
	assert.Equal(t, graph.Position{X: 5, Y: -5}, w.last()["a"])

	for i := 6; i <= 10; i++ {
		b.OnTick(frame(i))
		clk.Advance(20 * time.Millisecond)
	}
	clk.Advance(800 * time.Millisecond)
	require.Equal(t, 2, w.count())
	assert.Equal(t, graph.Position{X: 10, Y: -10}, w.last()["a"])
}

func TestDebounceResetsOnEachTick(t *testing.T) {
	b, w, clk := newTestBridge(t)

	b.OnTick(frame(1))
	clk.Advance(700 * time.Millisecond)
	b.OnTick(frame(2))
	clk.Advance(700 * time.Millisecond)
	assert.Zero(t, w.count())

	clk.Advance(100 * time.Millisecond)
	require.Equal(t, 1, w.count())
	assert.Equal(t, 2.0, w.last()["a"].X)
}

func TestEndFlushesAndNotifies(t *testing.T) {
	b, w, clk := newTestBridge(t)
	ended := 0
	b.SetOnEnd(func() { ended++ })

	b.OnTick(frame(1))
	b.OnEnd(frame(2))
	assert.Equal(t, 1, ended)
	require.Equal(t, 1, w.count())
	assert.Equal(t, 2.0, w.last()["a"].X)

	clk.Advance(time.Second)
	assert.Equal(t, 1, w.count(), "end cancels the pending debounce")
}

func TestEndDeliversDroppedFinalFrame(t *testing.T) {
	b, _, _ := newTestBridge(t)
	var rendered []int
	b.SetOnTick(func(nodes []force.Node) { rendered = append(rendered, int(nodes[0].X)) })

	b.OnTick(frame(1))
	b.OnTick(frame(2))
	b.OnEnd(frame(3))
	assert.Equal(t, []int{1, 3}, rendered)
}

func TestCloseFlushesPending(t *testing.T) {
	b, w, clk := newTestBridge(t)

	b.OnTick(frame(3))
	require.NoError(t, b.Close())
	require.Equal(t, 1, w.count())
	assert.Equal(t, 3.0, w.last()["a"].X)

	b.OnTick(frame(4))
	b.OnFlush(frame(4))
	clk.Advance(time.Second)
	assert.Equal(t, 1, w.count())
	require.NoError(t, b.Close())
}

func TestWriteFailureIsCounted(t *testing.T) {
	b, w, _ := newTestBridge(t)
	w.err = errors.New("disk full")

	assert.NotPanics(t, func() { b.OnFlush(frame(1)) })
	st := b.Stats()
	assert.Equal(t, 1, st.Failures)
	assert.Zero(t, st.Writes)
}

func TestZeroDebounceWritesEveryEmittedTick(t *testing.T) {
	w := &memWriter{}
	clk := clock.NewManual(time.Unix(0, 0))
	b := New(w, WithClock(clk), WithThrottle(0), WithDebounce(0))

	for i := 0; i < 3; i++ {
		b.OnTick(frame(i))
	}
	assert.Equal(t, 3, w.count())
}

func TestNilWriter(t *testing.T) {
	b := New(nil, WithClock(clock.NewManual(time.Unix(0, 0))))
	assert.NotPanics(t, func() {
		b.OnTick(frame(1))
		b.OnEnd(frame(1))
		_ = b.Close()
	})
}

func TestWithManager(t *testing.T) {
	b, w, _ := newTestBridge(t)
	sched := sim.NewStepScheduler()
	m := sim.New(sched)
	defer m.Close()
	m.AddObserver(b)

	ends := 0
	b.SetOnEnd(func() { ends++ })

	g := graph.Chain(5)
	m.Start(g.Nodes, g.Edges, config.DefaultSimulation())
	sched.Drain(10)
	m.Pause()
	require.Equal(t, 1, w.count(), "pause flushes")
	assert.Equal(t, m.Positions(), w.last())

	m.Resume()
	sched.Drain(1000)
	assert.Equal(t, 1, ends)
	require.Equal(t, 2, w.count(), "convergence flushes")
	assert.Equal(t, m.Positions(), w.last())
}
