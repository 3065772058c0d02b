package force

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/graphsim/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dist(a, b Node) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// settle steps the model with the default cooling schedule until alpha
// drops below AlphaMin and returns the number of ticks taken.
func settle(m *Model, nodes []Node) int {
	eng := m.Engine()
	alpha := 1.0
	ticks := 0
	for alpha >= eng.AlphaMin && ticks < 10000 {
		alpha *= 1 - eng.AlphaDecay
		m.Step(nodes, alpha)
		ticks++
	}
	return ticks
}

func TestDynamicRadius(t *testing.T) {
	cfg := config.DefaultSimulation()
	cfg.CollisionRadius = 35
	cfg.DensityGenericFactor = 15
	cfg.DensityMaxSize = 800

	tests := []struct {
		degree int
		want   float64
	}{
		{0, 35},
		{1, 42.5},
		{10, 110},
		{60, 400},
		{1000, 400},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("degree_%d", tt.degree), func(t *testing.T) {
			assert.InDelta(t, tt.want, DynamicRadius(tt.degree, cfg), 1e-9)
		})
	}

	cfg.DensityMaxSize = 0
	assert.InDelta(t, 485.0, DynamicRadius(60, cfg), 1e-9, "zero max size disables the cap")
}

func TestLabelRadius(t *testing.T) {
	cfg := config.DefaultSimulation()

	assert.Equal(t, 0.0, LabelRadius(""))
	assert.InDelta(t, 45.0, LabelRadius("delta"), 1e-9)
	assert.InDelta(t, 33.0, LabelRadius("é0"), 1e-9, "runes, not bytes")

	short := Node{Label: "ab"}
	assert.InDelta(t, cfg.CollisionRadius, NodeRadius(&short, cfg), 1e-9)
	long := Node{Label: "a fairly long label"}
	assert.InDelta(t, 101.0, NodeRadius(&long, cfg), 1e-9)

	short.Radius, long.Radius = 40, 40
	assert.InDelta(t, cfg.LinkDistance+80+2*float64(2+19), RestLength(&short, &long, cfg), 1e-9)
}

func TestLongLabelsSettleFurtherApart(t *testing.T) {
	separation := func(label string) float64 {
		m := NewModel(config.DefaultSimulation(), config.DefaultEngine())
		nodes := []Node{
			{ID: "a", Label: label, X: -50},
			{ID: "b", Label: label, X: 50},
		}
		m.Refresh(nodes, []Link{{Source: "a", Target: "b"}})
		settle(m, nodes)
		return dist(nodes[0], nodes[1])
	}

	short := separation("a")
	long := separation(strings.Repeat("x", 60))
	assert.Greater(t, long, short+200, "short=%.1f long=%.1f", short, long)
}

func TestChargeStrength(t *testing.T) {
	cfg := config.DefaultSimulation()
	assert.InDelta(t, -300.0, ChargeStrength(0, cfg), 1e-9)
	assert.InDelta(t, -600.0, ChargeStrength(5, cfg), 1e-9)
}

func TestComputeDegrees_Star(t *testing.T) {
	nodes := []Node{{ID: "hub"}}
	var links []Link
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("leaf-%d", i)
		nodes = append(nodes, Node{ID: id})
		links = append(links, Link{ID: "e-" + id, Source: "hub", Target: id})
	}

	resolved := ComputeDegrees(nodes, links)
	require.Len(t, resolved, 5)
	assert.Equal(t, 5, nodes[0].Degree)
	for _, n := range nodes[1:] {
		assert.Equal(t, 1, n.Degree, n.ID)
	}

	ComputeDegrees(nodes, links[1:])
	assert.Equal(t, 4, nodes[0].Degree)
	assert.Equal(t, 0, nodes[1].Degree)
	assert.Equal(t, 1, nodes[2].Degree)
}

func TestComputeDegrees_SkipsBadLinks(t *testing.T) {
	nodes := []Node{{ID: "a"}, {ID: "b"}}
	links := []Link{
		{ID: "ok", Source: "a", Target: "b"},
		{ID: "dangling", Source: "a", Target: "gone"},
		{ID: "loop", Source: "b", Target: "b"},
	}

	resolved := ComputeDegrees(nodes, links)
	assert.Equal(t, [][2]int{{0, 1}}, resolved)
	assert.Equal(t, 1, nodes[0].Degree)
	assert.Equal(t, 1, nodes[1].Degree)
}

func TestRepulsionPushesApart(t *testing.T) {
	m := NewModel(config.DefaultSimulation(), config.DefaultEngine())
	nodes := []Node{{ID: "a", X: -10}, {ID: "b", X: 10}}
	m.Refresh(nodes, nil)

	m.applyRepulsion(nodes, 1)
	assert.Less(t, nodes[0].VX, 0.0)
	assert.Greater(t, nodes[1].VX, 0.0)
	assert.InDelta(t, -nodes[0].VX, nodes[1].VX, 1e-9)
}

func TestHubRepelsHarder(t *testing.T) {
	m := NewModel(config.DefaultSimulation(), config.DefaultEngine())
	nodes := []Node{{ID: "hub", X: 0}, {ID: "leaf", X: 100}, {ID: "other", X: -100}}
	links := []Link{{Source: "hub", Target: "leaf"}, {Source: "hub", Target: "other"}}
	m.Refresh(nodes, links)

	m.applyRepulsion(nodes, 1)
	// "leaf" feels the hub (degree 2) and "other" (degree 1) at 200.
	hubPush := nodes[1].VX
	otherPush := -nodes[2].VX
	assert.InDelta(t, hubPush, otherPush, 1e-9, "symmetric layout")
	assert.Greater(t, math.Abs(nodes[1].Strength-nodes[0].Strength), 0.0)
	assert.Less(t, nodes[0].Strength, nodes[1].Strength, "hub charge is more negative")
}

func TestBarnesHutMatchesExact(t *testing.T) {
	const n = 300
	build := func() []Node {
		nodes := make([]Node, n)
		for i := range nodes {
			a := float64(i) * 2.399963
			r := 20 * math.Sqrt(float64(i))
			nodes[i] = Node{ID: fmt.Sprint(i), X: r * math.Cos(a), Y: r * math.Sin(a)}
		}
		return nodes
	}

	eng := config.DefaultEngine()
	eng.ExactThreshold = n + 1
	exact := NewModel(config.DefaultSimulation(), eng)
	a := build()
	exact.Refresh(a, nil)
	exact.applyRepulsion(a, 1)

	eng.ExactThreshold = 0
	approx := NewModel(config.DefaultSimulation(), eng)
	b := build()
	approx.Refresh(b, nil)
	approx.applyRepulsion(b, 1)

	var errSum, magSum float64
	for i := range a {
		errSum += math.Hypot(a[i].VX-b[i].VX, a[i].VY-b[i].VY)
		magSum += math.Hypot(a[i].VX, a[i].VY)
	}
	assert.Less(t, errSum/magSum, 0.1, "mean relative error of the approximation")
}

func TestBarnesHutWalkDoesNotAllocate(t *testing.T) {
	nodes := make([]Node, 500)
	for i := range nodes {
		a := float64(i) * 2.399963
		r := 20 * math.Sqrt(float64(i))
		nodes[i] = Node{ID: fmt.Sprint(i), X: r * math.Cos(a), Y: r * math.Sin(a)}
	}
	m := NewModel(config.DefaultSimulation(), config.DefaultEngine())
	m.Refresh(nodes, nil)
	m.tree.build(nodes)

	stack := make([]int32, 0, 64)
	allocs := testing.AllocsPerRun(5, func() {
		for i := range nodes {
			_, _, stack = m.tree.force(nodes, i, 0.81, 1, stack)
		}
	})
	assert.Zero(t, allocs)
}

func TestParallelMatchesSerial(t *testing.T) {
	const n = 2000
	build := func() []Node {
		nodes := make([]Node, n)
		for i := range nodes {
			nodes[i] = Node{ID: fmt.Sprint(i), X: float64(i%50) * 30, Y: float64(i/50) * 30}
		}
		return nodes
	}

	eng := config.DefaultEngine()
	eng.ParallelThreshold = 0
	serial := NewModel(config.DefaultSimulation(), eng)
	a := build()
	serial.Refresh(a, nil)
	serial.applyRepulsion(a, 0.5)

	eng.ParallelThreshold = 1
	par := NewModel(config.DefaultSimulation(), eng)
	b := build()
	par.Refresh(b, nil)
	par.applyRepulsion(b, 0.5)

	for i := range a {
		require.Equal(t, a[i].VX, b[i].VX)
		require.Equal(t, a[i].VY, b[i].VY)
	}
}

func TestLinkPullsTowardRestLength(t *testing.T) {
	sim := config.DefaultSimulation()
	sim.RepulsionStrength = 0
	sim.CenterStrength = 0
	sim.AxisStrength = 0
	eng := config.DefaultEngine()
	eng.CollisionIterations = 0
	m := NewModel(sim, eng)

	nodes := []Node{{ID: "a", X: -400}, {ID: "b", X: 400}}
	m.Refresh(nodes, []Link{{Source: "a", Target: "b"}})
	rest := RestLength(&nodes[0], &nodes[1], sim)

	settle(m, nodes)
	assert.InDelta(t, rest, dist(nodes[0], nodes[1]), rest*0.05)
}

func TestCollisionSeparates(t *testing.T) {
	sim := config.DefaultSimulation()
	sim.RepulsionStrength = 0
	sim.CenterStrength = 0
	sim.AxisStrength = 0
	eng := config.DefaultEngine()
	m := NewModel(sim, eng)

	nodes := []Node{{ID: "a", X: 0, Y: 0}, {ID: "b", X: 10, Y: 0}, {ID: "c", X: 5, Y: 5}}
	m.Refresh(nodes, nil)
	for i := 0; i < 100; i++ {
		m.Step(nodes, 0.5)
	}

	min := 2 * (sim.CollisionRadius + eng.CollisionMargin)
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			assert.GreaterOrEqual(t, dist(nodes[i], nodes[j]), min*0.95, "%s-%s", nodes[i].ID, nodes[j].ID)
		}
	}
}

func TestCoincidentNodesSeparate(t *testing.T) {
	m := NewModel(config.DefaultSimulation(), config.DefaultEngine())
	nodes := []Node{{ID: "a"}, {ID: "b"}}
	m.Refresh(nodes, nil)

	settle(m, nodes)
	assert.Greater(t, dist(nodes[0], nodes[1]), 1.0)
	for _, n := range nodes {
		assert.False(t, math.IsNaN(n.X) || math.IsNaN(n.Y))
	}
}

func TestJiggle(t *testing.T) {
	for _, p := range [][2]int{{0, 1}, {3, 7}, {100, 2}} {
		a, b := jiggle(p[0], p[1]), jiggle(p[1], p[0])
		assert.NotZero(t, a)
		assert.Equal(t, -a, b)
		assert.Less(t, math.Abs(a), 1e-5)
	}
}

func TestPinnedNodeHolds(t *testing.T) {
	m := NewModel(config.DefaultSimulation(), config.DefaultEngine())
	nodes := []Node{{ID: "a"}, {ID: "b", X: 5}}
	nodes[0].Pin(10, 20)
	m.Refresh(nodes, []Link{{Source: "a", Target: "b"}})

	for i := 0; i < 50; i++ {
		m.Step(nodes, 1)
	}
	assert.Equal(t, 10.0, nodes[0].X)
	assert.Equal(t, 20.0, nodes[0].Y)
	assert.Zero(t, nodes[0].VX)

	nodes[0].Unpin()
	m.Step(nodes, 1)
	assert.NotEqual(t, 10.0, nodes[0].X)
}

func TestStaleLinksIgnored(t *testing.T) {
	m := NewModel(config.DefaultSimulation(), config.DefaultEngine())
	nodes := []Node{{ID: "a"}, {ID: "b", X: 50}, {ID: "c", X: 100}}
	m.Refresh(nodes, []Link{{Source: "a", Target: "c"}, {Source: "b", Target: "c"}})

	// Shrinking the slice without a Refresh leaves indices past the end.
	assert.NotPanics(t, func() { m.Step(nodes[:2], 0.5) })
}

func TestTriangleScenario(t *testing.T) {
	sim := config.DefaultSimulation()
	m := NewModel(sim, config.DefaultEngine())
	nodes := []Node{{ID: "A", X: 0, Y: 0}, {ID: "B", X: 100, Y: 0}, {ID: "C", X: 50, Y: 100}}
	m.Refresh(nodes, []Link{{Source: "A", Target: "B"}, {Source: "B", Target: "C"}})

	ticks := settle(m, nodes)
	assert.LessOrEqual(t, ticks, 400)

	restAB := RestLength(&nodes[0], &nodes[1], sim)
	restBC := RestLength(&nodes[1], &nodes[2], sim)
	assert.InDelta(t, restAB, dist(nodes[0], nodes[1]), restAB*0.2)
	assert.InDelta(t, restBC, dist(nodes[1], nodes[2]), restBC*0.2)
	assert.Greater(t, dist(nodes[0], nodes[2]), 1.0)
}

func TestKineticEnergy(t *testing.T) {
	assert.Zero(t, KineticEnergy(nil))
	nodes := []Node{{VX: 3, VY: 4}, {}}
	assert.InDelta(t, 6.25, KineticEnergy(nodes), 1e-9)
}

func TestCloneIsolatesPins(t *testing.T) {
	n := Node{ID: "a"}
	n.Pin(1, 2)
	c := n.Clone()
	*c.FX = 99
	assert.Equal(t, 1.0, *n.FX)
}

func BenchmarkStep(b *testing.B) {
	for _, n := range []int{100, 1000, 5000} {
		b.Run(fmt.Sprint(n), func(b *testing.B) {
			nodes := make([]Node, n)
			links := make([]Link, 0, n)
			for i := range nodes {
				nodes[i] = Node{ID: fmt.Sprint(i), X: float64(i%71) * 13, Y: float64(i/71) * 13}
				if i > 0 {
					links = append(links, Link{Source: fmt.Sprint(i), Target: fmt.Sprint(i / 2)})
				}
			}
			m := NewModel(config.DefaultSimulation(), config.DefaultEngine())
			m.Refresh(nodes, links)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				m.Step(nodes, 0.1)
			}
		})
	}
}
