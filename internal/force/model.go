// Package force computes one integration step of the force-directed layout.
//
// Forces run in a fixed order every tick, each scaled by alpha and written
// into node velocities:
//
//   - repulsion: degree-weighted many-body charge, exact below
//     Engine.ExactThreshold nodes and Barnes–Hut (O(n log n)) above it
//   - link: springs toward LinkDistance plus both endpoint radii
//   - center: translates the centroid toward the origin
//   - axis: independent pulls toward x=0 and y=0
//   - collision: Engine.CollisionIterations passes of overlap correction
//
// Integration is symplectic Euler with constant velocity decay. Pinned nodes
// (FX/FY set) are snapped to their pin after every step.
//
// # Thread Safety
//
// A Model keeps scratch state and must only be stepped from one goroutine.
package force

import (
	"github.com/san-kum/graphsim/internal/config"
)

type Model struct {
	sim config.Simulation
	eng config.Engine

	links [][2]int
	tree  quadTree
	grid  collisionGrid
}

func NewModel(sim config.Simulation, eng config.Engine) *Model {
	return &Model{sim: sim, eng: eng}
}

// SetConfig swaps parameters; callers must Refresh before the next Step so
// the cached radii and strengths follow.
func (m *Model) SetConfig(sim config.Simulation, eng config.Engine) {
	m.sim = sim
	m.eng = eng
}

func (m *Model) Simulation() config.Simulation { return m.sim }

func (m *Model) Engine() config.Engine { return m.eng }

// Refresh recomputes degrees, label-floored radii and charge strengths and re-resolves
// links. It is O(N+E) and runs on topology or configuration change only.
func (m *Model) Refresh(nodes []Node, links []Link) {
	m.links = ComputeDegrees(nodes, links)
	for i := range nodes {
		nodes[i].Radius = NodeRadius(&nodes[i], m.sim)
		nodes[i].Strength = ChargeStrength(nodes[i].Degree, m.sim)
	}
}

// ResolvedLinks returns the number of links taking part in the spring pass.
func (m *Model) ResolvedLinks() int { return len(m.links) }

// Step applies every force at the given alpha and integrates positions.
func (m *Model) Step(nodes []Node, alpha float64) {
	if len(nodes) == 0 {
		return
	}

	m.applyRepulsion(nodes, alpha)
	m.applyLinks(nodes, alpha)
	m.applyCenter(nodes)
	m.applyAxis(nodes, alpha)
	for i := 0; i < m.eng.CollisionIterations; i++ {
		m.applyCollision(nodes)
	}
	integrate(nodes, m.eng.VelocityDecay)
}

func (m *Model) applyCenter(nodes []Node) {
	if m.sim.CenterStrength == 0 {
		return
	}
	sx, sy := 0.0, 0.0
	for i := range nodes {
		sx += nodes[i].X
		sy += nodes[i].Y
	}
	n := float64(len(nodes))
	sx = sx / n * m.sim.CenterStrength
	sy = sy / n * m.sim.CenterStrength
	for i := range nodes {
		if nodes[i].Pinned() {
			continue
		}
		nodes[i].X -= sx
		nodes[i].Y -= sy
	}
}

func (m *Model) applyAxis(nodes []Node, alpha float64) {
	k := m.sim.AxisStrength * alpha
	if k == 0 {
		return
	}
	for i := range nodes {
		nodes[i].VX -= nodes[i].X * k
		nodes[i].VY -= nodes[i].Y * k
	}
}

func integrate(nodes []Node, velocityDecay float64) {
	keep := 1 - velocityDecay
	for i := range nodes {
		n := &nodes[i]
		if n.FX != nil {
			n.X = *n.FX
			n.VX = 0
		} else {
			n.VX *= keep
			n.X += n.VX
		}
		if n.FY != nil {
			n.Y = *n.FY
			n.VY = 0
		} else {
			n.VY *= keep
			n.Y += n.VY
		}
	}
}

// jiggle returns a tiny non-zero offset for a coincident pair. It is
// antisymmetric in (a, b) so both members are pushed apart rather than
// drifting together.
func jiggle(a, b int) float64 {
	lo, hi, sign := a, b, 1.0
	if lo > hi {
		lo, hi, sign = b, a, -1.0
	}
	h := uint64(lo)*0x9E3779B97F4A7C15 ^ uint64(hi+1)*0xC2B2AE3D27D4EB4F
	h ^= h >> 31
	h *= 0xBF58476D1CE4E5B9
	h ^= h >> 29
	mag := (float64(h%1000) + 1) / 1001 // (0, 1)
	return sign * mag * 1e-6
}
