package force

import "math"

func (m *Model) applyRepulsion(nodes []Node, alpha float64) {
	n := len(nodes)
	if n < 2 || m.sim.RepulsionStrength == 0 {
		return
	}

	if n <= m.eng.ExactThreshold || m.eng.Theta == 0 {
		m.run(n, func(start, end int) {
			for i := start; i < end; i++ {
				repelExact(nodes, i, alpha)
			}
		})
		return
	}

	m.tree.build(nodes)
	theta2 := m.eng.Theta * m.eng.Theta
	m.run(n, func(start, end int) {
		stack := make([]int32, 0, 64)
		for i := start; i < end; i++ {
			var vx, vy float64
			vx, vy, stack = m.tree.force(nodes, i, theta2, alpha, stack)
			nodes[i].VX += vx
			nodes[i].VY += vy
		}
	})
}

// run splits per-node work across goroutines for large graphs. Each node only
// writes its own velocity, so the split needs no locking.
func (m *Model) run(n int, fn func(start, end int)) {
	if m.eng.ParallelThreshold > 0 && n >= m.eng.ParallelThreshold {
		parallelFor(n, 256, fn)
		return
	}
	fn(0, n)
}

func repelExact(nodes []Node, i int, alpha float64) {
	ni := &nodes[i]
	for j := range nodes {
		if j == i {
			continue
		}
		vx, vy := pairForce(nodes[j].X-ni.X, nodes[j].Y-ni.Y, nodes[j].Strength, alpha, i, j)
		ni.VX += vx
		ni.VY += vy
	}
}

// pairForce is the inverse-distance charge contribution of a source at offset
// (dx, dy). Squared distances under 1 are softened to avoid blow-ups.
func pairForce(dx, dy, strength, alpha float64, i, j int) (float64, float64) {
	l := dx*dx + dy*dy
	if dx == 0 {
		dx = jiggle(i, j)
		l += dx * dx
	}
	if dy == 0 {
		dy = jiggle(i, j)
		l += dy * dy
	}
	if l < 1 {
		l = math.Sqrt(l)
	}
	w := strength * alpha / l
	return dx * w, dy * w
}

const maxTreeDepth = 32

// quadTree is a Barnes–Hut spatial index. Internal cells carry the summed
// charge and the charge-weighted centre of their subtree. Cells live in an
// arena and refer to their children by index, so the arena is reused
// across ticks.
type quadTree struct {
	cells []quadCell
}

type quadCell struct {
	x0, y0, size float64
	children     [4]int32
	points       []int
	leaf         bool

	strength float64
	cx, cy   float64
}

func (t *quadTree) alloc(x0, y0, size float64) int32 {
	t.cells = append(t.cells, quadCell{
		x0: x0, y0: y0, size: size, leaf: true,
		children: [4]int32{-1, -1, -1, -1},
	})
	return int32(len(t.cells) - 1)
}

func (t *quadTree) build(nodes []Node) {
	minX, minY, maxX, maxY := Bounds(nodes)
	size := math.Max(maxX-minX, maxY-minY)
	if size == 0 {
		size = 1
	}
	size *= 1.0001

	t.cells = t.cells[:0]
	root := t.alloc(minX, minY, size)
	for i := range nodes {
		t.insert(root, nodes, i, 0)
	}
	t.accumulate(root, nodes)
}

func (t *quadTree) insert(c int32, nodes []Node, i, depth int) {
	if t.cells[c].leaf {
		if len(t.cells[c].points) == 0 || depth >= maxTreeDepth {
			t.cells[c].points = append(t.cells[c].points, i)
			return
		}
		existing := t.cells[c].points
		t.cells[c].points = nil
		t.cells[c].leaf = false
		for _, p := range existing {
			t.insert(t.child(c, nodes[p].X, nodes[p].Y), nodes, p, depth+1)
		}
	}
	t.insert(t.child(c, nodes[i].X, nodes[i].Y), nodes, i, depth+1)
}

func (t *quadTree) child(c int32, x, y float64) int32 {
	cell := t.cells[c]
	half := cell.size / 2
	q := 0
	x0, y0 := cell.x0, cell.y0
	if x >= cell.x0+half {
		q |= 1
		x0 += half
	}
	if y >= cell.y0+half {
		q |= 2
		y0 += half
	}
	if cell.children[q] < 0 {
		idx := t.alloc(x0, y0, half)
		t.cells[c].children[q] = idx
		return idx
	}
	return cell.children[q]
}

func (t *quadTree) accumulate(c int32, nodes []Node) {
	var strength, weight, x, y float64
	cell := &t.cells[c]
	if cell.leaf {
		for _, p := range cell.points {
			s := nodes[p].Strength
			w := math.Abs(s)
			strength += s
			weight += w
			x += w * nodes[p].X
			y += w * nodes[p].Y
		}
		if weight == 0 && len(cell.points) > 0 {
			x, y, weight = nodes[cell.points[0]].X, nodes[cell.points[0]].Y, 1
		}
	} else {
		for _, ch := range cell.children {
			if ch < 0 {
				continue
			}
			t.accumulate(ch, nodes)
			child := &t.cells[ch]
			w := math.Abs(child.strength)
			strength += child.strength
			weight += w
			x += w * child.cx
			y += w * child.cy
		}
	}
	cell = &t.cells[c]
	cell.strength = strength
	if weight > 0 {
		cell.cx, cell.cy = x/weight, y/weight
	}
}

// force returns the velocity change on node i. A cell whose width over
// distance is below theta is treated as a single aggregated charge. stack is
// scratch space owned by the caller and is returned for reuse.
func (t *quadTree) force(nodes []Node, i int, theta2, alpha float64, stack []int32) (float64, float64, []int32) {
	var vx, vy float64
	stack = append(stack[:0], 0)
	for len(stack) > 0 {
		c := &t.cells[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]

		if c.leaf {
			for _, p := range c.points {
				if p == i {
					continue
				}
				fx, fy := pairForce(nodes[p].X-nodes[i].X, nodes[p].Y-nodes[i].Y, nodes[p].Strength, alpha, i, p)
				vx += fx
				vy += fy
			}
			continue
		}
		if c.strength == 0 {
			continue
		}
		dx := c.cx - nodes[i].X
		dy := c.cy - nodes[i].Y
		l := dx*dx + dy*dy
		if c.size*c.size/theta2 < l {
			if l < 1 {
				l = math.Sqrt(l)
			}
			w := c.strength * alpha / l
			vx += dx * w
			vy += dy * w
			continue
		}
		for _, ch := range c.children {
			if ch >= 0 {
				stack = append(stack, ch)
			}
		}
	}
	return vx, vy, stack
}
