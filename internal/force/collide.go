package force

import "math"

// applyCollision runs one pass of overlap correction on predicted positions
// (x+vx). Overlapping pairs are pushed apart in velocity space, the smaller
// circle taking the larger share.
func (m *Model) applyCollision(nodes []Node) {
	if len(nodes) < 2 {
		return
	}
	margin := m.eng.CollisionMargin
	g := &m.grid
	g.build(nodes, margin)
	if g.cell == 0 {
		return
	}

	var seen [9]uint64
	for i := range nodes {
		ni := &nodes[i]
		ri := ni.Radius + margin
		ri2 := ri * ri
		xi, yi := ni.X+ni.VX, ni.Y+ni.VY
		cx, cy := g.cellOf(g.px[i], g.py[i])

		visited := 0
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				b := g.bucket(cx+dx, cy+dy)
				dup := false
				for k := 0; k < visited; k++ {
					if seen[k] == b {
						dup = true
						break
					}
				}
				if dup {
					continue
				}
				seen[visited] = b
				visited++

				for j := g.head[b]; j >= 0; j = g.next[j] {
					if int(j) <= i {
						continue
					}
					nj := &nodes[j]
					rj := nj.Radius + margin
					r := ri + rj
					x := xi - nj.X - nj.VX
					y := yi - nj.Y - nj.VY
					l := x*x + y*y
					if l >= r*r {
						continue
					}
					if x == 0 {
						x = jiggle(i, int(j))
						l += x * x
					}
					if y == 0 {
						y = jiggle(i, int(j))
						l += y * y
					}
					l = math.Sqrt(l)
					f := (r - l) / l
					x *= f
					y *= f
					rj2 := rj * rj
					share := rj2 / (ri2 + rj2)
					ni.VX += x * share
					ni.VY += y * share
					nj.VX -= x * (1 - share)
					nj.VY -= y * (1 - share)
				}
			}
		}
	}
}

// collisionGrid buckets predicted positions into square cells at least as wide
// as the largest possible contact distance, so only the 3x3 neighbourhood of
// a node can hold colliding partners. Cells hash into a power-of-two table;
// hash collisions only add candidates that the distance test rejects.
type collisionGrid struct {
	px, py []float64
	head   []int32
	next   []int32
	mask   uint64
	cell   float64
}

func (g *collisionGrid) build(nodes []Node, margin float64) {
	n := len(nodes)
	maxR := 0.0
	for i := range nodes {
		maxR = math.Max(maxR, nodes[i].Radius+margin)
	}
	g.cell = 2 * maxR
	if g.cell == 0 {
		return
	}

	size := 1
	for size < n {
		size <<= 1
	}
	g.mask = uint64(size - 1)
	g.head = resize(g.head, size)
	g.next = resize(g.next, n)
	for i := range g.head {
		g.head[i] = -1
	}
	if cap(g.px) < n {
		g.px = make([]float64, n)
		g.py = make([]float64, n)
	}
	g.px, g.py = g.px[:n], g.py[:n]

	for i := range nodes {
		g.px[i] = nodes[i].X + nodes[i].VX
		g.py[i] = nodes[i].Y + nodes[i].VY
		b := g.bucket(g.cellOf(g.px[i], g.py[i]))
		g.next[i] = g.head[b]
		g.head[b] = int32(i)
	}
}

func (g *collisionGrid) cellOf(x, y float64) (int64, int64) {
	return int64(math.Floor(x / g.cell)), int64(math.Floor(y / g.cell))
}

func (g *collisionGrid) bucket(cx, cy int64) uint64 {
	h := uint64(cx)*0x9E3779B185EBCA87 ^ uint64(cy)*0xC2B2AE3D27D4EB4F
	h ^= h >> 32
	return h & g.mask
}

func resize(s []int32, n int) []int32 {
	if cap(s) < n {
		return make([]int32, n)
	}
	return s[:n]
}
