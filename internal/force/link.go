package force

import "math"

// applyLinks nudges both endpoints of every resolved link toward the rest
// length. The correction is split by degree so a leaf moves more than the hub
// it hangs off.
func (m *Model) applyLinks(nodes []Node, alpha float64) {
	k := m.eng.LinkStrength * alpha
	if k == 0 {
		return
	}
	for _, l := range m.links {
		si, ti := l[0], l[1]
		if si >= len(nodes) || ti >= len(nodes) {
			continue
		}
		s, t := &nodes[si], &nodes[ti]

		x := t.X + t.VX - s.X - s.VX
		y := t.Y + t.VY - s.Y - s.VY
		if x == 0 {
			x = jiggle(si, ti)
		}
		if y == 0 {
			y = jiggle(si, ti)
		}
		d := math.Sqrt(x*x + y*y)
		rest := RestLength(s, t, m.sim)
		f := (d - rest) / d * k
		x *= f
		y *= f

		bias := 0.5
		if sum := s.Degree + t.Degree; sum > 0 {
			bias = float64(s.Degree) / float64(sum)
		}
		t.VX -= x * bias
		t.VY -= y * bias
		s.VX += x * (1 - bias)
		s.VY += y * (1 - bias)
	}
}
