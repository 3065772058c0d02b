package viz

import "github.com/san-kum/graphsim/internal/force"

// DrawLayout draws links as lines and nodes as hollow circles of their
// simulated radius; links are erased where they cross a node. Links with an
// endpoint missing from nodes are skipped.
func DrawLayout(c *Canvas, v Viewport, nodes []force.Node, links []force.Link) {
	index := make(map[string]int, len(nodes))
	for i := range nodes {
		index[nodes[i].ID] = i
	}
	for _, l := range links {
		si, okS := index[l.Source]
		ti, okT := index[l.Target]
		if !okS || !okT {
			continue
		}
		x0, y0 := v.Project(nodes[si].X, nodes[si].Y)
		x1, y1 := v.Project(nodes[ti].X, nodes[ti].Y)
		c.DrawLine(x0, y0, x1, y1)
	}
	for i := range nodes {
		x, y := v.Project(nodes[i].X, nodes[i].Y)
		c.ClearDisc(x, y, v.Length(nodes[i].Radius))
	}
	for i := range nodes {
		x, y := v.Project(nodes[i].X, nodes[i].Y)
		c.DrawCircle(x, y, v.Length(nodes[i].Radius))
		if nodes[i].Pinned() {
			c.Set(x, y)
		}
	}
}

// RenderLayout returns a w x h character drawing of the layout.
func RenderLayout(nodes []force.Node, links []force.Link, w, h int) string {
	c := NewCanvas(w, h)
	sw, sh := c.SubSize()
	DrawLayout(c, FitViewport(nodes, sw, sh, 2), nodes, links)
	return c.String()
}
