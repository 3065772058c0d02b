package force

import "math"

// Node is the simulation's working copy of a graph node. FX/FY pin the node
// when non-nil: forces still accumulate but integration snaps it back to the pin.
type Node struct {
	ID     string
	Label  string
	X, Y   float64
	VX, VY float64
	FX, FY *float64
	Degree int

	// Radius and Strength are derived from Degree and the configuration by
	// Model.Refresh; they are never recomputed per tick.
	Radius   float64
	Strength float64
}

func (n *Node) Pinned() bool { return n.FX != nil || n.FY != nil }

func (n *Node) Pin(x, y float64) {
	n.FX, n.FY = &x, &y
	n.X, n.Y = x, y
}

func (n *Node) Unpin() {
	n.FX, n.FY = nil, nil
}

// Clone returns a copy that shares no pin storage with n.
func (n Node) Clone() Node {
	if n.FX != nil {
		fx := *n.FX
		n.FX = &fx
	}
	if n.FY != nil {
		fy := *n.FY
		n.FY = &fy
	}
	return n
}

func CloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i := range nodes {
		out[i] = nodes[i].Clone()
	}
	return out
}

// Link is the spring projection of a graph edge.
type Link struct {
	ID     string
	Source string
	Target string
}

// KineticEnergy returns the mean of v²/2 over all nodes.
func KineticEnergy(nodes []Node) float64 {
	if len(nodes) == 0 {
		return 0
	}
	sum := 0.0
	for i := range nodes {
		sum += nodes[i].VX*nodes[i].VX + nodes[i].VY*nodes[i].VY
	}
	return 0.5 * sum / float64(len(nodes))
}

// Bounds returns the axis-aligned extent of the node centres.
func Bounds(nodes []Node) (minX, minY, maxX, maxY float64) {
	if len(nodes) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for i := range nodes {
		minX = math.Min(minX, nodes[i].X)
		minY = math.Min(minY, nodes[i].Y)
		maxX = math.Max(maxX, nodes[i].X)
		maxY = math.Max(maxY, nodes[i].Y)
	}
	return minX, minY, maxX, maxY
}
