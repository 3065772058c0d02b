package force

import (
	"unicode/utf8"

	"github.com/san-kum/graphsim/internal/config"
)

// Label footprint: each character widens a node's collision floor by
// labelCharRadius and adds labelCharSpacing to every spring it takes part in.
const (
	labelBaseRadius  = 25.0
	labelCharRadius  = 4.0
	labelCharSpacing = 2.0
)

// DynamicRadius is the single source of truth for node size: collision, spring
// rest length and every renderer read it. A DensityMaxSize of zero disables the cap.
func DynamicRadius(degree int, cfg config.Simulation) float64 {
	diameter := 2*cfg.CollisionRadius + float64(degree)*cfg.DensityGenericFactor
	if cfg.DensityMaxSize > 0 && diameter > cfg.DensityMaxSize {
		diameter = cfg.DensityMaxSize
	}
	return diameter / 2
}

// LabelRadius is the smallest radius that keeps a label clear of its
// neighbours. Unlabelled nodes have no floor.
func LabelRadius(label string) float64 {
	n := utf8.RuneCountInString(label)
	if n == 0 {
		return 0
	}
	return float64(n)*labelCharRadius + labelBaseRadius
}

// NodeRadius is the radius Model.Refresh caches on a node: its degree size,
// floored by its label footprint.
func NodeRadius(n *Node, cfg config.Simulation) float64 {
	return max(DynamicRadius(n.Degree, cfg), LabelRadius(n.Label))
}

// ChargeStrength makes hubs repel harder than leaves.
func ChargeStrength(degree int, cfg config.Simulation) float64 {
	return cfg.RepulsionStrength * (1 + float64(degree)*cfg.DensityChargeFactor)
}

// RestLength is the spring target separation between two linked nodes. Longer
// labels and bigger nodes both push the endpoints further apart.
func RestLength(source, target *Node, cfg config.Simulation) float64 {
	labels := utf8.RuneCountInString(source.Label) + utf8.RuneCountInString(target.Label)
	return cfg.LinkDistance + source.Radius + target.Radius + float64(labels)*labelCharSpacing
}

// ComputeDegrees sets Degree on every node and returns the links resolved to
// node indices. Links with a missing endpoint and self loops are dropped.
func ComputeDegrees(nodes []Node, links []Link) [][2]int {
	index := make(map[string]int, len(nodes))
	for i := range nodes {
		nodes[i].Degree = 0
		index[nodes[i].ID] = i
	}

	resolved := make([][2]int, 0, len(links))
	for _, l := range links {
		s, okS := index[l.Source]
		t, okT := index[l.Target]
		if !okS || !okT || s == t {
			continue
		}
		nodes[s].Degree++
		nodes[t].Degree++
		resolved = append(resolved, [2]int{s, t})
	}
	return resolved
}
